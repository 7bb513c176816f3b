package opt

import (
	"sort"

	"careassign/internal/model"
)

// Assign runs a single greedy pass: visits in ascending start order (ties
// by visit ID), committing the top-scored feasible candidate per visit and
// mutating only the running-state copy. Visits with no feasible candidate
// land in Unassigned; that is a well-formed outcome, not an error.
//
// Strict single-pass order keeps the result deterministic and explainable.
// It is not globally optimal and does not try to be.
func Assign(visits []model.Visit, caregivers []model.Caregiver, tn Tuning) model.OptimizationResult {
	ordered := make([]model.Visit, len(visits))
	copy(ordered, visits)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Start.Equal(ordered[j].Start) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].Start.Before(ordered[j].Start)
	})

	st := NewState(caregivers)
	res := model.OptimizationResult{
		Assignments: []model.CandidateAssignment{},
		Unassigned:  []model.Visit{},
	}
	for _, v := range ordered {
		cands := ScoreCandidates(v, caregivers, st, tn)
		if len(cands) == 0 {
			res.Unassigned = append(res.Unassigned, v)
			continue
		}
		best := cands[0]
		res.Assignments = append(res.Assignments, best)
		cs := st[best.CaregiverID]
		cs.Hours += v.DurationHours()
		loc := v.Location
		cs.LastLoc = &loc
		cs.LastEnd = v.End
	}
	res.Metrics = Summarize(res, ordered, caregivers)
	return res
}
