package opt

import (
	"sort"

	"careassign/internal/model"
)

// Fallback tries to place visits the main pass left unassigned with any
// caregiver who has zero overlapping commitments in the window, ignoring
// skills and scoring entirely. committed must include both the persisted
// schedule and assignments made earlier in this pass so a fallback pick
// cannot double-book. Visits that still cannot be placed are returned for
// a human scheduler.
func Fallback(unassigned []model.Visit, caregivers []model.Caregiver, committed []model.Visit) ([]model.CandidateAssignment, []model.Visit) {
	busy := map[string][]model.Visit{}
	for _, v := range committed {
		if v.CaregiverID != "" {
			busy[v.CaregiverID] = append(busy[v.CaregiverID], v)
		}
	}

	roster := make([]model.Caregiver, len(caregivers))
	copy(roster, caregivers)
	sort.Slice(roster, func(i, j int) bool { return roster[i].ID < roster[j].ID })

	ordered := make([]model.Visit, len(unassigned))
	copy(ordered, unassigned)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Start.Equal(ordered[j].Start) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].Start.Before(ordered[j].Start)
	})

	picked := []model.CandidateAssignment{}
	remaining := []model.Visit{}
	for _, v := range ordered {
		placed := false
		for _, cg := range roster {
			if overlapsAny(v, busy[cg.ID]) {
				continue
			}
			picked = append(picked, model.CandidateAssignment{
				VisitID:     v.ID,
				CaregiverID: cg.ID,
				SkillMatch:  cg.Skills.ContainsAll(v.RequiredSkills),
			})
			bv := v
			bv.CaregiverID = cg.ID
			busy[cg.ID] = append(busy[cg.ID], bv)
			placed = true
			break
		}
		if !placed {
			remaining = append(remaining, v)
		}
	}
	return picked, remaining
}

func overlapsAny(v model.Visit, others []model.Visit) bool {
	for _, o := range others {
		if v.Overlaps(o) {
			return true
		}
	}
	return false
}
