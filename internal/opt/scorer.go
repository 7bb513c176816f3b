package opt

import (
	"math"
	"sort"
	"time"

	"careassign/internal/geo"
	"careassign/internal/model"
)

// CaregiverState is the per-pass running load for one caregiver. It starts
// from the loaded snapshot and is mutated only by the engine; the input
// Caregiver values are never touched.
type CaregiverState struct {
	Hours   float64
	LastLoc *model.GeoPoint
	LastEnd time.Time
}

// State maps caregiver ID to running state for one pass.
type State map[string]*CaregiverState

func NewState(caregivers []model.Caregiver) State {
	st := State{}
	for _, cg := range caregivers {
		cs := &CaregiverState{Hours: cg.ScheduledHours}
		if cg.LastLocation != nil {
			loc := *cg.LastLocation
			cs.LastLoc = &loc
		}
		if cg.LastVisitEnd != nil {
			cs.LastEnd = *cg.LastVisitEnd
		}
		st[cg.ID] = cs
	}
	return st
}

// ScoreCandidates evaluates every caregiver against the hard constraints
// for a single visit and returns the feasible candidates scored and sorted
// descending, ties broken by caregiver ID. Constraints short-circuit in
// order: capacity, skills, reachability.
func ScoreCandidates(v model.Visit, caregivers []model.Caregiver, st State, tn Tuning) []model.CandidateAssignment {
	tn = tn.Normalize()
	durH := v.DurationHours()
	out := []model.CandidateAssignment{}
	for _, cg := range caregivers {
		cs := st[cg.ID]
		if cs == nil {
			cs = &CaregiverState{Hours: cg.ScheduledHours}
		}
		if cs.Hours+durH > cg.MaxHoursPerWeek+1e-9 {
			continue
		}
		if !cg.Skills.ContainsAll(v.RequiredSkills) {
			continue
		}
		travel := tn.ArrivalBufferMin
		if cs.LastLoc != nil {
			travel = geo.TravelTime(cs.LastLoc.Lat, cs.LastLoc.Lng, v.Location.Lat, v.Location.Lng, tn.SpeedKmh, tn.ArrivalBufferMin)
			if !cs.LastEnd.IsZero() {
				arrival := cs.LastEnd.Add(time.Duration(travel * float64(time.Minute)))
				if arrival.After(v.Start) {
					continue
				}
			}
		}
		utilAfter := 0.0
		if cg.MaxHoursPerWeek > 0 {
			utilAfter = (cs.Hours + durH) / cg.MaxHoursPerWeek * 100
		}
		extra := cg.Skills.Len() - v.RequiredSkills.Len()
		score := tn.BaseScore
		score -= tn.TravelPenalty * travel
		score -= tn.UtilizationPenalty * math.Abs(utilAfter-tn.TargetUtilization)
		score += tn.SkillTightnessBonus * float64(v.RequiredSkills.Len()-extra)
		out = append(out, model.CandidateAssignment{
			VisitID:          v.ID,
			CaregiverID:      cg.ID,
			Score:            math.Round(score*10) / 10,
			TravelMinutes:    travel,
			UtilizationAfter: utilAfter,
			SkillMatch:       true,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].CaregiverID < out[j].CaregiverID
		}
		return out[i].Score > out[j].Score
	})
	return out
}
