package opt

import (
	"sort"

	"careassign/internal/geo"
	"careassign/internal/model"
)

// Reassignment records a visit whose freshly optimized caregiver differs
// from the committed one.
type Reassignment struct {
	VisitID           string `json:"visitId"`
	CurrentCaregiver  string `json:"currentCaregiverId"`
	ProposedCaregiver string `json:"proposedCaregiverId"`
}

// ReoptReport compares a live committed schedule against a fresh pass.
// TravelTimeSaved may be negative.
type ReoptReport struct {
	Reassignments         []Reassignment           `json:"reassignments"`
	CurrentTravelMinutes  float64                  `json:"currentTravelMinutes"`
	ProposedTravelMinutes float64                  `json:"proposedTravelMinutes"`
	TravelTimeSaved       float64                  `json:"travelTimeSaved"`
	Fresh                 model.OptimizationResult `json:"fresh"`
}

// ScheduleTravelMinutes sums the estimated inter-visit travel across a
// committed schedule: per caregiver, visits sorted by start time, haversine
// hops between consecutive client locations.
func ScheduleTravelMinutes(visits []model.Visit, tn Tuning) float64 {
	tn = tn.Normalize()
	byCaregiver := map[string][]model.Visit{}
	for _, v := range visits {
		if v.CaregiverID == "" {
			continue
		}
		byCaregiver[v.CaregiverID] = append(byCaregiver[v.CaregiverID], v)
	}
	total := 0.0
	for _, vs := range byCaregiver {
		sort.Slice(vs, func(i, j int) bool {
			if vs[i].Start.Equal(vs[j].Start) {
				return vs[i].ID < vs[j].ID
			}
			return vs[i].Start.Before(vs[j].Start)
		})
		for i := 1; i < len(vs); i++ {
			a, b := vs[i-1], vs[i]
			total += geo.TravelTime(a.Location.Lat, a.Location.Lng, b.Location.Lat, b.Location.Lng, tn.SpeedKmh, tn.ArrivalBufferMin)
		}
	}
	return total
}

// CompareSchedules builds the re-optimization report from the committed
// schedule and a fresh pass over the same visits.
func CompareSchedules(committed []model.Visit, fresh model.OptimizationResult, tn Tuning) ReoptReport {
	rep := ReoptReport{
		Reassignments:        []Reassignment{},
		CurrentTravelMinutes: ScheduleTravelMinutes(committed, tn),
		Fresh:                fresh,
	}
	proposed := map[string]string{}
	for _, a := range fresh.Assignments {
		proposed[a.VisitID] = a.CaregiverID
	}
	proposedVisits := make([]model.Visit, 0, len(committed))
	for _, v := range committed {
		cg, ok := proposed[v.ID]
		if !ok {
			continue
		}
		if cg != v.CaregiverID {
			rep.Reassignments = append(rep.Reassignments, Reassignment{
				VisitID:           v.ID,
				CurrentCaregiver:  v.CaregiverID,
				ProposedCaregiver: cg,
			})
		}
		pv := v
		pv.CaregiverID = cg
		proposedVisits = append(proposedVisits, pv)
	}
	sort.Slice(rep.Reassignments, func(i, j int) bool {
		return rep.Reassignments[i].VisitID < rep.Reassignments[j].VisitID
	})
	rep.ProposedTravelMinutes = ScheduleTravelMinutes(proposedVisits, tn)
	rep.TravelTimeSaved = rep.CurrentTravelMinutes - rep.ProposedTravelMinutes
	return rep
}
