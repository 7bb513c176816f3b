package opt

import (
	"math"

	"careassign/internal/model"
)

// Summarize computes pass metrics from a completed result and the original
// visit/caregiver snapshots. Post-pass caregiver hours are the loaded
// baseline plus the durations of the visits assigned in this pass.
// Empty inputs produce zeroes, never NaN.
func Summarize(res model.OptimizationResult, visits []model.Visit, caregivers []model.Caregiver) model.PassMetrics {
	m := model.PassMetrics{
		TotalVisits:      len(visits),
		AssignedVisits:   len(res.Assignments),
		UnassignedVisits: len(res.Unassigned),
		Utilization:      map[string]float64{},
	}
	if m.TotalVisits > 0 {
		m.AssignmentRate = float64(m.AssignedVisits) / float64(m.TotalVisits) * 100
	}

	byID := make(map[string]model.Visit, len(visits))
	for _, v := range visits {
		byID[v.ID] = v
	}
	addedHours := map[string]float64{}
	travelSum, scoreSum := 0.0, 0.0
	for _, a := range res.Assignments {
		travelSum += a.TravelMinutes
		scoreSum += a.Score
		if v, ok := byID[a.VisitID]; ok {
			addedHours[a.CaregiverID] += v.DurationHours()
		}
	}
	if len(res.Assignments) > 0 {
		m.AvgTravelMinutes = travelSum / float64(len(res.Assignments))
		m.AvgScore = scoreSum / float64(len(res.Assignments))
	}

	utils := make([]float64, 0, len(caregivers))
	for _, cg := range caregivers {
		util := 0.0
		if cg.MaxHoursPerWeek > 0 {
			util = (cg.ScheduledHours + addedHours[cg.ID]) / cg.MaxHoursPerWeek * 100
		}
		m.Utilization[cg.ID] = util
		utils = append(utils, util)
	}
	m.UtilizationStdDev = stdDev(utils)
	return m
}

// stdDev is the population standard deviation.
func stdDev(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))
	sum := 0.0
	for _, v := range vals {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)))
}
