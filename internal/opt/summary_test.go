package opt

import (
	"math"
	"testing"

	"careassign/internal/model"
)

func TestSummarizeEmptyInput(t *testing.T) {
	m := Summarize(model.OptimizationResult{}, nil, nil)
	if m.AssignmentRate != 0 || m.AvgTravelMinutes != 0 || m.AvgScore != 0 || m.UtilizationStdDev != 0 {
		t.Fatalf("empty input must produce all-zero metrics: %+v", m)
	}
}

func TestSummarizeRatesAndAverages(t *testing.T) {
	visits := []model.Visit{visit("v1", 9, 13), visit("v2", 9, 13)}
	res := model.OptimizationResult{
		Assignments: []model.CandidateAssignment{
			{VisitID: "v1", CaregiverID: "g1", Score: 90, TravelMinutes: 10},
		},
		Unassigned: []model.Visit{visits[1]},
	}
	caregivers := []model.Caregiver{
		caregiver("g1", 40, 16), // 16 + 4 assigned = 20 -> 50%
		caregiver("g2", 40, 4),  // 10%
	}
	m := Summarize(res, visits, caregivers)
	if m.AssignmentRate != 50 {
		t.Fatalf("want rate 50, got %v", m.AssignmentRate)
	}
	if m.AvgTravelMinutes != 10 || m.AvgScore != 90 {
		t.Fatalf("bad averages: %+v", m)
	}
	if m.Utilization["g1"] != 50 || m.Utilization["g2"] != 10 {
		t.Fatalf("bad utilization: %+v", m.Utilization)
	}
	// population std-dev of {50, 10} is 20
	if math.Abs(m.UtilizationStdDev-20) > 1e-9 {
		t.Fatalf("want std-dev 20, got %v", m.UtilizationStdDev)
	}
}

func TestStdDevSingleValue(t *testing.T) {
	if got := stdDev([]float64{42}); got != 0 {
		t.Fatalf("single value has zero deviation, got %v", got)
	}
}
