package opt

import (
	"testing"
	"time"

	"careassign/internal/model"
)

func committedVisit(id, cgID string, startH, endH int) model.Visit {
	v := visit(id, startH, endH)
	v.CaregiverID = cgID
	return v
}

func TestDetectDoubleBooking(t *testing.T) {
	visits := []model.Visit{
		committedVisit("v1", "g1", 9, 11),
		committedVisit("v2", "g1", 10, 12),
		committedVisit("v3", "g1", 12, 13),
	}
	got := DetectConflicts(visits, []model.Caregiver{caregiver("g1", 40, 0)}, nil, nil)
	booked := []model.Violation{}
	for _, vi := range got {
		if vi.Type == model.ViolationDoubleBooking {
			booked = append(booked, vi)
		}
	}
	if len(booked) != 1 {
		t.Fatalf("want exactly one double-booking, got %d: %+v", len(booked), booked)
	}
	v := booked[0]
	if v.CaregiverID != "g1" || len(v.VisitIDs) != 2 || v.VisitIDs[0] != "v1" || v.VisitIDs[1] != "v2" {
		t.Fatalf("violation must reference both visit ids: %+v", v)
	}
}

func TestDetectAdjacentVisitsNotDoubleBooked(t *testing.T) {
	// [start, end) intervals: back-to-back visits do not overlap
	visits := []model.Visit{
		committedVisit("v1", "g1", 9, 11),
		committedVisit("v2", "g1", 11, 13),
	}
	got := DetectConflicts(visits, []model.Caregiver{caregiver("g1", 40, 0)}, nil, nil)
	for _, vi := range got {
		if vi.Type == model.ViolationDoubleBooking {
			t.Fatalf("adjacent visits flagged as double-booked: %+v", vi)
		}
	}
}

func TestDetectCapacityOverrun(t *testing.T) {
	visits := []model.Visit{
		committedVisit("v1", "g1", 8, 12),
		committedVisit("v2", "g1", 13, 17),
	}
	got := DetectConflicts(visits, []model.Caregiver{caregiver("g1", 6, 0)}, nil, nil)
	found := false
	for _, vi := range got {
		if vi.Type == model.ViolationCapacityOverrun {
			found = true
			if vi.ExcessHours != 2 {
				t.Fatalf("want 2h excess, got %v", vi.ExcessHours)
			}
		}
	}
	if !found {
		t.Fatalf("capacity overrun not reported: %+v", got)
	}
}

func TestDetectAvailabilityViolation(t *testing.T) {
	visits := []model.Visit{committedVisit("v1", "g1", 7, 9)}
	avail := AvailabilityIndex{
		"g1": {time.Monday: model.DayWindow{Start: "08:00", End: "18:00"}},
	}
	got := DetectConflicts(visits, []model.Caregiver{caregiver("g1", 40, 0)}, avail, nil)
	found := false
	for _, vi := range got {
		if vi.Type == model.ViolationAvailability && vi.VisitIDs[0] == "v1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("07:00 visit should violate an 08:00 window: %+v", got)
	}

	// caregiver with no declared windows is always available
	got = DetectConflicts(visits, []model.Caregiver{caregiver("g1", 40, 0)}, AvailabilityIndex{}, nil)
	for _, vi := range got {
		if vi.Type == model.ViolationAvailability {
			t.Fatalf("undeclared availability must not violate: %+v", vi)
		}
	}
}

func TestDetectUndeclaredWeekdayViolation(t *testing.T) {
	// windows declared, but none for Monday: Monday visits violate
	visits := []model.Visit{committedVisit("v1", "g1", 9, 11)}
	avail := AvailabilityIndex{
		"g1": {time.Tuesday: model.DayWindow{Start: "08:00", End: "18:00"}},
	}
	got := DetectConflicts(visits, []model.Caregiver{caregiver("g1", 40, 0)}, avail, nil)
	found := false
	for _, vi := range got {
		if vi.Type == model.ViolationAvailability {
			found = true
		}
	}
	if !found {
		t.Fatalf("visit on a weekday without a declared window should violate")
	}
}

func TestDetectTimeOffConflict(t *testing.T) {
	visits := []model.Visit{committedVisit("v1", "g1", 9, 11)}
	pto := TimeOffIndex{
		"g1": {{Start: at(0, 0), End: at(23, 59)}},
	}
	got := DetectConflicts(visits, []model.Caregiver{caregiver("g1", 40, 0)}, nil, pto)
	found := false
	for _, vi := range got {
		if vi.Type == model.ViolationTimeOff && vi.VisitIDs[0] == "v1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("visit overlapping approved time off should violate: %+v", got)
	}
}

func TestDetectUnassignedVisitsIgnored(t *testing.T) {
	visits := []model.Visit{visit("v1", 9, 11), visit("v2", 9, 11)}
	got := DetectConflicts(visits, nil, nil, nil)
	if len(got) != 0 {
		t.Fatalf("unassigned visits cannot conflict: %+v", got)
	}
}
