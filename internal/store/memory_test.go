package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"careassign/internal/model"
	"careassign/internal/opt"
)

var (
	org       = "org-1"
	monday    = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	windowEnd = monday.AddDate(0, 0, 7)
)

func seedVisit(m *Memory, id, cgID string, startH, endH int) {
	m.AddVisit(model.Visit{
		ID:          id,
		OrgID:       org,
		ClientID:    "c1",
		Location:    model.GeoPoint{Lat: 40.7, Lng: -74.0},
		Start:       monday.Add(time.Duration(startH) * time.Hour),
		End:         monday.Add(time.Duration(endH) * time.Hour),
		CaregiverID: cgID,
	})
}

func TestMemoryFetchUnassignedEmptyWindow(t *testing.T) {
	m := NewMemory()
	got, err := m.FetchUnassignedVisits(context.Background(), org, monday, windowEnd, "")
	if err != nil {
		t.Fatalf("FetchUnassignedVisits: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("empty store must return empty list, got %d", len(got))
	}
}

func TestMemoryFetchUnassignedOrderedAndFiltered(t *testing.T) {
	m := NewMemory()
	seedVisit(m, "v2", "", 13, 15)
	seedVisit(m, "v1", "", 9, 11)
	seedVisit(m, "v3", "g1", 9, 11) // committed, excluded
	got, err := m.FetchUnassignedVisits(context.Background(), org, monday, windowEnd, "")
	if err != nil {
		t.Fatalf("FetchUnassignedVisits: %v", err)
	}
	if len(got) != 2 || got[0].ID != "v1" || got[1].ID != "v2" {
		t.Fatalf("want [v1 v2], got %+v", got)
	}
}

func TestMemoryCommitAssignment(t *testing.T) {
	m := NewMemory()
	seedVisit(m, "v1", "", 9, 11)
	ctx := context.Background()
	if err := m.CommitAssignment(ctx, org, "v1", "g1"); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	err := m.CommitAssignment(ctx, org, "v1", "g2")
	if !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("second commit must race out, got %v", err)
	}
	if err := m.CommitAssignment(ctx, org, "missing", "g1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown visit: %v", err)
	}
}

func TestMemoryCaregiverWindowAggregation(t *testing.T) {
	m := NewMemory()
	m.AddCaregiver(model.Caregiver{ID: "g1", OrgID: org, MaxHoursPerWeek: 40})
	seedVisit(m, "v1", "g1", 9, 11)  // 2h
	seedVisit(m, "v2", "g1", 13, 16) // 3h, latest
	got, err := m.FetchAvailableCaregivers(context.Background(), org, monday, windowEnd)
	if err != nil {
		t.Fatalf("FetchAvailableCaregivers: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want one caregiver, got %d", len(got))
	}
	cg := got[0]
	if cg.ScheduledHours != 5 {
		t.Fatalf("want 5 scheduled hours, got %v", cg.ScheduledHours)
	}
	if cg.LastVisitEnd == nil || !cg.LastVisitEnd.Equal(monday.Add(16*time.Hour)) {
		t.Fatalf("last visit end should be 16:00, got %v", cg.LastVisitEnd)
	}
	if cg.LastLocation == nil {
		t.Fatalf("last location missing")
	}
}

func TestMemoryAvailabilityAndTimeOff(t *testing.T) {
	m := NewMemory()
	m.SetAvailability("g1", time.Monday, model.DayWindow{Start: "08:00", End: "18:00"})
	w, err := m.FetchAvailabilityWindow(context.Background(), "g1", time.Monday)
	if err != nil || w.Start != "08:00" {
		t.Fatalf("window: %+v err=%v", w, err)
	}
	if _, err := m.FetchAvailabilityWindow(context.Background(), "g1", time.Tuesday); !errors.Is(err, ErrNotFound) {
		t.Fatalf("undeclared weekday should be ErrNotFound, got %v", err)
	}

	m.AddTimeOff("g1", model.Interval{Start: monday, End: monday.AddDate(0, 0, 1)})
	ivs, err := m.FetchApprovedTimeOff(context.Background(), "g1", monday, windowEnd)
	if err != nil || len(ivs) != 1 {
		t.Fatalf("time off: %+v err=%v", ivs, err)
	}
	ivs, _ = m.FetchApprovedTimeOff(context.Background(), "g1", monday.AddDate(0, 0, 2), windowEnd)
	if len(ivs) != 0 {
		t.Fatalf("non-overlapping time off should be filtered: %+v", ivs)
	}
}

func TestMemoryPassMetricsAndTuning(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	rec := PassRecord{RunID: "r1", OrgID: org, WindowStart: monday, WindowEnd: windowEnd,
		Metrics: model.PassMetrics{TotalVisits: 3, AssignedVisits: 2}}
	if err := m.SavePassMetrics(ctx, rec); err != nil {
		t.Fatalf("SavePassMetrics: %v", err)
	}
	got, err := m.ListPassMetrics(ctx, org, monday, windowEnd)
	if err != nil || len(got) != 1 || got[0].Metrics.AssignedVisits != 2 {
		t.Fatalf("ListPassMetrics: %+v err=%v", got, err)
	}

	if _, err := m.GetTuning(ctx, org); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing tuning should be ErrNotFound, got %v", err)
	}
	tn := opt.DefaultTuning()
	tn.TargetUtilization = 80
	if err := m.SaveTuning(ctx, org, tn); err != nil {
		t.Fatalf("SaveTuning: %v", err)
	}
	back, err := m.GetTuning(ctx, org)
	if err != nil || back.TargetUtilization != 80 {
		t.Fatalf("GetTuning: %+v err=%v", back, err)
	}
}
