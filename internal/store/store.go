package store

import (
	"context"
	"errors"
	"time"

	"careassign/internal/model"
	"careassign/internal/opt"
)

// Store is the persistence surface the optimizer consumes. The optimizer
// never owns this data; every pass loads fresh snapshots and writes back
// one assignment at a time.
type Store interface {
	// Visits
	FetchUnassignedVisits(ctx context.Context, orgID string, start, end time.Time, clientID string) ([]model.Visit, error)
	FetchCommittedVisits(ctx context.Context, orgID string, start, end time.Time) ([]model.Visit, error)
	// CommitAssignment re-validates that the visit is still unassigned
	// inside the transaction and returns ErrAlreadyAssigned on a race.
	CommitAssignment(ctx context.Context, orgID, visitID, caregiverID string) error

	// Caregivers. ScheduledHours, LastLocation and LastVisitEnd are
	// aggregated over the requested window.
	FetchAvailableCaregivers(ctx context.Context, orgID string, start, end time.Time) ([]model.Caregiver, error)
	FetchAvailabilityWindow(ctx context.Context, caregiverID string, weekday time.Weekday) (model.DayWindow, error)
	FetchApprovedTimeOff(ctx context.Context, caregiverID string, start, end time.Time) ([]model.Interval, error)

	// Pass metrics
	SavePassMetrics(ctx context.Context, rec PassRecord) error
	ListPassMetrics(ctx context.Context, orgID string, start, end time.Time) ([]PassRecord, error)

	// Optimizer tuning per org
	GetTuning(ctx context.Context, orgID string) (opt.Tuning, error)
	SaveTuning(ctx context.Context, orgID string, tn opt.Tuning) error
}

// PassRecord is one persisted optimization pass summary.
type PassRecord struct {
	RunID       string            `json:"runId"`
	OrgID       string            `json:"orgId"`
	WindowStart time.Time         `json:"windowStart"`
	WindowEnd   time.Time         `json:"windowEnd"`
	Metrics     model.PassMetrics `json:"metrics"`
	CreatedAt   time.Time         `json:"createdAt"`
}

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyAssigned = errors.New("visit already assigned")
)
