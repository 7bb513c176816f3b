package sched

import (
	"context"
	"time"

	"careassign/internal/model"
	"careassign/internal/store"
)

// Loader pulls optimizer inputs from the repositories. Empty windows are
// valid and return empty slices, never errors.
type Loader struct {
	Store store.Store
}

func (l Loader) LoadUnassignedVisits(ctx context.Context, orgID string, start, end time.Time, clientID string) ([]model.Visit, error) {
	visits, err := l.Store.FetchUnassignedVisits(ctx, orgID, start, end, clientID)
	if err != nil {
		return nil, err
	}
	if visits == nil {
		visits = []model.Visit{}
	}
	return visits, nil
}

func (l Loader) LoadAvailableCaregivers(ctx context.Context, orgID string, start, end time.Time) ([]model.Caregiver, error) {
	caregivers, err := l.Store.FetchAvailableCaregivers(ctx, orgID, start, end)
	if err != nil {
		return nil, err
	}
	if caregivers == nil {
		caregivers = []model.Caregiver{}
	}
	return caregivers, nil
}
