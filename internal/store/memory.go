package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"careassign/internal/model"
	"careassign/internal/opt"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set and
// throughout the test suite.
type Memory struct {
	mu         sync.Mutex
	visits     map[string]model.Visit
	caregivers map[string]model.Caregiver
	avail      map[string]map[time.Weekday]model.DayWindow
	timeOff    map[string][]model.Interval
	passes     []PassRecord
	tuning     map[string]opt.Tuning
}

func NewMemory() *Memory {
	return &Memory{
		visits:     map[string]model.Visit{},
		caregivers: map[string]model.Caregiver{},
		avail:      map[string]map[time.Weekday]model.DayWindow{},
		timeOff:    map[string][]model.Interval{},
		tuning:     map[string]opt.Tuning{},
	}
}

// Seed helpers for tests and the dev fallback.

func (m *Memory) AddVisit(v model.Visit) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	m.visits[v.ID] = v
	return v.ID
}

func (m *Memory) AddCaregiver(cg model.Caregiver) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cg.ID == "" {
		cg.ID = uuid.New().String()
	}
	m.caregivers[cg.ID] = cg
	return cg.ID
}

func (m *Memory) SetAvailability(caregiverID string, weekday time.Weekday, w model.DayWindow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.avail[caregiverID] == nil {
		m.avail[caregiverID] = map[time.Weekday]model.DayWindow{}
	}
	m.avail[caregiverID][weekday] = w
}

func (m *Memory) AddTimeOff(caregiverID string, iv model.Interval) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeOff[caregiverID] = append(m.timeOff[caregiverID], iv)
}

func (m *Memory) FetchUnassignedVisits(ctx context.Context, orgID string, start, end time.Time, clientID string) ([]model.Visit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Visit{}
	for _, v := range m.visits {
		if v.OrgID != orgID || v.CaregiverID != "" {
			continue
		}
		if v.Start.Before(start) || !v.Start.Before(end) {
			continue
		}
		if clientID != "" && v.ClientID != clientID {
			continue
		}
		out = append(out, v)
	}
	sortVisits(out)
	return out, nil
}

func (m *Memory) FetchCommittedVisits(ctx context.Context, orgID string, start, end time.Time) ([]model.Visit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Visit{}
	for _, v := range m.visits {
		if v.OrgID != orgID || v.CaregiverID == "" {
			continue
		}
		if v.Start.Before(start) || !v.Start.Before(end) {
			continue
		}
		out = append(out, v)
	}
	sortVisits(out)
	return out, nil
}

func (m *Memory) CommitAssignment(ctx context.Context, orgID, visitID, caregiverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.visits[visitID]
	if !ok || v.OrgID != orgID {
		return ErrNotFound
	}
	if v.CaregiverID != "" {
		return ErrAlreadyAssigned
	}
	v.CaregiverID = caregiverID
	m.visits[visitID] = v
	return nil
}

func (m *Memory) FetchAvailableCaregivers(ctx context.Context, orgID string, start, end time.Time) ([]model.Caregiver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Caregiver{}
	for _, cg := range m.caregivers {
		if cg.OrgID != orgID {
			continue
		}
		cg.ScheduledHours = 0
		cg.LastLocation = nil
		cg.LastVisitEnd = nil
		var last model.Visit
		for _, v := range m.visits {
			if v.CaregiverID != cg.ID || v.Start.Before(start) || !v.Start.Before(end) {
				continue
			}
			cg.ScheduledHours += v.DurationHours()
			if last.ID == "" || v.End.After(last.End) {
				last = v
			}
		}
		if last.ID != "" {
			loc := last.Location
			end := last.End
			cg.LastLocation = &loc
			cg.LastVisitEnd = &end
		}
		out = append(out, cg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) FetchAvailabilityWindow(ctx context.Context, caregiverID string, weekday time.Weekday) (model.DayWindow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.avail[caregiverID][weekday]
	if !ok {
		return model.DayWindow{}, ErrNotFound
	}
	return w, nil
}

func (m *Memory) FetchApprovedTimeOff(ctx context.Context, caregiverID string, start, end time.Time) ([]model.Interval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Interval{}
	for _, iv := range m.timeOff[caregiverID] {
		if iv.Overlaps(start, end) {
			out = append(out, iv)
		}
	}
	return out, nil
}

func (m *Memory) SavePassMetrics(ctx context.Context, rec PassRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	m.passes = append(m.passes, rec)
	return nil
}

func (m *Memory) ListPassMetrics(ctx context.Context, orgID string, start, end time.Time) ([]PassRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []PassRecord{}
	for _, r := range m.passes {
		if r.OrgID != orgID {
			continue
		}
		if !start.IsZero() && r.WindowStart.Before(start) {
			continue
		}
		if !end.IsZero() && r.WindowStart.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *Memory) GetTuning(ctx context.Context, orgID string) (opt.Tuning, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tn, ok := m.tuning[orgID]
	if !ok {
		return opt.Tuning{}, ErrNotFound
	}
	return tn, nil
}

func (m *Memory) SaveTuning(ctx context.Context, orgID string, tn opt.Tuning) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tuning[orgID] = tn
	return nil
}

func sortVisits(vs []model.Visit) {
	sort.Slice(vs, func(i, j int) bool {
		if vs[i].Start.Equal(vs[j].Start) {
			return vs[i].ID < vs[j].ID
		}
		return vs[i].Start.Before(vs[j].Start)
	})
}
