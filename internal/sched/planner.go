package sched

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"careassign/internal/metrics"
	"careassign/internal/model"
	"careassign/internal/notify"
	"careassign/internal/opt"
	"careassign/internal/store"
)

// Planner runs optimization passes and conflict scans against the
// repositories. It holds no persistent state of its own; every call loads
// fresh snapshots.
type Planner struct {
	Store  store.Store
	Sink   notify.Sink
	Log    zerolog.Logger
	Tuning opt.Tuning
}

// CommitFailure records a per-visit write that failed. A failed commit
// never aborts the rest of the batch.
type CommitFailure struct {
	VisitID     string `json:"visitId"`
	CaregiverID string `json:"caregiverId"`
	Err         string `json:"error"`
}

// PassReport is the outcome of one RunPass call. Result holds the
// optimizer's own output; FallbackAssigned and Unassigned reflect the
// state after the fallback sweep.
type PassReport struct {
	RunID            string                      `json:"runId"`
	Result           model.OptimizationResult    `json:"result"`
	FallbackAssigned []model.CandidateAssignment `json:"fallbackAssigned"`
	Unassigned       []model.Visit               `json:"unassignedVisits"`
	CommitFailures   []CommitFailure             `json:"commitFailures,omitempty"`
	Duration         time.Duration               `json:"duration"`
}

func (p *Planner) tuningFor(ctx context.Context, orgID string) opt.Tuning {
	tn, err := p.Store.GetTuning(ctx, orgID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			p.Log.Warn().Err(err).Str("orgId", orgID).Msg("tuning lookup failed, using defaults")
		}
		return p.Tuning.Normalize()
	}
	return tn.Normalize()
}

// RunPass executes one full optimization pass: load, assign, commit each
// assignment in its own transaction, sweep leftovers through the fallback,
// persist pass metrics, and notify assigned caregivers fire-and-forget.
func (p *Planner) RunPass(ctx context.Context, orgID string, start, end time.Time, clientID string) (PassReport, error) {
	began := time.Now()
	rep := PassReport{RunID: uuid.New().String()}
	loader := Loader{Store: p.Store}

	visits, err := loader.LoadUnassignedVisits(ctx, orgID, start, end, clientID)
	if err != nil {
		return rep, err
	}
	caregivers, err := loader.LoadAvailableCaregivers(ctx, orgID, start, end)
	if err != nil {
		return rep, err
	}
	p.Log.Info().
		Str("runId", rep.RunID).
		Str("orgId", orgID).
		Int("visits", len(visits)).
		Int("caregivers", len(caregivers)).
		Time("windowStart", start).
		Msg("optimization pass started")

	tn := p.tuningFor(ctx, orgID)
	rep.Result = opt.Assign(visits, caregivers, tn)

	visitByID := make(map[string]model.Visit, len(visits))
	for _, v := range visits {
		visitByID[v.ID] = v
	}
	for _, a := range rep.Result.Assignments {
		p.commit(ctx, orgID, a, visitByID[a.VisitID], &rep)
	}

	// fallback sweep over what the scorer could not place
	committed, err := p.Store.FetchCommittedVisits(ctx, orgID, start, end)
	if err != nil {
		p.Log.Warn().Err(err).Msg("committed schedule unavailable, skipping fallback")
		rep.Unassigned = rep.Result.Unassigned
	} else {
		picked, left := opt.Fallback(rep.Result.Unassigned, caregivers, committed)
		for _, a := range picked {
			if ok := p.commit(ctx, orgID, a, visitByID[a.VisitID], &rep); ok {
				rep.FallbackAssigned = append(rep.FallbackAssigned, a)
				metrics.FallbackAssigned.Inc()
			} else {
				left = append(left, visitByID[a.VisitID])
			}
		}
		rep.Unassigned = left
	}

	rep.Duration = time.Since(began)
	metrics.Passes.WithLabelValues("optimize", "ok").Inc()
	metrics.PassDuration.WithLabelValues("optimize").Observe(rep.Duration.Seconds())
	metrics.VisitsUnassigned.Add(float64(len(rep.Unassigned)))

	rec := store.PassRecord{
		RunID:       rep.RunID,
		OrgID:       orgID,
		WindowStart: start,
		WindowEnd:   end,
		Metrics:     rep.Result.Metrics,
	}
	if err := p.Store.SavePassMetrics(ctx, rec); err != nil {
		p.Log.Warn().Err(err).Str("runId", rep.RunID).Msg("pass metrics not persisted")
	}
	opt.RecordPass(orgID, start.Format("2006-01-02"), rep.Result.Metrics)

	p.Log.Info().
		Str("runId", rep.RunID).
		Float64("assignmentRate", rep.Result.Metrics.AssignmentRate).
		Int("fallback", len(rep.FallbackAssigned)).
		Int("unassigned", len(rep.Unassigned)).
		Dur("took", rep.Duration).
		Msg("optimization pass finished")
	return rep, nil
}

// commit writes one assignment and notifies the caregiver. Returns false
// when the write failed; the failure is recorded and the pass continues.
func (p *Planner) commit(ctx context.Context, orgID string, a model.CandidateAssignment, v model.Visit, rep *PassReport) bool {
	if err := p.Store.CommitAssignment(ctx, orgID, a.VisitID, a.CaregiverID); err != nil {
		p.Log.Warn().Err(err).
			Str("visitId", a.VisitID).
			Str("caregiverId", a.CaregiverID).
			Msg("assignment commit failed")
		rep.CommitFailures = append(rep.CommitFailures, CommitFailure{
			VisitID: a.VisitID, CaregiverID: a.CaregiverID, Err: err.Error(),
		})
		metrics.CommitFailures.Inc()
		return false
	}
	metrics.VisitsAssigned.Inc()
	metrics.AssignmentTravel.Observe(a.TravelMinutes)
	if p.Sink != nil {
		sum := notify.VisitSummary{
			VisitID:     v.ID,
			ClientName:  v.ClientName,
			ServiceType: v.ServiceType,
			Start:       v.Start,
			End:         v.End,
		}
		if err := p.Sink.NotifyAssignment(ctx, a.CaregiverID, sum); err != nil {
			// fire-and-forget: a dead broker must not fail the pass
			p.Log.Warn().Err(err).Str("caregiverId", a.CaregiverID).Msg("notification failed")
		}
	}
	return true
}

// ScanConflicts checks the committed schedule for the window. Availability
// and time-off lookups are best-effort: a repository error on one caregiver
// is logged and that caregiver is treated as having no declared constraints.
func (p *Planner) ScanConflicts(ctx context.Context, orgID string, start, end time.Time) ([]model.Violation, error) {
	visits, err := p.Store.FetchCommittedVisits(ctx, orgID, start, end)
	if err != nil {
		return nil, err
	}
	caregivers, err := p.Store.FetchAvailableCaregivers(ctx, orgID, start, end)
	if err != nil {
		return nil, err
	}

	avail := opt.AvailabilityIndex{}
	timeOff := opt.TimeOffIndex{}
	for _, cg := range caregivers {
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			w, err := p.Store.FetchAvailabilityWindow(ctx, cg.ID, wd)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				p.Log.Warn().Err(err).Str("caregiverId", cg.ID).Msg("availability lookup failed")
				continue
			}
			if avail[cg.ID] == nil {
				avail[cg.ID] = map[time.Weekday]model.DayWindow{}
			}
			avail[cg.ID][wd] = w
		}
		ivs, err := p.Store.FetchApprovedTimeOff(ctx, cg.ID, start, end)
		if err != nil {
			p.Log.Warn().Err(err).Str("caregiverId", cg.ID).Msg("time-off lookup failed")
			continue
		}
		if len(ivs) > 0 {
			timeOff[cg.ID] = ivs
		}
	}

	violations := opt.DetectConflicts(visits, caregivers, avail, timeOff)
	for _, vi := range violations {
		metrics.ConflictViolations.WithLabelValues(string(vi.Type)).Inc()
	}
	metrics.Passes.WithLabelValues("conflicts", "ok").Inc()
	return violations, nil
}
