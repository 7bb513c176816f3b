package sched

import (
	"context"
	"time"

	"careassign/internal/metrics"
	"careassign/internal/model"
	"careassign/internal/opt"
)

// Reoptimize compares the live committed schedule for a window against a
// fresh optimization pass over the same visits treated as unassigned.
// It is report-only: nothing is written back, the scheduler decides
// whether the proposed reassignments are worth the churn.
func (p *Planner) Reoptimize(ctx context.Context, orgID string, start, end time.Time) (opt.ReoptReport, error) {
	committed, err := p.Store.FetchCommittedVisits(ctx, orgID, start, end)
	if err != nil {
		return opt.ReoptReport{}, err
	}
	caregivers, err := p.Store.FetchAvailableCaregivers(ctx, orgID, start, end)
	if err != nil {
		return opt.ReoptReport{}, err
	}

	// The loaded baseline includes the hours of the very visits being
	// re-planned; rebase the snapshot so the fresh pass does not count
	// them twice, and clear last-visit state for the same reason.
	windowHours := map[string]float64{}
	unassigned := make([]model.Visit, 0, len(committed))
	for _, v := range committed {
		windowHours[v.CaregiverID] += v.DurationHours()
		uv := v
		uv.CaregiverID = ""
		unassigned = append(unassigned, uv)
	}
	rebased := make([]model.Caregiver, len(caregivers))
	copy(rebased, caregivers)
	for i := range rebased {
		rebased[i].ScheduledHours -= windowHours[rebased[i].ID]
		if rebased[i].ScheduledHours < 0 {
			rebased[i].ScheduledHours = 0
		}
		rebased[i].LastLocation = nil
		rebased[i].LastVisitEnd = nil
	}

	tn := p.tuningFor(ctx, orgID)
	fresh := opt.Assign(unassigned, rebased, tn)
	rep := opt.CompareSchedules(committed, fresh, tn)

	metrics.Passes.WithLabelValues("reoptimize", "ok").Inc()
	p.Log.Info().
		Str("orgId", orgID).
		Int("reassignments", len(rep.Reassignments)).
		Float64("travelTimeSaved", rep.TravelTimeSaved).
		Msg("re-optimization computed")
	return rep, nil
}
