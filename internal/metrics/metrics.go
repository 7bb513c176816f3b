package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the optimizer.
	Registry = prometheus.NewRegistry()

	// Passes counts optimization runs by mode and outcome.
	Passes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimizer_passes_total", Help: "Optimization passes by mode and outcome."},
		[]string{"mode", "outcome"},
	)
	// VisitsAssigned counts visits committed by the greedy pass.
	VisitsAssigned = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "optimizer_visits_assigned_total", Help: "Visits assigned by the optimizer."},
	)
	// VisitsUnassigned counts visits no caregiver was feasible for.
	VisitsUnassigned = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "optimizer_visits_unassigned_total", Help: "Visits left unassigned after a pass."},
	)
	// FallbackAssigned counts visits placed by the naive fallback.
	FallbackAssigned = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "optimizer_fallback_assigned_total", Help: "Visits placed by the fallback assigner."},
	)
	// CommitFailures counts per-visit assignment writes that failed.
	CommitFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "optimizer_commit_failures_total", Help: "Assignment commits that failed."},
	)
	// ConflictViolations counts schedule conflicts by type.
	ConflictViolations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimizer_conflict_violations_total", Help: "Detected schedule conflicts by type."},
		[]string{"type"},
	)
	// PassDuration records wall-clock pass duration in seconds.
	PassDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "optimizer_pass_duration_seconds", Help: "Optimization pass duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"mode"},
	)
	// AssignmentTravel records estimated travel minutes per committed assignment.
	AssignmentTravel = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "optimizer_assignment_travel_minutes", Help: "Estimated travel minutes per assignment.", Buckets: []float64{5, 10, 15, 20, 30, 45, 60, 90}},
	)
)

// RegisterDefault registers collectors to the dedicated registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(Passes)
		Registry.MustRegister(VisitsAssigned)
		Registry.MustRegister(VisitsUnassigned)
		Registry.MustRegister(FallbackAssigned)
		Registry.MustRegister(CommitFailures)
		Registry.MustRegister(ConflictViolations)
		Registry.MustRegister(PassDuration)
		Registry.MustRegister(AssignmentTravel)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
