package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// VisitSummary is the payload sent to a caregiver when a visit is
// assigned to them.
type VisitSummary struct {
	VisitID     string    `json:"visitId"`
	ClientName  string    `json:"clientName,omitempty"`
	ServiceType string    `json:"serviceType,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// Sink delivers assignment notifications. Delivery is fire-and-forget:
// callers log a failed send and move on, it never affects the pass.
type Sink interface {
	NotifyAssignment(ctx context.Context, caregiverID string, sum VisitSummary) error
}

// Noop discards notifications; used when no broker is configured.
type Noop struct{}

func (Noop) NotifyAssignment(context.Context, string, VisitSummary) error { return nil }

// LogSink writes notifications to the logger, for dev runs.
type LogSink struct {
	Log zerolog.Logger
}

func (s LogSink) NotifyAssignment(_ context.Context, caregiverID string, sum VisitSummary) error {
	s.Log.Info().
		Str("caregiverId", caregiverID).
		Str("visitId", sum.VisitID).
		Time("start", sum.Start).
		Msg("assignment notification")
	return nil
}
