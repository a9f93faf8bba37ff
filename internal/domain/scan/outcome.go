package scan

import (
	"time"

	"tixgate/internal/domain/gateway"
	"tixgate/internal/domain/ticket"
)

// State is the scan session phase. Result/error display is a projection
// of the last Outcome, not a state of its own.
type State string

const (
	StateIdle      State = "idle"
	StateVerifying State = "verifying"
	StateCooldown  State = "cooldown"
)

// Event is one decoded QR payload delivered by a scanner device. It is
// consumed immediately and never retained after processing.
type Event struct {
	ScannerID string
	Payload   string
	At        time.Time
}

// OutcomeKind tags the scan outcome variant.
type OutcomeKind string

const (
	OutcomePending OutcomeKind = "pending"
	OutcomeSuccess OutcomeKind = "success"
	OutcomeFailure OutcomeKind = "failure"
)

// Outcome is the tagged result of the current or last scan attempt.
// Exactly one variant is active: Ticket is set only for success, Reason
// and Class only for failure.
type Outcome struct {
	Kind   OutcomeKind          `json:"kind"`
	Ticket *ticket.Record       `json:"ticket,omitempty"`
	Reason string               `json:"reason,omitempty"`
	Class  gateway.FailureClass `json:"class,omitempty"`
	At     time.Time            `json:"at"`
}

func pendingOutcome(at time.Time) Outcome {
	return Outcome{Kind: OutcomePending, At: at}
}

func successOutcome(record ticket.Record, at time.Time) Outcome {
	return Outcome{Kind: OutcomeSuccess, Ticket: &record, At: at}
}

func failureOutcome(class gateway.FailureClass, reason string, at time.Time) Outcome {
	return Outcome{Kind: OutcomeFailure, Class: class, Reason: reason, At: at}
}
