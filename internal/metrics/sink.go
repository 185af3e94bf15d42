package metrics

import "time"

// Sink defines the interface for recording metrics.
// All methods are fire-and-forget: implementations MUST NOT block or
// propagate errors. If the metrics backend is unavailable, implementations
// log warnings and continue.
type Sink interface {
	// Evaluator metrics
	TickStarted()
	TickCompleted(duration time.Duration, fires int, err error)
	ManualFire()
	IntervalFire()
	SnoozeSuppressed()
	EmitError()

	// Delivery metrics
	NotifyOutcome(outcome string)

	// Planner metrics
	SyncCompleted(duration time.Duration, err error)
	AlarmsPlanned(count int)
	AlarmRegistered()
	AlarmSkipped()
	AlarmCancelled()
	IDAllocationFailure()
	SinkError(op string)
}

// Outcome constants for NotifyOutcome.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Operation labels for SinkError.
const (
	OpNotify        = "notify"
	OpScheduleAt    = "schedule_at"
	OpCancel        = "cancel"
	OpListScheduled = "list_scheduled"
)
