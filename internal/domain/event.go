package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReminderKind string

const (
	ReminderKindManual   ReminderKind = "manual"
	ReminderKindInterval ReminderKind = "interval"
)

// ReminderEvent is emitted by the evaluator when a trigger fires.
// A manual fire and an interval fire in the same minute produce two
// independent events.
type ReminderEvent struct {
	ID   uuid.UUID
	Kind ReminderKind

	// Trigger is the configured time of day that fired. For interval fires
	// it is the rule's daily start.
	Trigger TimeOfDay

	ScheduledAt time.Time // intended fire minute
	FiredAt     time.Time // actual evaluation time

	DedupKey string
}
