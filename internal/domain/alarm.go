package domain

import "time"

// ScheduledAlarm is a snapshot of an alarm already registered with the
// notification sink. The sink owns the full record; the engine only reads
// IDs and timestamps to avoid duplicate registration.
type ScheduledAlarm struct {
	ID        int
	Timestamp time.Time
}
