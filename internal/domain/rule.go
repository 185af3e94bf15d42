package domain

import "time"

// IntervalRule configures the recurring reminder: every PeriodHours hours
// starting at DailyStart each day. SnoozedUntil, when set, suppresses
// interval firings until that instant; it is cleared lazily, never swept.
//
// JSON field names match the persisted record layout.
type IntervalRule struct {
	Enabled      bool       `json:"enabled"`
	PeriodHours  int        `json:"hours"`
	DailyStart   TimeOfDay  `json:"start"`
	SnoozedUntil *time.Time `json:"snoozedUntil,omitempty"`
}

// Period returns the interval length as a duration.
func (r IntervalRule) Period() time.Duration {
	return time.Duration(r.PeriodHours) * time.Hour
}

// Valid reports whether the rule is well-formed. PeriodHours need not divide
// 24 evenly; boundaries then drift across midnight, which the evaluator's
// modulo arithmetic handles.
func (r IntervalRule) Valid() bool {
	return r.PeriodHours >= 1 && r.PeriodHours <= 24 && r.DailyStart.Valid()
}

// IconSettings is the UI-owned icon placement record. The engine persists it
// on behalf of the host but never consumes it.
type IconSettings struct {
	Position string `json:"position"`
	Offset   int    `json:"offset"`
}
