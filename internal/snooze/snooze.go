// Package snooze computes and evaluates the temporary suppression window for
// interval reminders. Expiry is lazy: a snooze deadline is only ever compared
// against now, never swept by a background task.
package snooze

import (
	"time"

	"github.com/djlord-it/easy-remind/internal/clock"
	"github.com/djlord-it/easy-remind/internal/domain"
)

// Deadline returns the next calendar occurrence of dailyStart strictly after
// now. Snoozing always suppresses through the rest of the current cycle,
// resuming at the following daily start.
func Deadline(now time.Time, dailyStart domain.TimeOfDay) time.Time {
	return clock.NextOccurrence(now, dailyStart)
}

// Set returns a copy of rule snoozed until the next daily start. Calling it
// repeatedly is safe; the deadline is always recomputed from now.
func Set(rule domain.IntervalRule, now time.Time) domain.IntervalRule {
	deadline := Deadline(now, rule.DailyStart)
	rule.SnoozedUntil = &deadline
	return rule
}

// Clear returns a copy of rule with no snooze window.
func Clear(rule domain.IntervalRule) domain.IntervalRule {
	rule.SnoozedUntil = nil
	return rule
}

// IsSnoozed reports whether now falls inside rule's snooze window.
// A deadline in the past simply reads as not snoozed.
func IsSnoozed(rule domain.IntervalRule, now time.Time) bool {
	return rule.SnoozedUntil != nil && now.Before(*rule.SnoozedUntil)
}
