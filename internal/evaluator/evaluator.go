// Package evaluator decides, for a given instant, which reminder triggers
// are due. The decision itself is a pure function of (now, triggers, rule);
// the Runner in this package wraps it in a poll loop with per-minute
// deduplication.
package evaluator

import (
	"time"

	"github.com/djlord-it/easy-remind/internal/clock"
	"github.com/djlord-it/easy-remind/internal/domain"
	"github.com/djlord-it/easy-remind/internal/snooze"
)

// Decision is the outcome of one evaluation. Manual and Interval are
// independent: both may be due in the same minute, producing two
// notifications.
type Decision struct {
	// Manual holds every configured trigger matching now's hour:minute.
	Manual []domain.TimeOfDay

	// Interval reports whether the interval rule fires this minute.
	Interval bool

	// Suppressed reports that the interval rule was skipped because of an
	// active snooze window. It is informational (metrics); when true,
	// Interval is always false.
	Suppressed bool
}

// Due reports whether anything fires.
func (d Decision) Due() bool {
	return len(d.Manual) > 0 || d.Interval
}

// Evaluate computes the decision for now. Matching is at minute granularity;
// seconds are ignored for manual triggers and tolerated up to one minute
// past an interval boundary, so a once-per-minute poll with jitter still
// catches every boundary. Deduplication within a minute is the caller's
// responsibility.
func Evaluate(now time.Time, triggers []domain.TimeOfDay, rule domain.IntervalRule) Decision {
	var d Decision

	current := domain.At(now)
	for _, t := range triggers {
		if t == current {
			d.Manual = append(d.Manual, t)
		}
	}

	if !rule.Enabled {
		return d
	}
	if snooze.IsSnoozed(rule, now) {
		d.Suppressed = true
		return d
	}

	start := clock.DailyStart(now, rule.DailyStart)
	if now.Before(start) {
		// Not started yet today.
		return d
	}

	period := rule.Period()
	if period <= 0 {
		return d
	}

	// Fire within the first minute past each boundary. The modulo is correct
	// for any positive period; a PeriodHours that does not divide 24 just
	// leaves a silent stretch between midnight and the next daily start.
	elapsed := now.Sub(start)
	if elapsed%period < time.Minute {
		d.Interval = true
	}
	return d
}
