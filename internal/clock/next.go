package clock

import (
	"time"

	"github.com/djlord-it/easy-remind/internal/domain"
)

// DailyStart combines tod with now's calendar date in now's location.
// The result may be before, equal to, or after now.
func DailyStart(now time.Time, tod domain.TimeOfDay) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), tod.Hour, tod.Minute, 0, 0, now.Location())
}

// NextOccurrence returns the next instant strictly after now at which tod
// occurs. If today's occurrence has already passed (now >= candidate), it
// rolls forward exactly one calendar day; rolling by calendar day rather
// than a fixed 24h keeps the wall-clock time stable across DST transitions.
func NextOccurrence(now time.Time, tod domain.TimeOfDay) time.Time {
	candidate := DailyStart(now, tod)
	if !now.Before(candidate) {
		candidate = time.Date(now.Year(), now.Month(), now.Day()+1, tod.Hour, tod.Minute, 0, 0, now.Location())
	}
	return candidate
}
