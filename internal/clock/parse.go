// Package clock provides time-of-day parsing and the calendar arithmetic the
// scheduling engine is built on.
package clock

import (
	"errors"
	"fmt"
	"strings"

	"github.com/djlord-it/easy-remind/internal/domain"
)

// ErrInvalidTimeOfDay is wrapped by every parse failure.
var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// ParseTimeOfDay parses user input in "H:MM" or "HH:MM" form, optionally
// suffixed with am/pm (case-insensitive, optional space before the suffix).
// With a suffix the hour must be 1-12: "12:xx am" maps to hour 0, "12:xx pm"
// stays 12, other pm hours add 12. Without a suffix the hour must be 0-23.
// Minutes must always be two digits in 0-59. It returns an error rather than
// panicking on any malformed input.
func ParseTimeOfDay(input string) (domain.TimeOfDay, error) {
	s := strings.ToLower(strings.TrimSpace(input))

	suffix := ""
	for _, suf := range []string{"am", "pm"} {
		if strings.HasSuffix(s, suf) {
			suffix = suf
			s = strings.TrimRight(strings.TrimSuffix(s, suf), " ")
			break
		}
	}

	colon := strings.IndexByte(s, ':')
	if colon < 1 || colon > 2 || len(s)-colon-1 != 2 {
		return domain.TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, input)
	}

	hour, ok1 := parseDigits(s[:colon])
	minute, ok2 := parseDigits(s[colon+1:])
	if !ok1 || !ok2 || minute > 59 {
		return domain.TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, input)
	}

	switch suffix {
	case "":
		if hour > 23 {
			return domain.TimeOfDay{}, fmt.Errorf("%w: hour out of range in %q", ErrInvalidTimeOfDay, input)
		}
	case "am":
		if hour < 1 || hour > 12 {
			return domain.TimeOfDay{}, fmt.Errorf("%w: hour out of range in %q", ErrInvalidTimeOfDay, input)
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 1 || hour > 12 {
			return domain.TimeOfDay{}, fmt.Errorf("%w: hour out of range in %q", ErrInvalidTimeOfDay, input)
		}
		if hour != 12 {
			hour += 12
		}
	}

	return domain.TimeOfDay{Hour: hour, Minute: minute}, nil
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}
