package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is a clock time with minute granularity, independent of any date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String formats the value in 24-hour "HH:MM" form, which is also the
// persisted representation.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Valid reports whether the value is a real 24-hour clock time.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// At returns the time of day of the given instant, truncated to the minute.
func At(instant time.Time) TimeOfDay {
	return TimeOfDay{Hour: instant.Hour(), Minute: instant.Minute()}
}

// MarshalJSON encodes the value as its "HH:MM" string form.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("time of day out of range: %d:%d", t.Hour, t.Minute)
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes the strict storage form "HH:MM". Flexible user input
// (am/pm suffixes, single-digit hours) is handled by the clock package, not
// here: anything already persisted is expected to be normalized.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if len(s) != 5 || s[2] != ':' ||
		!isDigit(s[0]) || !isDigit(s[1]) || !isDigit(s[3]) || !isDigit(s[4]) {
		return fmt.Errorf("malformed time of day %q", s)
	}
	v := TimeOfDay{
		Hour:   int(s[0]-'0')*10 + int(s[1]-'0'),
		Minute: int(s[3]-'0')*10 + int(s[4]-'0'),
	}
	if !v.Valid() {
		return fmt.Errorf("time of day out of range %q", s)
	}
	*t = v
	return nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
