package evaluator

import (
	"fmt"
	"strings"
	"time"

	"github.com/djlord-it/easy-remind/internal/domain"
	"github.com/djlord-it/easy-remind/internal/snooze"
)

// Summary renders a human-readable description of the current configuration,
// suitable for a status tooltip. A snooze window is only mentioned while it
// is still active.
func Summary(triggers []domain.TimeOfDay, rule domain.IntervalRule, now time.Time) string {
	var b strings.Builder

	if len(triggers) == 0 {
		b.WriteString("Reminders: none")
	} else {
		parts := make([]string, len(triggers))
		for i, t := range triggers {
			parts[i] = t.String()
		}
		b.WriteString("Reminders: " + strings.Join(parts, ", "))
	}

	if rule.Enabled {
		fmt.Fprintf(&b, "\nAuto: every %dh from %s", rule.PeriodHours, rule.DailyStart)
		if snooze.IsSnoozed(rule, now) {
			fmt.Fprintf(&b, " (snoozed until %s)", rule.SnoozedUntil.Format("Jan 2 15:04"))
		}
	}

	return b.String()
}
