package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/djlord-it/easy-remind/internal/domain"
	"github.com/djlord-it/easy-remind/internal/store/memory"
)

func newTestConfig() *Config {
	return NewConfig(memory.New())
}

func TestConfig_Triggers_DefaultsWhenAbsent(t *testing.T) {
	cfg := newTestConfig()

	triggers, err := cfg.Triggers(context.Background())
	if err != nil {
		t.Fatalf("Triggers: %v", err)
	}

	want := []domain.TimeOfDay{{Hour: 9}, {Hour: 21}}
	if len(triggers) != len(want) {
		t.Fatalf("got %d triggers, want %d", len(triggers), len(want))
	}
	for i := range want {
		if triggers[i] != want[i] {
			t.Errorf("trigger[%d] = %v, want %v", i, triggers[i], want[i])
		}
	}
}

func TestConfig_Triggers_RoundTrip(t *testing.T) {
	cfg := newTestConfig()
	ctx := context.Background()

	in := []domain.TimeOfDay{{Hour: 7, Minute: 30}, {Hour: 22, Minute: 15}}
	if err := cfg.SetTriggers(ctx, in); err != nil {
		t.Fatalf("SetTriggers: %v", err)
	}

	out, err := cfg.Triggers(ctx)
	if err != nil {
		t.Fatalf("Triggers: %v", err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Errorf("Triggers = %v, want %v", out, in)
	}
}

func TestConfig_SetTriggers_RejectsDuplicates(t *testing.T) {
	cfg := newTestConfig()

	err := cfg.SetTriggers(context.Background(), []domain.TimeOfDay{{Hour: 9}, {Hour: 9}})
	if !errors.Is(err, ErrDuplicateTrigger) {
		t.Errorf("SetTriggers with duplicates: err = %v, want ErrDuplicateTrigger", err)
	}
}

func TestConfig_AddTrigger(t *testing.T) {
	cfg := newTestConfig()
	ctx := context.Background()

	if err := cfg.SetTriggers(ctx, []domain.TimeOfDay{{Hour: 9}}); err != nil {
		t.Fatalf("SetTriggers: %v", err)
	}
	if err := cfg.AddTrigger(ctx, domain.TimeOfDay{Hour: 14, Minute: 30}); err != nil {
		t.Fatalf("AddTrigger: %v", err)
	}
	if err := cfg.AddTrigger(ctx, domain.TimeOfDay{Hour: 14, Minute: 30}); !errors.Is(err, ErrDuplicateTrigger) {
		t.Errorf("AddTrigger duplicate: err = %v, want ErrDuplicateTrigger", err)
	}

	triggers, err := cfg.Triggers(ctx)
	if err != nil {
		t.Fatalf("Triggers: %v", err)
	}
	if len(triggers) != 2 {
		t.Errorf("got %d triggers, want 2", len(triggers))
	}
}

func TestConfig_RemoveTrigger(t *testing.T) {
	cfg := newTestConfig()
	ctx := context.Background()

	if err := cfg.SetTriggers(ctx, []domain.TimeOfDay{{Hour: 9}, {Hour: 21}}); err != nil {
		t.Fatalf("SetTriggers: %v", err)
	}
	if err := cfg.RemoveTrigger(ctx, domain.TimeOfDay{Hour: 9}); err != nil {
		t.Fatalf("RemoveTrigger: %v", err)
	}
	if err := cfg.RemoveTrigger(ctx, domain.TimeOfDay{Hour: 9}); !errors.Is(err, ErrTriggerNotFound) {
		t.Errorf("RemoveTrigger missing: err = %v, want ErrTriggerNotFound", err)
	}

	triggers, err := cfg.Triggers(ctx)
	if err != nil {
		t.Fatalf("Triggers: %v", err)
	}
	if len(triggers) != 1 || triggers[0].Hour != 21 {
		t.Errorf("Triggers = %v, want [21:00]", triggers)
	}
}

func TestConfig_IntervalRule_DefaultsWhenAbsent(t *testing.T) {
	cfg := newTestConfig()

	rule, err := cfg.IntervalRule(context.Background())
	if err != nil {
		t.Fatalf("IntervalRule: %v", err)
	}
	if rule.Enabled {
		t.Error("default rule should be disabled")
	}
	if rule.PeriodHours != 2 {
		t.Errorf("PeriodHours = %d, want 2", rule.PeriodHours)
	}
	if rule.DailyStart != (domain.TimeOfDay{Hour: 8}) {
		t.Errorf("DailyStart = %v, want 08:00", rule.DailyStart)
	}
}

func TestConfig_SetIntervalRule_RejectsInvalid(t *testing.T) {
	cfg := newTestConfig()

	bad := domain.IntervalRule{Enabled: true, PeriodHours: 0, DailyStart: domain.TimeOfDay{Hour: 8}}
	if err := cfg.SetIntervalRule(context.Background(), bad); err == nil {
		t.Error("SetIntervalRule accepted zero-hour period")
	}
}

func TestConfig_SnoozeAndClearSnooze(t *testing.T) {
	cfg := newTestConfig()
	ctx := context.Background()

	rule := domain.IntervalRule{Enabled: true, PeriodHours: 2, DailyStart: domain.TimeOfDay{Hour: 8}}
	if err := cfg.SetIntervalRule(ctx, rule); err != nil {
		t.Fatalf("SetIntervalRule: %v", err)
	}

	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	if err := cfg.Snooze(ctx, now); err != nil {
		t.Fatalf("Snooze: %v", err)
	}

	got, err := cfg.IntervalRule(ctx)
	if err != nil {
		t.Fatalf("IntervalRule: %v", err)
	}
	want := time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC)
	if got.SnoozedUntil == nil || !got.SnoozedUntil.Equal(want) {
		t.Fatalf("SnoozedUntil = %v, want %v", got.SnoozedUntil, want)
	}

	if err := cfg.ClearSnooze(ctx); err != nil {
		t.Fatalf("ClearSnooze: %v", err)
	}
	got, err = cfg.IntervalRule(ctx)
	if err != nil {
		t.Fatalf("IntervalRule: %v", err)
	}
	if got.SnoozedUntil != nil {
		t.Errorf("SnoozedUntil = %v after clear, want nil", got.SnoozedUntil)
	}
}

func TestConfig_AlarmSlots_RoundTrip(t *testing.T) {
	cfg := newTestConfig()
	ctx := context.Background()

	slots, err := cfg.AlarmSlots(ctx)
	if err != nil {
		t.Fatalf("AlarmSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("fresh store has %d slots, want 0", len(slots))
	}

	slots["09:00"] = 4821
	if err := cfg.SetAlarmSlots(ctx, slots); err != nil {
		t.Fatalf("SetAlarmSlots: %v", err)
	}

	got, err := cfg.AlarmSlots(ctx)
	if err != nil {
		t.Fatalf("AlarmSlots: %v", err)
	}
	if got["09:00"] != 4821 {
		t.Errorf("slots[09:00] = %d, want 4821", got["09:00"])
	}
}

func TestConfig_IconSettings_DefaultsWhenAbsent(t *testing.T) {
	cfg := newTestConfig()

	icon, err := cfg.IconSettings(context.Background())
	if err != nil {
		t.Fatalf("IconSettings: %v", err)
	}
	if icon.Position != "end" || icon.Offset != 2 {
		t.Errorf("IconSettings = %+v, want {end 2}", icon)
	}
}
