// Package store provides typed access to the persisted reminder
// configuration. The engine never talks to a backend directly; it goes
// through Config, which reads and writes whole records through a minimal
// key-value interface so tests can substitute an in-memory backend.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/djlord-it/easy-remind/internal/domain"
	"github.com/djlord-it/easy-remind/internal/snooze"
)

// KV is the raw persistence boundary. Get reports absence via the bool
// rather than an error so missing records can fall back to defaults.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Logical record keys. Each record is read and written whole; there are no
// partial-field updates.
const (
	keyTriggers = "reminder:notification_times"
	keyInterval = "reminder:interval_settings"
	keyIcon     = "reminder:icon_settings"
	keySlots    = "reminder:alarm_slots"
)

var (
	ErrDuplicateTrigger = errors.New("trigger already configured")
	ErrTriggerNotFound  = errors.New("trigger not configured")
)

// DefaultTriggers returns the trigger list used when none has been saved.
func DefaultTriggers() []domain.TimeOfDay {
	return []domain.TimeOfDay{
		{Hour: 9, Minute: 0},
		{Hour: 21, Minute: 0},
	}
}

// DefaultIntervalRule returns the interval record used when none has been
// saved: disabled, every 2 hours from 08:00.
func DefaultIntervalRule() domain.IntervalRule {
	return domain.IntervalRule{
		Enabled:     false,
		PeriodHours: 2,
		DailyStart:  domain.TimeOfDay{Hour: 8, Minute: 0},
	}
}

// DefaultIconSettings returns the icon placement record used when none has
// been saved.
func DefaultIconSettings() domain.IconSettings {
	return domain.IconSettings{Position: "end", Offset: 2}
}

// Config is the typed accessor over a KV backend.
type Config struct {
	kv KV
}

func NewConfig(kv KV) *Config {
	return &Config{kv: kv}
}

// Triggers returns the configured manual trigger list, or the defaults if no
// record exists. Reads never write defaults back.
func (c *Config) Triggers(ctx context.Context) ([]domain.TimeOfDay, error) {
	var triggers []domain.TimeOfDay
	ok, err := c.read(ctx, keyTriggers, &triggers)
	if err != nil {
		return nil, err
	}
	if !ok {
		return DefaultTriggers(), nil
	}
	return triggers, nil
}

// SetTriggers replaces the manual trigger list. Duplicates are rejected.
func (c *Config) SetTriggers(ctx context.Context, triggers []domain.TimeOfDay) error {
	seen := make(map[domain.TimeOfDay]bool, len(triggers))
	for _, t := range triggers {
		if !t.Valid() {
			return fmt.Errorf("invalid trigger %02d:%02d", t.Hour, t.Minute)
		}
		if seen[t] {
			return fmt.Errorf("%w: %s", ErrDuplicateTrigger, t)
		}
		seen[t] = true
	}
	return c.write(ctx, keyTriggers, triggers)
}

// AddTrigger appends a trigger via whole-record read-modify-write.
func (c *Config) AddTrigger(ctx context.Context, t domain.TimeOfDay) error {
	triggers, err := c.Triggers(ctx)
	if err != nil {
		return err
	}
	for _, existing := range triggers {
		if existing == t {
			return fmt.Errorf("%w: %s", ErrDuplicateTrigger, t)
		}
	}
	return c.SetTriggers(ctx, append(triggers, t))
}

// RemoveTrigger removes a trigger via whole-record read-modify-write.
func (c *Config) RemoveTrigger(ctx context.Context, t domain.TimeOfDay) error {
	triggers, err := c.Triggers(ctx)
	if err != nil {
		return err
	}
	kept := triggers[:0]
	found := false
	for _, existing := range triggers {
		if existing == t {
			found = true
			continue
		}
		kept = append(kept, existing)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrTriggerNotFound, t)
	}
	return c.SetTriggers(ctx, kept)
}

// IntervalRule returns the interval record, or the default if none exists.
func (c *Config) IntervalRule(ctx context.Context) (domain.IntervalRule, error) {
	var rule domain.IntervalRule
	ok, err := c.read(ctx, keyInterval, &rule)
	if err != nil {
		return domain.IntervalRule{}, err
	}
	if !ok {
		return DefaultIntervalRule(), nil
	}
	return rule, nil
}

// SetIntervalRule replaces the interval record.
func (c *Config) SetIntervalRule(ctx context.Context, rule domain.IntervalRule) error {
	if !rule.Valid() {
		return fmt.Errorf("invalid interval rule: hours=%d start=%s", rule.PeriodHours, rule.DailyStart)
	}
	return c.write(ctx, keyInterval, rule)
}

// Snooze suppresses interval reminders until the next daily start after now.
// This is the acknowledgement path: the host calls it after the user acts on
// a reminder.
func (c *Config) Snooze(ctx context.Context, now time.Time) error {
	rule, err := c.IntervalRule(ctx)
	if err != nil {
		return err
	}
	return c.SetIntervalRule(ctx, snooze.Set(rule, now))
}

// ClearSnooze removes any snooze window.
func (c *Config) ClearSnooze(ctx context.Context) error {
	rule, err := c.IntervalRule(ctx)
	if err != nil {
		return err
	}
	return c.SetIntervalRule(ctx, snooze.Clear(rule))
}

// IconSettings returns the UI-owned icon record, or the default if none
// exists. The engine persists it for the host but never consumes it.
func (c *Config) IconSettings(ctx context.Context) (domain.IconSettings, error) {
	var icon domain.IconSettings
	ok, err := c.read(ctx, keyIcon, &icon)
	if err != nil {
		return domain.IconSettings{}, err
	}
	if !ok {
		return DefaultIconSettings(), nil
	}
	return icon, nil
}

func (c *Config) SetIconSettings(ctx context.Context, icon domain.IconSettings) error {
	return c.write(ctx, keyIcon, icon)
}

// AlarmSlots returns the trigger -> registered alarm ID map used by the
// planner to cancel the right alarm when a trigger is removed. Keys are the
// "HH:MM" string form of the trigger.
func (c *Config) AlarmSlots(ctx context.Context) (map[string]int, error) {
	var slots map[string]int
	ok, err := c.read(ctx, keySlots, &slots)
	if err != nil {
		return nil, err
	}
	if !ok || slots == nil {
		return map[string]int{}, nil
	}
	return slots, nil
}

func (c *Config) SetAlarmSlots(ctx context.Context, slots map[string]int) error {
	return c.write(ctx, keySlots, slots)
}

func (c *Config) read(ctx context.Context, key string, out any) (bool, error) {
	data, ok, err := c.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *Config) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
