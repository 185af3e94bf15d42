// Package planner projects the logical trigger rules into concrete future
// alarms for hosts that cannot poll and must pre-register wall-clock alarms
// with an external service. It reconciles the desired alarms against those
// already registered so repeated syncs do not duplicate, and it allocates
// the small integer IDs the alarm service requires.
//
// Like the rest of the engine, a failed sink call is logged and skipped; the
// alarm stays desired, so the next sync pass naturally retries it.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/djlord-it/easy-remind/internal/clock"
	"github.com/djlord-it/easy-remind/internal/domain"
	"github.com/djlord-it/easy-remind/internal/sink"
)

// ErrIDSpaceExhausted is returned when no unused alarm ID could be drawn
// within the configured attempt budget.
var ErrIDSpaceExhausted = errors.New("alarm ID space exhausted")

// ReconcileTolerance is how close an existing alarm must be to a desired
// instant to count as covering it. It absorbs clock and serialization drift
// between the engine and the alarm service.
const ReconcileTolerance = time.Second

// ConfigSource reads configuration and keeps the trigger -> alarm ID slot
// map, the only record the planner writes.
type ConfigSource interface {
	Triggers(ctx context.Context) ([]domain.TimeOfDay, error)
	IntervalRule(ctx context.Context) (domain.IntervalRule, error)
	AlarmSlots(ctx context.Context) (map[string]int, error)
	SetAlarmSlots(ctx context.Context, slots map[string]int) error
}

// MetricsSink records planner metrics. Methods must be non-blocking and
// fire-and-forget.
type MetricsSink interface {
	SyncCompleted(duration time.Duration, err error)
	AlarmsPlanned(count int)
	AlarmRegistered()
	AlarmSkipped()
	AlarmCancelled()
	IDAllocationFailure()
	SinkError(op string)
}

type Config struct {
	// HorizonDays is how far ahead interval alarms are enumerated.
	// Default: 7.
	HorizonDays int

	// IDSpace is the size of the alarm ID space; IDs are drawn from
	// [1, IDSpace]. Default: 9999.
	IDSpace int

	// MaxIDAttempts bounds collision retries per allocation.
	// Default: 100.
	MaxIDAttempts int
}

// DefaultConfig returns the default planner configuration.
func DefaultConfig() Config {
	return Config{
		HorizonDays:   7,
		IDSpace:       9999,
		MaxIDAttempts: 100,
	}
}

type Planner struct {
	config  Config
	source  ConfigSource
	sink    sink.Sink
	metrics MetricsSink
	clock   func() time.Time
	randInt func(n int) int
}

func New(config Config, source ConfigSource, s sink.Sink, metrics MetricsSink) *Planner {
	if config.HorizonDays <= 0 {
		config.HorizonDays = 7
	}
	if config.IDSpace <= 0 {
		config.IDSpace = 9999
	}
	if config.MaxIDAttempts <= 0 {
		config.MaxIDAttempts = 100
	}
	return &Planner{
		config:  config,
		source:  source,
		sink:    s,
		metrics: metrics,
		clock:   time.Now,
		randInt: rand.IntN,
	}
}

// ManualAlarm pairs a trigger with its next concrete occurrence.
type ManualAlarm struct {
	Trigger domain.TimeOfDay
	At      time.Time
}

// PlanManualAlarms maps each trigger to its next occurrence after now.
func PlanManualAlarms(triggers []domain.TimeOfDay, now time.Time) []ManualAlarm {
	alarms := make([]ManualAlarm, 0, len(triggers))
	for _, t := range triggers {
		alarms = append(alarms, ManualAlarm{Trigger: t, At: clock.NextOccurrence(now, t)})
	}
	return alarms
}

// PlanIntervalAlarms enumerates every interval boundary from today's daily
// start through horizonDays ahead, stepping by the rule's period. Boundaries
// already in the past are omitted, not rescheduled. Stepping continuously
// means boundaries drift across midnight when the period does not divide 24.
func PlanIntervalAlarms(rule domain.IntervalRule, now time.Time, horizonDays int) []time.Time {
	if !rule.Enabled {
		return nil
	}
	period := rule.Period()
	if period <= 0 {
		return nil
	}

	start := clock.DailyStart(now, rule.DailyStart)
	horizon := time.Date(now.Year(), now.Month(), now.Day()+horizonDays,
		rule.DailyStart.Hour, rule.DailyStart.Minute, 0, 0, now.Location())

	var out []time.Time
	for t := start; t.Before(horizon); t = t.Add(period) {
		if t.Before(now) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Reconcile splits desired instants into those needing registration and
// those already covered by an existing alarm within ReconcileTolerance.
func Reconcile(desired []time.Time, existing []domain.ScheduledAlarm) (toRegister, toSkip []time.Time) {
	for _, want := range desired {
		if covered(existing, want) {
			toSkip = append(toSkip, want)
		} else {
			toRegister = append(toRegister, want)
		}
	}
	return toRegister, toSkip
}

func covered(existing []domain.ScheduledAlarm, at time.Time) bool {
	for _, a := range existing {
		delta := a.Timestamp.Sub(at)
		if delta < 0 {
			delta = -delta
		}
		if delta <= ReconcileTolerance {
			return true
		}
	}
	return false
}

// AllocateID draws a random ID from [1, IDSpace] not present in taken.
// It gives up with ErrIDSpaceExhausted after MaxIDAttempts draws, so a full
// (or nearly full) ID space degrades to a per-alarm failure instead of an
// unbounded loop.
func (p *Planner) AllocateID(taken map[int]bool) (int, error) {
	for i := 0; i < p.config.MaxIDAttempts; i++ {
		id := p.randInt(p.config.IDSpace) + 1
		if !taken[id] {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w after %d attempts", ErrIDSpaceExhausted, p.config.MaxIDAttempts)
}

// Run syncs immediately, then on every interval, until ctx is cancelled.
// Hosts call this once at startup; config edits between ticks are picked up
// on the next pass.
func (p *Planner) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("planner: started (resync=%s, horizon=%dd)", interval, p.config.HorizonDays)

	if err := p.Sync(ctx); err != nil {
		log.Printf("planner: sync error: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("planner: stopped")
			return
		case <-ticker.C:
			if err := p.Sync(ctx); err != nil {
				log.Printf("planner: sync error: %v", err)
			}
		}
	}
}

// Sync performs one full planning pass: read config, snapshot registered
// alarms, cancel alarms for removed triggers, register whatever is missing.
func (p *Planner) Sync(ctx context.Context) error {
	start := p.clock()
	err := p.sync(ctx)
	p.metrics.SyncCompleted(p.clock().Sub(start), err)
	return err
}

func (p *Planner) sync(ctx context.Context) error {
	now := p.clock()

	triggers, err := p.source.Triggers(ctx)
	if err != nil {
		return fmt.Errorf("read triggers: %w", err)
	}
	rule, err := p.source.IntervalRule(ctx)
	if err != nil {
		return fmt.Errorf("read interval rule: %w", err)
	}
	slots, err := p.source.AlarmSlots(ctx)
	if err != nil {
		return fmt.Errorf("read alarm slots: %w", err)
	}

	existing, err := p.sink.ListScheduled(ctx)
	if err != nil {
		// Degrade to planning everything: a duplicate alarm beats a missed
		// one.
		log.Printf("planner: list scheduled alarms: %v (assuming none registered)", err)
		p.metrics.SinkError("list_scheduled")
		existing = nil
	}

	taken := make(map[int]bool, len(existing)+len(slots))
	for _, a := range existing {
		taken[a.ID] = true
	}
	for _, id := range slots {
		taken[id] = true
	}

	configured := make(map[string]bool, len(triggers))
	for _, t := range triggers {
		configured[t.String()] = true
	}

	// Cancel alarms whose trigger was removed. A failed cancel keeps the
	// slot so the next pass retries.
	for key, id := range slots {
		if configured[key] {
			continue
		}
		if err := p.sink.Cancel(ctx, id); err != nil {
			log.Printf("planner: cancel alarm id=%d for removed trigger %s: %v", id, key, err)
			p.metrics.SinkError("cancel")
			continue
		}
		delete(slots, key)
		p.metrics.AlarmCancelled()
		log.Printf("planner: cancelled alarm id=%d for removed trigger %s", id, key)
	}

	manual := PlanManualAlarms(triggers, now)
	intervals := PlanIntervalAlarms(rule, now, p.config.HorizonDays)
	p.metrics.AlarmsPlanned(len(manual) + len(intervals))

	for _, m := range manual {
		if covered(existing, m.At) {
			p.metrics.AlarmSkipped()
			continue
		}

		id, ok := slots[m.Trigger.String()]
		if !ok {
			id, err = p.AllocateID(taken)
			if err != nil {
				// Skip this one alarm; keep planning the rest.
				log.Printf("planner: allocate id for trigger %s: %v", m.Trigger, err)
				p.metrics.IDAllocationFailure()
				continue
			}
		}

		payload := sink.Payload{
			Title:   "easyremind",
			Message: "Reminder: it's " + m.Trigger.String() + ".",
			Kind:    string(domain.ReminderKindManual),
		}
		if err := p.sink.ScheduleAt(ctx, m.At, id, payload); err != nil {
			log.Printf("planner: schedule trigger %s at %s: %v", m.Trigger, m.At.Format(time.RFC3339), err)
			p.metrics.SinkError("schedule_at")
			continue
		}
		slots[m.Trigger.String()] = id
		taken[id] = true
		p.metrics.AlarmRegistered()
	}

	toRegister, toSkip := Reconcile(intervals, existing)
	for range toSkip {
		p.metrics.AlarmSkipped()
	}
	for _, at := range toRegister {
		id, err := p.AllocateID(taken)
		if err != nil {
			log.Printf("planner: allocate id for interval alarm at %s: %v", at.Format(time.RFC3339), err)
			p.metrics.IDAllocationFailure()
			continue
		}
		payload := sink.Payload{
			Title:   "easyremind",
			Message: "Recurring reminder is due.",
			Kind:    string(domain.ReminderKindInterval),
		}
		if err := p.sink.ScheduleAt(ctx, at, id, payload); err != nil {
			log.Printf("planner: schedule interval alarm at %s: %v", at.Format(time.RFC3339), err)
			p.metrics.SinkError("schedule_at")
			continue
		}
		taken[id] = true
		p.metrics.AlarmRegistered()
	}

	if err := p.source.SetAlarmSlots(ctx, slots); err != nil {
		return fmt.Errorf("persist alarm slots: %w", err)
	}
	return nil
}

// CancelTrigger cancels the registered alarm for a removed trigger, if any.
// A sink failure is logged and left for the next sync pass to retry.
func (p *Planner) CancelTrigger(ctx context.Context, t domain.TimeOfDay) error {
	slots, err := p.source.AlarmSlots(ctx)
	if err != nil {
		return fmt.Errorf("read alarm slots: %w", err)
	}

	id, ok := slots[t.String()]
	if !ok {
		return nil
	}

	if err := p.sink.Cancel(ctx, id); err != nil {
		log.Printf("planner: cancel alarm id=%d for trigger %s: %v", id, t, err)
		p.metrics.SinkError("cancel")
		return nil
	}

	delete(slots, t.String())
	p.metrics.AlarmCancelled()
	if err := p.source.SetAlarmSlots(ctx, slots); err != nil {
		return fmt.Errorf("persist alarm slots: %w", err)
	}
	return nil
}
