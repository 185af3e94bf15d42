package evaluator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/djlord-it/easy-remind/internal/domain"
)

// ConfigSource reads the reminder configuration. Reads are whole-record; the
// runner never mutates config.
type ConfigSource interface {
	Triggers(ctx context.Context) ([]domain.TimeOfDay, error)
	IntervalRule(ctx context.Context) (domain.IntervalRule, error)
}

// EventEmitter hands a fired reminder to the delivery side.
type EventEmitter interface {
	Emit(ctx context.Context, event domain.ReminderEvent) error
}

// MetricsSink records runner metrics. Methods must be non-blocking and
// fire-and-forget.
type MetricsSink interface {
	TickStarted()
	TickCompleted(duration time.Duration, fires int, err error)
	ManualFire()
	IntervalFire()
	SnoozeSuppressed()
	EmitError()
}

type Config struct {
	TickInterval time.Duration
}

// Runner polls the evaluator once per tick and emits an event for every due
// trigger not already fired in its minute. Evaluate itself reports "due"
// regardless of how often it is called within a minute; the dedup ledger
// here is what keeps re-invocation from double-firing.
type Runner struct {
	config  Config
	source  ConfigSource
	emitter EventEmitter
	metrics MetricsSink
	clock   func() time.Time

	fired map[string]time.Time
}

func NewRunner(config Config, source ConfigSource, emitter EventEmitter, metrics MetricsSink) *Runner {
	if config.TickInterval <= 0 {
		config.TickInterval = time.Minute
	}
	return &Runner{
		config:  config,
		source:  source,
		emitter: emitter,
		metrics: metrics,
		clock:   time.Now,
		fired:   make(map[string]time.Time),
	}
}

// Run evaluates once immediately, then on every tick, until ctx is
// cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.config.TickInterval)
	defer ticker.Stop()

	log.Printf("evaluator: started, tick=%s", r.config.TickInterval)

	if err := r.processTick(ctx); err != nil {
		log.Printf("evaluator: tick error: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("evaluator: stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := r.processTick(ctx); err != nil {
				log.Printf("evaluator: tick error: %v", err)
			}
		}
	}
}

func (r *Runner) processTick(ctx context.Context) error {
	start := r.clock()
	r.metrics.TickStarted()

	fires, err := r.evaluateOnce(ctx, start)
	r.metrics.TickCompleted(r.clock().Sub(start), fires, err)
	return err
}

func (r *Runner) evaluateOnce(ctx context.Context, now time.Time) (int, error) {
	triggers, err := r.source.Triggers(ctx)
	if err != nil {
		return 0, fmt.Errorf("read triggers: %w", err)
	}
	rule, err := r.source.IntervalRule(ctx)
	if err != nil {
		return 0, fmt.Errorf("read interval rule: %w", err)
	}

	decision := Evaluate(now, triggers, rule)
	if decision.Suppressed {
		r.metrics.SnoozeSuppressed()
	}

	minute := now.Truncate(time.Minute)
	fires := 0

	for _, t := range decision.Manual {
		if r.fire(ctx, domain.ReminderKindManual, t, minute, now) {
			r.metrics.ManualFire()
			fires++
		}
	}
	if decision.Interval {
		if r.fire(ctx, domain.ReminderKindInterval, rule.DailyStart, minute, now) {
			r.metrics.IntervalFire()
			fires++
		}
	}

	r.pruneFired(now)
	return fires, nil
}

// fire emits one event unless its (kind, trigger, minute) key already fired.
// Reports whether an event was emitted.
func (r *Runner) fire(ctx context.Context, kind domain.ReminderKind, trigger domain.TimeOfDay, minute, now time.Time) bool {
	key := dedupKey(kind, trigger, minute)
	if _, done := r.fired[key]; done {
		return false
	}

	event := domain.ReminderEvent{
		ID:          uuid.New(),
		Kind:        kind,
		Trigger:     trigger,
		ScheduledAt: minute,
		FiredAt:     now,
		DedupKey:    key,
	}

	if err := r.emitter.Emit(ctx, event); err != nil {
		// Delivery is best-effort; a full buffer or cancelled context costs
		// one reminder, never the loop.
		log.Printf("evaluator: emit %s reminder: %v", kind, err)
		r.metrics.EmitError()
		return false
	}

	r.fired[key] = now
	log.Printf("evaluator: fired kind=%s trigger=%s at=%s", kind, trigger, minute.Format(time.RFC3339))
	return true
}

// pruneFired drops dedup entries older than an hour. Entries only need to
// outlive their minute; an hour gives slack for clock adjustments.
func (r *Runner) pruneFired(now time.Time) {
	cutoff := now.Add(-time.Hour)
	for key, at := range r.fired {
		if at.Before(cutoff) {
			delete(r.fired, key)
		}
	}
}

func dedupKey(kind domain.ReminderKind, trigger domain.TimeOfDay, minute time.Time) string {
	data := fmt.Sprintf("%s:%s:%d", kind, trigger, minute.Unix())
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
