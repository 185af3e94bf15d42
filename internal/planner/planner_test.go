package planner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/djlord-it/easy-remind/internal/domain"
	"github.com/djlord-it/easy-remind/internal/metrics"
	"github.com/djlord-it/easy-remind/internal/sink"
	"github.com/djlord-it/easy-remind/internal/store"
	"github.com/djlord-it/easy-remind/internal/store/memory"
	"github.com/djlord-it/easy-remind/internal/testutil"
)

// fakeSink records calls and keeps registered alarms in memory.
type fakeSink struct {
	mu        sync.Mutex
	alarms    map[int]domain.ScheduledAlarm
	scheduled int
	cancelled []int
	listErr   error
}

func newFakeSink() *fakeSink {
	return &fakeSink{alarms: make(map[int]domain.ScheduledAlarm)}
}

func (s *fakeSink) Notify(ctx context.Context, payload sink.Payload) error { return nil }

func (s *fakeSink) ScheduleAt(ctx context.Context, at time.Time, id int, payload sink.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alarms[id] = domain.ScheduledAlarm{ID: id, Timestamp: at}
	s.scheduled++
	return nil
}

func (s *fakeSink) Cancel(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.alarms, id)
	s.cancelled = append(s.cancelled, id)
	return nil
}

func (s *fakeSink) ListScheduled(ctx context.Context) ([]domain.ScheduledAlarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]domain.ScheduledAlarm, 0, len(s.alarms))
	for _, a := range s.alarms {
		out = append(out, a)
	}
	return out, nil
}

func (s *fakeSink) scheduleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduled
}

func newTestPlanner(t *testing.T, cfg *store.Config, snk sink.Sink, now time.Time) *Planner {
	t.Helper()
	p := New(DefaultConfig(), cfg, snk, metrics.NewNoopSink())
	clk := testutil.NewFakeClock(now)
	p.clock = clk.Now
	return p
}

func TestPlanManualAlarms_NextOccurrences(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	triggers := []domain.TimeOfDay{{Hour: 9}, {Hour: 21}}

	alarms := PlanManualAlarms(triggers, now)
	if len(alarms) != 2 {
		t.Fatalf("got %d alarms, want 2", len(alarms))
	}
	// 09:00 already passed: tomorrow. 21:00 still ahead: today.
	want0 := time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)
	want1 := time.Date(2024, 1, 15, 21, 0, 0, 0, time.UTC)
	if !alarms[0].At.Equal(want0) {
		t.Errorf("alarm[0].At = %v, want %v", alarms[0].At, want0)
	}
	if !alarms[1].At.Equal(want1) {
		t.Errorf("alarm[1].At = %v, want %v", alarms[1].At, want1)
	}
}

func TestPlanIntervalAlarms_SkipsPastBoundaries(t *testing.T) {
	rule := domain.IntervalRule{Enabled: true, PeriodHours: 2, DailyStart: domain.TimeOfDay{Hour: 8}}
	now := time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC)

	alarms := PlanIntervalAlarms(rule, now, 1)
	if len(alarms) == 0 {
		t.Fatal("no alarms planned")
	}
	// 08:00 and 10:00 are past; the first planned boundary is 12:00.
	first := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	if !alarms[0].Equal(first) {
		t.Errorf("first alarm = %v, want %v", alarms[0], first)
	}
	for _, a := range alarms {
		if a.Before(now) {
			t.Errorf("planned alarm %v is in the past", a)
		}
	}
	// 2h steps from 08:00 over one day: 12, 14, ..., 06 next day = 10 alarms.
	if len(alarms) != 10 {
		t.Errorf("got %d alarms, want 10", len(alarms))
	}
}

func TestPlanIntervalAlarms_DriftAcrossMidnight(t *testing.T) {
	// 5h steps from 08:00: 08, 13, 18, 23, then 04:00 the next day. The
	// pre-registered series keeps stepping instead of realigning daily.
	rule := domain.IntervalRule{Enabled: true, PeriodHours: 5, DailyStart: domain.TimeOfDay{Hour: 8}}
	now := time.Date(2024, 1, 15, 7, 0, 0, 0, time.UTC)

	alarms := PlanIntervalAlarms(rule, now, 1)
	want := []time.Time{
		time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 13, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 16, 4, 0, 0, 0, time.UTC),
	}
	if len(alarms) != len(want) {
		t.Fatalf("got %d alarms %v, want %d", len(alarms), alarms, len(want))
	}
	for i := range want {
		if !alarms[i].Equal(want[i]) {
			t.Errorf("alarm[%d] = %v, want %v", i, alarms[i], want[i])
		}
	}
}

func TestPlanIntervalAlarms_DisabledRule(t *testing.T) {
	rule := domain.IntervalRule{Enabled: false, PeriodHours: 2, DailyStart: domain.TimeOfDay{Hour: 8}}
	if alarms := PlanIntervalAlarms(rule, time.Now(), 7); alarms != nil {
		t.Errorf("disabled rule planned %v", alarms)
	}
}

func TestReconcile_ToleranceWindow(t *testing.T) {
	anchor := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	existing := []domain.ScheduledAlarm{{ID: 1, Timestamp: anchor}}

	desired := []time.Time{
		anchor,                              // exact: covered
		anchor.Add(999 * time.Millisecond),  // inside tolerance: covered
		anchor.Add(-time.Second),            // boundary: covered
		anchor.Add(1001 * time.Millisecond), // outside: register
		anchor.Add(time.Hour),               // far away: register
	}

	toRegister, toSkip := Reconcile(desired, existing)
	if len(toSkip) != 3 {
		t.Errorf("toSkip = %v, want 3 entries", toSkip)
	}
	if len(toRegister) != 2 {
		t.Errorf("toRegister = %v, want 2 entries", toRegister)
	}
}

func TestReconcile_NoExisting_RegistersAll(t *testing.T) {
	desired := []time.Time{
		time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC),
	}
	toRegister, toSkip := Reconcile(desired, nil)
	if len(toRegister) != 2 || len(toSkip) != 0 {
		t.Errorf("toRegister=%v toSkip=%v, want all registered", toRegister, toSkip)
	}
}

func TestAllocateID_AvoidsTaken(t *testing.T) {
	p := New(Config{IDSpace: 10, MaxIDAttempts: 100}, nil, nil, metrics.NewNoopSink())

	taken := map[int]bool{}
	for i := 1; i <= 9; i++ {
		taken[i] = true
	}

	// Only 10 is free; random draws must eventually land on it.
	id, err := p.AllocateID(taken)
	if err != nil {
		t.Fatalf("AllocateID: %v", err)
	}
	if id != 10 {
		t.Errorf("id = %d, want 10", id)
	}
}

func TestAllocateID_ExhaustedSpace(t *testing.T) {
	p := New(Config{IDSpace: 50, MaxIDAttempts: 200}, nil, nil, metrics.NewNoopSink())

	taken := map[int]bool{}
	for i := 1; i <= 50; i++ {
		taken[i] = true
	}

	_, err := p.AllocateID(taken)
	if !errors.Is(err, ErrIDSpaceExhausted) {
		t.Errorf("err = %v, want ErrIDSpaceExhausted", err)
	}
}

func TestSync_RegistersAndIsIdempotent(t *testing.T) {
	ctx := testutil.TestContext(t)
	cfg := store.NewConfig(memory.New())
	now := time.Date(2024, 1, 15, 7, 0, 0, 0, time.UTC)

	if err := cfg.SetTriggers(ctx, []domain.TimeOfDay{{Hour: 9}, {Hour: 21}}); err != nil {
		t.Fatalf("SetTriggers: %v", err)
	}
	rule := domain.IntervalRule{Enabled: true, PeriodHours: 12, DailyStart: domain.TimeOfDay{Hour: 8}}
	if err := cfg.SetIntervalRule(ctx, rule); err != nil {
		t.Fatalf("SetIntervalRule: %v", err)
	}

	snk := newFakeSink()
	p := newTestPlanner(t, cfg, snk, now)

	if err := p.Sync(ctx); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	// 2 manual + 14 interval boundaries (12h steps over 7 days).
	first := snk.scheduleCount()
	if first != 16 {
		t.Errorf("scheduled = %d, want 16", first)
	}

	slots, err := cfg.AlarmSlots(ctx)
	if err != nil {
		t.Fatalf("AlarmSlots: %v", err)
	}
	if len(slots) != 2 {
		t.Errorf("slots = %v, want entries for both triggers", slots)
	}

	// Unchanged config and unchanged registered alarms: nothing to add.
	if err := p.Sync(ctx); err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if snk.scheduleCount() != first {
		t.Errorf("second sync scheduled %d more alarms", snk.scheduleCount()-first)
	}
}

func TestSync_RemovedTrigger_CancelsItsAlarm(t *testing.T) {
	ctx := testutil.TestContext(t)
	cfg := store.NewConfig(memory.New())
	now := time.Date(2024, 1, 15, 7, 0, 0, 0, time.UTC)

	if err := cfg.SetTriggers(ctx, []domain.TimeOfDay{{Hour: 9}, {Hour: 21}}); err != nil {
		t.Fatalf("SetTriggers: %v", err)
	}
	if err := cfg.SetIntervalRule(ctx, store.DefaultIntervalRule()); err != nil {
		t.Fatalf("SetIntervalRule: %v", err)
	}

	snk := newFakeSink()
	p := newTestPlanner(t, cfg, snk, now)
	if err := p.Sync(ctx); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	slots, _ := cfg.AlarmSlots(ctx)
	removedID := slots["09:00"]
	if removedID == 0 {
		t.Fatal("no slot registered for 09:00")
	}

	if err := cfg.RemoveTrigger(ctx, domain.TimeOfDay{Hour: 9}); err != nil {
		t.Fatalf("RemoveTrigger: %v", err)
	}
	if err := p.Sync(ctx); err != nil {
		t.Fatalf("Sync after removal: %v", err)
	}

	cancelled := false
	for _, id := range snk.cancelled {
		if id == removedID {
			cancelled = true
		}
	}
	if !cancelled {
		t.Errorf("alarm id=%d for removed trigger not cancelled (cancelled: %v)", removedID, snk.cancelled)
	}

	slots, _ = cfg.AlarmSlots(ctx)
	if _, ok := slots["09:00"]; ok {
		t.Error("slot for removed trigger still present")
	}
}

func TestCancelTrigger_UsesSlotID(t *testing.T) {
	ctx := testutil.TestContext(t)
	cfg := store.NewConfig(memory.New())
	now := time.Date(2024, 1, 15, 7, 0, 0, 0, time.UTC)

	if err := cfg.SetTriggers(ctx, []domain.TimeOfDay{{Hour: 9}}); err != nil {
		t.Fatalf("SetTriggers: %v", err)
	}
	if err := cfg.SetIntervalRule(ctx, store.DefaultIntervalRule()); err != nil {
		t.Fatalf("SetIntervalRule: %v", err)
	}

	snk := newFakeSink()
	p := newTestPlanner(t, cfg, snk, now)
	if err := p.Sync(ctx); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	slots, _ := cfg.AlarmSlots(ctx)
	id := slots["09:00"]

	if err := p.CancelTrigger(ctx, domain.TimeOfDay{Hour: 9}); err != nil {
		t.Fatalf("CancelTrigger: %v", err)
	}
	if len(snk.cancelled) != 1 || snk.cancelled[0] != id {
		t.Errorf("cancelled = %v, want [%d]", snk.cancelled, id)
	}

	// Cancelling again is a no-op.
	if err := p.CancelTrigger(ctx, domain.TimeOfDay{Hour: 9}); err != nil {
		t.Fatalf("second CancelTrigger: %v", err)
	}
	if len(snk.cancelled) != 1 {
		t.Errorf("second cancel issued a sink call: %v", snk.cancelled)
	}
}

func TestSync_ListFailure_PlansEverything(t *testing.T) {
	ctx := testutil.TestContext(t)
	cfg := store.NewConfig(memory.New())
	now := time.Date(2024, 1, 15, 7, 0, 0, 0, time.UTC)

	if err := cfg.SetTriggers(ctx, []domain.TimeOfDay{{Hour: 9}}); err != nil {
		t.Fatalf("SetTriggers: %v", err)
	}
	if err := cfg.SetIntervalRule(ctx, store.DefaultIntervalRule()); err != nil {
		t.Fatalf("SetIntervalRule: %v", err)
	}

	snk := newFakeSink()
	p := newTestPlanner(t, cfg, snk, now)
	if err := p.Sync(ctx); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	first := snk.scheduleCount()

	// Snapshot read now fails: the planner assumes nothing is registered and
	// re-registers, preferring duplicates over misses. Manual alarms reuse
	// their slot IDs, so re-registration overwrites rather than duplicates.
	snk.listErr = errors.New("bridge down")
	if err := p.Sync(ctx); err != nil {
		t.Fatalf("Sync with list failure: %v", err)
	}
	if snk.scheduleCount() <= first {
		t.Errorf("scheduled = %d after list failure, want more than %d", snk.scheduleCount(), first)
	}
}
