package sink

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/djlord-it/easy-remind/internal/domain"
)

// LogSink writes notifications to the process log and keeps registered
// alarms in memory. It serves hosts without a delivery bridge and doubles as
// the fallback alert channel.
type LogSink struct {
	mu     sync.Mutex
	alarms map[int]domain.ScheduledAlarm
}

func NewLogSink() *LogSink {
	return &LogSink{alarms: make(map[int]domain.ScheduledAlarm)}
}

func (s *LogSink) Notify(ctx context.Context, payload Payload) error {
	log.Printf("sink: NOTIFY [%s] %s: %s", payload.Kind, payload.Title, payload.Message)
	return nil
}

func (s *LogSink) ScheduleAt(ctx context.Context, at time.Time, id int, payload Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Same-ID registration overwrites, matching bridge semantics.
	s.alarms[id] = domain.ScheduledAlarm{ID: id, Timestamp: at}
	log.Printf("sink: scheduled id=%d at=%s", id, at.Format(time.RFC3339))
	return nil
}

func (s *LogSink) Cancel(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.alarms, id)
	log.Printf("sink: cancelled id=%d", id)
	return nil
}

func (s *LogSink) ListScheduled(ctx context.Context) ([]domain.ScheduledAlarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ScheduledAlarm, 0, len(s.alarms))
	for _, a := range s.alarms {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
