package evaluator

import (
	"context"

	"github.com/djlord-it/easy-remind/internal/domain"
)

// EventBus is a buffered channel carrying reminder events from the runner to
// the delivery loop.
type EventBus struct {
	ch chan domain.ReminderEvent
}

func NewEventBus(buffer int) *EventBus {
	return &EventBus{
		ch: make(chan domain.ReminderEvent, buffer),
	}
}

func (b *EventBus) Emit(ctx context.Context, event domain.ReminderEvent) error {
	select {
	case b.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *EventBus) Channel() <-chan domain.ReminderEvent {
	return b.ch
}
