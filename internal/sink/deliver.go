package sink

import (
	"context"
	"log"
	"time"

	"github.com/djlord-it/easy-remind/internal/domain"
)

// MetricsSink records delivery metrics. Methods must be non-blocking and
// fire-and-forget.
type MetricsSink interface {
	NotifyOutcome(outcome string)
	SinkError(op string)
}

const (
	outcomeSuccess = "success"
	outcomeFailed  = "failed"
)

// Deliverer consumes reminder events and turns each into an immediate
// notification. Failures are logged and counted, never propagated: a failed
// delivery costs one reminder.
type Deliverer struct {
	sink      Sink
	metrics   MetricsSink
	actionURL string
}

func NewDeliverer(s Sink, metrics MetricsSink, actionURL string) *Deliverer {
	return &Deliverer{sink: s, metrics: metrics, actionURL: actionURL}
}

// Run processes events from the channel until ctx is cancelled, then drains
// whatever is left in the buffer.
func (d *Deliverer) Run(ctx context.Context, ch <-chan domain.ReminderEvent) {
	for {
		select {
		case <-ctx.Done():
			d.drain(ch)
			return
		case event := <-ch:
			d.deliver(ctx, event)
		}
	}
}

// DrainTimeout bounds how long buffered events are processed after shutdown.
const DrainTimeout = 10 * time.Second

func (d *Deliverer) drain(ch <-chan domain.ReminderEvent) {
	drainCtx, cancel := context.WithTimeout(context.Background(), DrainTimeout)
	defer cancel()

	for {
		select {
		case <-drainCtx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			d.deliver(drainCtx, event)
		default:
			return
		}
	}
}

func (d *Deliverer) deliver(ctx context.Context, event domain.ReminderEvent) {
	if err := d.sink.Notify(ctx, EventPayload(event, d.actionURL)); err != nil {
		log.Printf("deliverer: notify %s reminder: %v", event.Kind, err)
		d.metrics.SinkError("notify")
		d.metrics.NotifyOutcome(outcomeFailed)
		return
	}
	d.metrics.NotifyOutcome(outcomeSuccess)
}

// EventPayload builds the notification content for a fired reminder.
func EventPayload(event domain.ReminderEvent, actionURL string) Payload {
	message := "Reminder: it's " + event.Trigger.String() + "."
	if event.Kind == domain.ReminderKindInterval {
		message = "Recurring reminder is due."
	}
	return Payload{
		Title:     "easyremind",
		Message:   message,
		Kind:      string(event.Kind),
		EventID:   event.ID.String(),
		ActionURL: actionURL,
	}
}
