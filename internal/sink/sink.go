// Package sink defines the notification delivery boundary. The engine only
// ever calls this interface; actual delivery (toast, system notification,
// host-bridge alarm) belongs to the host. Sink failures are never fatal: the
// worst case is a missed or duplicated reminder.
package sink

import (
	"context"
	"errors"
	"time"

	"github.com/djlord-it/easy-remind/internal/domain"
)

// ErrUnavailable is wrapped by sink implementations when the delivery
// channel cannot be reached.
var ErrUnavailable = errors.New("notification sink unavailable")

// Payload is the opaque notification content handed to the sink.
type Payload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
	EventID string `json:"event_id,omitempty"`

	// ActionURL is opened when the user taps the notification.
	ActionURL string `json:"action_url,omitempty"`
}

// Sink is the boundary capability implemented by the host.
//
// Notify delivers immediately. ScheduleAt registers a future alarm;
// re-registering an ID overwrites the previous alarm. ListScheduled returns
// a snapshot of registered alarms so the planner can avoid duplicates.
type Sink interface {
	Notify(ctx context.Context, payload Payload) error
	ScheduleAt(ctx context.Context, at time.Time, id int, payload Payload) error
	Cancel(ctx context.Context, id int) error
	ListScheduled(ctx context.Context) ([]domain.ScheduledAlarm, error)
}
