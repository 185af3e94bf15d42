package metrics

import "time"

// NoopSink is a no-op implementation of Sink.
// Used when metrics are disabled to avoid nil checks.
type NoopSink struct{}

// NewNoopSink returns a no-op metrics sink.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) TickStarted()                                            {}
func (n *NoopSink) TickCompleted(duration time.Duration, fires int, err error) {}
func (n *NoopSink) ManualFire()                                             {}
func (n *NoopSink) IntervalFire()                                           {}
func (n *NoopSink) SnoozeSuppressed()                                       {}
func (n *NoopSink) EmitError()                                              {}
func (n *NoopSink) NotifyOutcome(outcome string)                            {}
func (n *NoopSink) SyncCompleted(duration time.Duration, err error)         {}
func (n *NoopSink) AlarmsPlanned(count int)                                 {}
func (n *NoopSink) AlarmRegistered()                                        {}
func (n *NoopSink) AlarmSkipped()                                           {}
func (n *NoopSink) AlarmCancelled()                                         {}
func (n *NoopSink) IDAllocationFailure()                                    {}
func (n *NoopSink) SinkError(op string)                                     {}
