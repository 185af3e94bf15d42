package metrics

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink using the Prometheus client library.
// All methods are non-blocking and fire-and-forget.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	// Evaluator metrics
	ticksTotal           prometheus.Counter
	tickErrorsTotal      prometheus.Counter
	tickDuration         prometheus.Histogram
	firesTotal           *prometheus.CounterVec
	snoozeSuppressions   prometheus.Counter
	emitErrorsTotal      prometheus.Counter

	// Delivery metrics
	notifyOutcomesTotal *prometheus.CounterVec

	// Planner metrics
	syncsTotal          prometheus.Counter
	syncErrorsTotal     prometheus.Counter
	syncDuration        prometheus.Histogram
	alarmsPlanned       prometheus.Gauge
	alarmsRegistered    prometheus.Counter
	alarmsSkipped       prometheus.Counter
	alarmsCancelled     prometheus.Counter
	idAllocFailures     prometheus.Counter
	sinkErrorsTotal     *prometheus.CounterVec
}

// NewPrometheusSink creates a new Prometheus metrics sink.
// Metrics that fail to register are still usable; the failure is only logged.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{}

	s.ticksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "easyremind_evaluator_ticks_total",
		Help: "Total number of evaluator ticks processed.",
	})
	s.tickErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "easyremind_evaluator_tick_errors_total",
		Help: "Total number of evaluator tick errors.",
	})
	s.tickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "easyremind_evaluator_tick_duration_seconds",
		Help:    "Duration of each evaluator tick in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})
	s.firesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "easyremind_reminder_fires_total",
		Help: "Total number of reminders fired, by kind.",
	}, []string{"kind"})
	s.snoozeSuppressions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "easyremind_snooze_suppressions_total",
		Help: "Total number of ticks on which an active snooze suppressed the interval rule.",
	})
	s.emitErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "easyremind_evaluator_emit_errors_total",
		Help: "Total number of reminder events dropped before delivery.",
	})
	s.notifyOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "easyremind_notify_outcomes_total",
		Help: "Total number of delivered notifications, by outcome.",
	}, []string{"outcome"})
	s.syncsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "easyremind_planner_syncs_total",
		Help: "Total number of planner sync passes.",
	})
	s.syncErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "easyremind_planner_sync_errors_total",
		Help: "Total number of failed planner sync passes.",
	})
	s.syncDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "easyremind_planner_sync_duration_seconds",
		Help:    "Duration of each planner sync pass in seconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	})
	s.alarmsPlanned = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "easyremind_planner_alarms_planned",
		Help: "Number of future alarms desired by the last sync pass.",
	})
	s.alarmsRegistered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "easyremind_planner_alarms_registered_total",
		Help: "Total number of alarms registered with the notification sink.",
	})
	s.alarmsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "easyremind_planner_alarms_skipped_total",
		Help: "Total number of desired alarms already covered by a registered alarm.",
	})
	s.alarmsCancelled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "easyremind_planner_alarms_cancelled_total",
		Help: "Total number of alarms cancelled for removed triggers.",
	})
	s.idAllocFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "easyremind_planner_id_allocation_failures_total",
		Help: "Total number of alarm ID allocations abandoned after exhausting attempts.",
	})
	s.sinkErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "easyremind_sink_errors_total",
		Help: "Total number of failed notification sink calls, by operation.",
	}, []string{"op"})

	for name, c := range map[string]prometheus.Collector{
		"easyremind_evaluator_ticks_total":                  s.ticksTotal,
		"easyremind_evaluator_tick_errors_total":            s.tickErrorsTotal,
		"easyremind_evaluator_tick_duration_seconds":        s.tickDuration,
		"easyremind_reminder_fires_total":                   s.firesTotal,
		"easyremind_snooze_suppressions_total":              s.snoozeSuppressions,
		"easyremind_evaluator_emit_errors_total":            s.emitErrorsTotal,
		"easyremind_notify_outcomes_total":                  s.notifyOutcomesTotal,
		"easyremind_planner_syncs_total":                    s.syncsTotal,
		"easyremind_planner_sync_errors_total":              s.syncErrorsTotal,
		"easyremind_planner_sync_duration_seconds":          s.syncDuration,
		"easyremind_planner_alarms_planned":                 s.alarmsPlanned,
		"easyremind_planner_alarms_registered_total":        s.alarmsRegistered,
		"easyremind_planner_alarms_skipped_total":           s.alarmsSkipped,
		"easyremind_planner_alarms_cancelled_total":         s.alarmsCancelled,
		"easyremind_planner_id_allocation_failures_total":   s.idAllocFailures,
		"easyremind_sink_errors_total":                      s.sinkErrorsTotal,
	} {
		if err := reg.Register(c); err != nil {
			log.Printf("metrics: failed to register %s: %v", name, err)
		}
	}

	return s
}

func (s *PrometheusSink) TickStarted() {
	s.ticksTotal.Inc()
}

func (s *PrometheusSink) TickCompleted(duration time.Duration, fires int, err error) {
	s.tickDuration.Observe(duration.Seconds())
	if err != nil {
		s.tickErrorsTotal.Inc()
	}
}

func (s *PrometheusSink) ManualFire() {
	s.firesTotal.WithLabelValues("manual").Inc()
}

func (s *PrometheusSink) IntervalFire() {
	s.firesTotal.WithLabelValues("interval").Inc()
}

func (s *PrometheusSink) SnoozeSuppressed() {
	s.snoozeSuppressions.Inc()
}

func (s *PrometheusSink) EmitError() {
	s.emitErrorsTotal.Inc()
}

func (s *PrometheusSink) NotifyOutcome(outcome string) {
	s.notifyOutcomesTotal.WithLabelValues(outcome).Inc()
}

func (s *PrometheusSink) SyncCompleted(duration time.Duration, err error) {
	s.syncsTotal.Inc()
	s.syncDuration.Observe(duration.Seconds())
	if err != nil {
		s.syncErrorsTotal.Inc()
	}
}

func (s *PrometheusSink) AlarmsPlanned(count int) {
	s.alarmsPlanned.Set(float64(count))
}

func (s *PrometheusSink) AlarmRegistered() {
	s.alarmsRegistered.Inc()
}

func (s *PrometheusSink) AlarmSkipped() {
	s.alarmsSkipped.Inc()
}

func (s *PrometheusSink) AlarmCancelled() {
	s.alarmsCancelled.Inc()
}

func (s *PrometheusSink) IDAllocationFailure() {
	s.idAllocFailures.Inc()
}

func (s *PrometheusSink) SinkError(op string) {
	s.sinkErrorsTotal.WithLabelValues(op).Inc()
}
