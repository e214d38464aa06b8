package metrics

import (
	"sync"

	"github.com/Black-Forest-Community/slotlist-reboot/types"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	registrations    *prometheus.CounterVec
	assignments      *prometheus.CounterVec
	unassignments    *prometheus.CounterVec
	stateTransitions *prometheus.CounterVec
	queueDepth       prometheus.Histogram
	lockWait         prometheus.Histogram
	lockTimeouts     prometheus.Counter
	eventsEmitted    *prometheus.CounterVec
	eventsDropped    *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "slotter" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "slotter"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.registrations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "registrations_total",
			Help:      "Total registration attempts by outcome.",
		}, []string{"outcome"})

		p.assignments = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "assignments_total",
			Help:      "Total slot assignments by kind (auto/manual/promotion).",
		}, []string{"kind"})

		p.unassignments = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "unassignments_total",
			Help:      "Total slot unassignments by reason.",
		}, []string{"reason"})

		p.stateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "slot_state_transitions_total",
			Help:      "Total slot state transitions by from/to state.",
		}, []string{"from", "to"})

		p.queueDepth = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Observed registration queue depths.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		})

		p.lockWait = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "lock",
			Name:      "wait_seconds",
			Help:      "Time spent acquiring slot critical sections in seconds.",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 2},
		})

		p.lockTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "lock",
			Name:      "timeouts_total",
			Help:      "Total slot critical section acquisition timeouts.",
		})

		p.eventsEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "events",
			Name:      "emitted_total",
			Help:      "Total notification events emitted by kind.",
		}, []string{"kind"})

		p.eventsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "Total notification events dropped by reason.",
		}, []string{"reason"})

		collectors := []prometheus.Collector{
			p.registrations, p.assignments, p.unassignments, p.stateTransitions,
			p.queueDepth, p.lockWait, p.lockTimeouts, p.eventsEmitted, p.eventsDropped,
		}
		for _, c := range collectors {
			// AlreadyRegisteredError is tolerated so multiple engines can
			// share one registerer.
			if err := p.reg.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					panic(err)
				}
			}
		}
	})
}

// RecordRegistration increments the registration counter for the outcome.
func (p *PrometheusCollector) RecordRegistration(outcome string) {
	p.ensureRegistered()
	p.registrations.WithLabelValues(outcome).Inc()
}

// RecordAssignment increments the assignment counter for the kind.
func (p *PrometheusCollector) RecordAssignment(kind string) {
	p.ensureRegistered()
	p.assignments.WithLabelValues(kind).Inc()
}

// RecordUnassignment increments the unassignment counter for the reason.
func (p *PrometheusCollector) RecordUnassignment(reason string) {
	p.ensureRegistered()
	p.unassignments.WithLabelValues(reason).Inc()
}

// RecordSlotStateTransition increments the transition counter.
func (p *PrometheusCollector) RecordSlotStateTransition(from, to types.SlotState) {
	p.ensureRegistered()
	p.stateTransitions.WithLabelValues(from.String(), to.String()).Inc()
}

// RecordQueueDepth observes a registration queue depth.
func (p *PrometheusCollector) RecordQueueDepth(depth int) {
	p.ensureRegistered()
	p.queueDepth.Observe(float64(depth))
}

// RecordLockWait observes a critical section acquisition duration.
func (p *PrometheusCollector) RecordLockWait(seconds float64) {
	p.ensureRegistered()
	p.lockWait.Observe(seconds)
}

// RecordLockTimeout increments the lock timeout counter.
func (p *PrometheusCollector) RecordLockTimeout() {
	p.ensureRegistered()
	p.lockTimeouts.Inc()
}

// RecordEventEmitted increments the emitted event counter for the kind.
func (p *PrometheusCollector) RecordEventEmitted(kind types.EventKind) {
	p.ensureRegistered()
	p.eventsEmitted.WithLabelValues(kind.String()).Inc()
}

// RecordEventDropped increments the dropped event counter for the reason.
func (p *PrometheusCollector) RecordEventDropped(reason string) {
	p.ensureRegistered()
	p.eventsDropped.WithLabelValues(reason).Inc()
}
