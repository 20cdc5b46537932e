package metrics

import (
	"sync"

	"github.com/jbattermann/observable/types"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	mutations       *prometheus.CounterVec
	batchRequested  *prometheus.CounterVec
	batchAffected   *prometheus.CounterVec
	batchCoalesced  *prometheus.CounterVec
	sizeGauge       prometheus.Gauge
	emissions       *prometheus.CounterVec
	droppedNotifs   *prometheus.CounterVec
	observerPanics  *prometheus.CounterVec
	subscriberGauge *prometheus.GaugeVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "observable" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "observable"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.mutations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "dictionary",
			Name:      "mutations_total",
			Help:      "Total completed mutating operations by operation.",
		}, []string{"op"})

		p.batchRequested = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "dictionary",
			Name:      "batch_items_requested_total",
			Help:      "Total items requested across bulk operations by operation.",
		}, []string{"op"})
		p.batchAffected = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "dictionary",
			Name:      "batch_items_affected_total",
			Help:      "Total items actually mutated across bulk operations by operation.",
		}, []string{"op"})
		p.batchCoalesced = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "dictionary",
			Name:      "batch_coalesced_total",
			Help:      "Total bulk operations by operation and emission shape (reset/discrete).",
		}, []string{"op", "shape"})

		p.sizeGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "dictionary",
			Name:      "entries_current",
			Help:      "Current number of entries in the dictionary.",
		})

		p.emissions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "broadcast",
			Name:      "emissions_total",
			Help:      "Total change emissions by change kind.",
		}, []string{"kind"})
		p.droppedNotifs = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "broadcast",
			Name:      "dropped_notifications_total",
			Help:      "Total notifications dropped for slow subscribers by channel.",
		}, []string{"channel"})
		p.observerPanics = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "broadcast",
			Name:      "observer_panics_total",
			Help:      "Total subscriber panics during notification delivery by channel.",
		}, []string{"channel"})
		p.subscriberGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "broadcast",
			Name:      "subscribers_current",
			Help:      "Current number of channel subscribers by channel.",
		}, []string{"channel"})

		collectors := []prometheus.Collector{
			p.mutations, p.batchRequested, p.batchAffected, p.batchCoalesced,
			p.sizeGauge, p.emissions, p.droppedNotifs, p.observerPanics, p.subscriberGauge,
		}
		for _, c := range collectors {
			// AlreadyRegisteredError is tolerated so multiple dictionaries can
			// share one registerer and namespace.
			if err := p.reg.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					panic(err)
				}
			}
		}
	})
}

// DictionaryMetrics implementation

// RecordMutation increments the mutation counter for op.
func (p *PrometheusCollector) RecordMutation(op string) {
	p.ensureRegistered()
	p.mutations.WithLabelValues(op).Inc()
}

// RecordBatch records the outcome of one bulk operation.
func (p *PrometheusCollector) RecordBatch(op string, requested, affected int, coalesced bool) {
	p.ensureRegistered()
	p.batchRequested.WithLabelValues(op).Add(float64(requested))
	p.batchAffected.WithLabelValues(op).Add(float64(affected))

	shape := "discrete"
	if coalesced {
		shape = "reset"
	}
	p.batchCoalesced.WithLabelValues(op, shape).Inc()
}

// RecordSize sets the current entry count.
func (p *PrometheusCollector) RecordSize(count int) {
	p.ensureRegistered()
	p.sizeGauge.Set(float64(count))
}

// BroadcastMetrics implementation

// RecordEmit increments the emission counter for the change kind.
func (p *PrometheusCollector) RecordEmit(kind string) {
	p.ensureRegistered()
	p.emissions.WithLabelValues(kind).Inc()
}

// RecordDroppedNotification increments the drop counter for the channel.
func (p *PrometheusCollector) RecordDroppedNotification(channel string) {
	p.ensureRegistered()
	p.droppedNotifs.WithLabelValues(channel).Inc()
}

// RecordObserverPanic increments the observer panic counter for the channel.
func (p *PrometheusCollector) RecordObserverPanic(channel string) {
	p.ensureRegistered()
	p.observerPanics.WithLabelValues(channel).Inc()
}

// RecordSubscriberCount sets the subscriber gauge for the channel.
func (p *PrometheusCollector) RecordSubscriberCount(channel string, count int) {
	p.ensureRegistered()
	p.subscriberGauge.WithLabelValues(channel).Set(float64(count))
}
