package internal

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Debounce outcomes, used as the "outcome" label.
const (
	DebounceScheduled  = "scheduled"
	DebounceSuperseded = "superseded"
	DebounceDelivered  = "delivered"
	DebounceCancelled  = "cancelled"
	DebounceFlushed    = "flushed"
)

// Metrics holds the Prometheus collectors of one runtime.
type Metrics struct {
	notifications *prometheus.CounterVec
	recomputes    *prometheus.CounterVec
	deliveries    *prometheus.CounterVec
	debounce      *prometheus.CounterVec
	nodes         prometheus.Gauge
}

// NewMetrics registers the runtime collectors with registry.
func NewMetrics(registry prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Total number of node state transitions published",
		}, []string{"kind"}),

		recomputes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recomputes_total",
			Help:      "Total number of predicate rule evaluations triggered by a dependency change",
		}, []string{"kind"}),

		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Total number of connector deliveries to consumers",
		}, []string{"state"}),

		debounce: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "debounce_events_total",
			Help:      "Debounce scheduler events by outcome",
		}, []string{"outcome"}),

		nodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Number of live (not destroyed) predicate nodes",
		}),
	}
}

func (m *Metrics) notified(kind string) {
	m.notifications.WithLabelValues(kind).Inc()
}

func (m *Metrics) recomputed(kind string) {
	m.recomputes.WithLabelValues(kind).Inc()
}

func (m *Metrics) delivered(state bool) {
	m.deliveries.WithLabelValues(strconv.FormatBool(state)).Inc()
}

func (m *Metrics) debounced(outcome string) {
	m.debounce.WithLabelValues(outcome).Inc()
}

func (m *Metrics) nodeCreated() { m.nodes.Inc() }

func (m *Metrics) nodeDestroyed() { m.nodes.Dec() }
