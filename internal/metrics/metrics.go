// Package metrics defines the Prometheus collectors of the storefront.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Label values for CatalogLoads. Rejected loads were refused by the open
// circuit breaker without reaching the upstream.
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultRejected = "rejected"
)

// Label values for CatalogSource.
const (
	SourceUpstream = "upstream"
	SourceCache    = "cache"
)

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	catalogLoads    *prometheus.CounterVec
	catalogSource   *prometheus.CounterVec
	cartOperations  *prometheus.CounterVec
	sessionsOpened  prometheus.Counter
	sessionsEvicted prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		catalogLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_loads_total",
			Help:      "Product list loads by result.",
		}, []string{"result"}),
		catalogSource: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_source_total",
			Help:      "Where sheet responses were served from.",
		}, []string{"source"}),
		cartOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_operations_total",
			Help:      "Cart mutations by operation.",
		}, []string{"operation"}),
		sessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_opened_total",
			Help:      "View sessions created.",
		}),
		sessionsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_evicted_total",
			Help:      "View sessions dropped after idling past the TTL.",
		}),
	}
	m.registry.MustRegister(m.catalogLoads, m.catalogSource, m.cartOperations, m.sessionsOpened, m.sessionsEvicted)
	return m
}

// RegisterGauge exposes fn as a gauge, e.g. the live session count.
func (m *Metrics) RegisterGauge(name, help string, fn func() float64) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

func (m *Metrics) CatalogLoad(result string) {
	if m == nil {
		return
	}
	m.catalogLoads.WithLabelValues(result).Inc()
}

func (m *Metrics) CatalogSource(source string) {
	if m == nil {
		return
	}
	m.catalogSource.WithLabelValues(source).Inc()
}

func (m *Metrics) CartOperation(op string) {
	if m == nil {
		return
	}
	m.cartOperations.WithLabelValues(op).Inc()
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessionsOpened.Inc()
}

func (m *Metrics) SessionEvicted() {
	if m == nil {
		return
	}
	m.sessionsEvicted.Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
