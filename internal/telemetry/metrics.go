package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the client side counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	apiRequests *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec
	refreshes   *prometheus.CounterVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		apiRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gallery_api_requests_total",
			Help: "Requests issued against the gallery API.",
		}, []string{"operation", "outcome"}),
		apiDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gallery_api_request_duration_seconds",
			Help:    "Latency of gallery API requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gallery_view_refreshes_total",
			Help: "Projection refreshes by component.",
		}, []string{"component", "outcome"}),
	}
}

// ObserveRequest records one finished API call.
func (m *Metrics) ObserveRequest(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(operation, outcome(err)).Inc()
	m.apiDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveRefresh records one refresh of a rendered component.
func (m *Metrics) ObserveRefresh(component string, err error) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(component, outcome(err)).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
