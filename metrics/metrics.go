// Package metrics holds the Prometheus collectors exported at /actuator/prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/banking/credit-scoring-engine/types"
)

const namespace = "credit_scoring_engine"

// Registry holds all Prometheus metrics for the service on a private registry.
type Registry struct {
	reg *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Health metrics
	HealthCheckDuration *prometheus.HistogramVec
	HealthStatus        *prometheus.GaugeVec
	ProbeFailuresTotal  *prometheus.CounterVec
}

// NewRegistry creates the collectors and registers them, together with the
// Go runtime and process collectors, on a fresh registry.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distribution in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),
		HealthCheckDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "health_check_duration_seconds",
				Help:      "Health indicator execution time in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
			},
			[]string{"indicator"},
		),
		HealthStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "health_status",
				Help:      "Last reported status per indicator (1 for the current status, 0 otherwise)",
			},
			[]string{"indicator", "status"},
		),
		ProbeFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dependency_probe_failures_total",
				Help:      "Dependency probes that reported DOWN",
			},
			[]string{"dependency"},
		),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.HTTPRequestsTotal,
		r.HTTPRequestDuration,
		r.HTTPRequestsInFlight,
		r.HealthCheckDuration,
		r.HealthStatus,
		r.ProbeFailuresTotal,
	)
	return r
}

// ObserveHealth records an indicator run.
func (r *Registry) ObserveHealth(indicator string, status types.HealthStatus, seconds float64) {
	r.HealthCheckDuration.WithLabelValues(indicator).Observe(seconds)
	for _, s := range []types.HealthStatus{types.HealthStatusUp, types.HealthStatusDegraded, types.HealthStatusDown} {
		v := 0.0
		if s == status {
			v = 1
		}
		r.HealthStatus.WithLabelValues(indicator, string(s)).Set(v)
	}
}

// ObserveProbeFailure counts a dependency probe that came back DOWN.
func (r *Registry) ObserveProbeFailure(dependency string) {
	r.ProbeFailuresTotal.WithLabelValues(dependency).Inc()
}

// Gatherer exposes the underlying registry, mainly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
