// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors of one registry.
type Metrics struct {
	registry *prometheus.Registry

	// HTTPRequests counts requests by route, method and status code
	HTTPRequests *prometheus.CounterVec

	// HTTPDuration observes request latency by route
	HTTPDuration *prometheus.HistogramVec

	// Calculations counts calculations by kind and outcome
	Calculations *prometheus.CounterVec

	// UpstreamCalls counts calls to external services
	UpstreamCalls *prometheus.CounterVec

	// ScraperRuns counts finished scraper runs by outcome
	ScraperRuns *prometheus.CounterVec

	// RateLimited counts rejected requests
	RateLimited prometheus.Counter
}

// New creates the collectors on a fresh registry. Go and process collectors
// are registered as well.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "code"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		Calculations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calculations_total",
				Help: "Financial calculations by kind and status",
			},
			[]string{"kind", "status"},
		),
		UpstreamCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_calls_total",
				Help: "Calls to external services",
			},
			[]string{"service", "status"},
		),
		ScraperRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_runs_total",
				Help: "Finished scraper runs by outcome",
			},
			[]string{"status"},
		),
		RateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_limited_requests_total",
				Help: "Requests rejected by the rate limiter",
			},
		),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveCalculation records one calculation outcome.
func (m *Metrics) ObserveCalculation(kind string, err error) {
	if m == nil {
		return
	}
	m.Calculations.WithLabelValues(kind, status(err)).Inc()
}

// ObserveUpstream records one call to an external service.
func (m *Metrics) ObserveUpstream(service string, err error) {
	if m == nil {
		return
	}
	m.UpstreamCalls.WithLabelValues(service, status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
