package internal

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultMetricsPath      = "/metrics"
	defaultMetricsNamespace = "plain"

	// unmatchedRoute labels requests no pattern matched, keeping label cardinality bounded.
	unmatchedRoute = "unmatched"
)

// metricsConfig holds the metrics endpoint configuration.
type metricsConfig struct {
	path      string
	namespace string
	registry  *prometheus.Registry
}

// MetricsOption configures the metrics endpoint.
type MetricsOption func(*metricsConfig)

// WithMetricsPath sets the path metrics are exposed on.
// Defaults to "/metrics".
func WithMetricsPath(path string) MetricsOption {
	return func(c *metricsConfig) {
		if path != "" {
			c.path = path
		}
	}
}

// WithMetricsNamespace sets the metric name prefix. Defaults to "plain".
func WithMetricsNamespace(ns string) MetricsOption {
	return func(c *metricsConfig) {
		if ns != "" {
			c.namespace = ns
		}
	}
}

// WithMetricsRegistry registers the collectors on r instead of a private registry.
func WithMetricsRegistry(r *prometheus.Registry) MetricsOption {
	return func(c *metricsConfig) {
		if r != nil {
			c.registry = r
		}
	}
}

// dispatchMetrics records dispatched requests.
type dispatchMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	registry        *prometheus.Registry
	path            string
}

func newDispatchMetrics(cfg *metricsConfig) *dispatchMetrics {
	m := &dispatchMetrics{registry: cfg.registry, path: cfg.path}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of dispatched requests",
		},
		[]string{"method", "route", "code"},
	)
	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Dispatch duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route", "code"},
	)
	m.registry.MustRegister(m.requestsTotal, m.requestDuration)
	return m
}

// observe records one dispatch. A nil receiver records nothing.
func (m *dispatchMetrics) observe(method, pattern string, code int, d time.Duration) {
	if m == nil {
		return
	}
	if pattern == "" {
		pattern = unmatchedRoute
	}
	c := strconv.Itoa(code)
	m.requestsTotal.WithLabelValues(method, pattern, c).Inc()
	m.requestDuration.WithLabelValues(method, pattern, c).Observe(d.Seconds())
}

func (m *dispatchMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
