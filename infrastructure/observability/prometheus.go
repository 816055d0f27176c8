package observability

import (
	"net/http"
	"strconv"
	"time"

	"axon-backend/application/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics for the application. Each
// collector owns its registry, so tests can build as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Application metrics fed through ports.Metrics
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Application events such as commands, queries, votes and refresh merges",
			},
			[]string{"metric", "name"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of timed application operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"metric", "name"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Operations,
		c.OperationDuration,
		collectors.NewGoCollector(),
	)
	return c
}

// Increment implements ports.Metrics
func (c *Collector) Increment(metric, label string) {
	c.Operations.WithLabelValues(metric, label).Inc()
}

// StartTimer implements ports.Metrics
func (c *Collector) StartTimer(metric, label string) ports.Timer {
	t := prometheus.NewTimer(c.OperationDuration.WithLabelValues(metric, label))
	return promTimer{t}
}

type promTimer struct{ t *prometheus.Timer }

func (p promTimer) Stop() { p.t.ObserveDuration() }

// ObserveHTTP records one served request
func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry returns the Prometheus registry for this collector
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Fanout sends every measurement to all sinks
type Fanout []ports.Metrics

// Increment implements ports.Metrics
func (f Fanout) Increment(metric, label string) {
	for _, m := range f {
		m.Increment(metric, label)
	}
}

// StartTimer implements ports.Metrics
func (f Fanout) StartTimer(metric, label string) ports.Timer {
	timers := make(multiTimer, 0, len(f))
	for _, m := range f {
		timers = append(timers, m.StartTimer(metric, label))
	}
	return timers
}

type multiTimer []ports.Timer

func (t multiTimer) Stop() {
	for _, timer := range t {
		timer.Stop()
	}
}

// Nop discards every measurement
type Nop struct{}

func (Nop) Increment(string, string)              {}
func (Nop) StartTimer(string, string) ports.Timer { return nopTimer{} }

type nopTimer struct{}

func (nopTimer) Stop() {}
