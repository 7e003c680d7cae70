// Package metrics exposes Prometheus collectors for the HTTP surface and the
// social operations behind it.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "campusnet"

// Collector holds all metrics for one server instance on its own registry
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPInFlight prometheus.Gauge
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Domain metrics, labelled by outcome reason ("ok" on success)
	ConnectionEvents *prometheus.CounterVec
	ContentEvents    *prometheus.CounterVec
}

// NewCollector creates and registers a fresh set of collectors
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "route"}),
		ConnectionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "connections",
			Name:      "events_total",
			Help:      "Connection graph operations by kind and outcome.",
		}, []string{"event", "outcome"}),
		ContentEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "events_total",
			Help:      "Post and comment operations by kind and outcome.",
		}, []string{"event", "outcome"}),
	}

	registry.MustRegister(
		c.HTTPInFlight,
		c.HTTPRequests,
		c.HTTPDuration,
		c.ConnectionEvents,
		c.ContentEvents,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return c
}

// Registry returns the registry the collectors are registered on
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Connection counts one connection graph operation
func (c *Collector) Connection(event, outcome string) {
	c.ConnectionEvents.WithLabelValues(event, outcome).Inc()
}

// Content counts one post or comment operation
func (c *Collector) Content(event, outcome string) {
	c.ContentEvents.WithLabelValues(event, outcome).Inc()
}
