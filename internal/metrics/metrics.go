// Package metrics exposes Prometheus instrumentation for the HTTP API, the
// layout engine, intro-path searches and the graph circuit breaker.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vanshika/wealthnet/internal/layout"
)

// Namespace prefixes every metric name.
const Namespace = "wealthnet"

// Collector holds all Prometheus metrics for the application. Each
// collector owns its registry so tests can build as many as they like.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	LayoutDuration *prometheus.HistogramVec
	LayoutNodes    *prometheus.HistogramVec

	PathSearches *prometheus.CounterVec
	PathDuration prometheus.Histogram

	BreakerTransitions *prometheus.CounterVec
	BreakerOpen        *prometheus.GaugeVec
}

// NewCollector creates and registers every metric.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		LayoutDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "layout_duration_seconds",
			Help:      "Time spent computing node positions",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"algorithm"}),
		LayoutNodes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "layout_nodes",
			Help:      "Number of nodes per layout run",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"algorithm"}),
		PathSearches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "intro_path_searches_total",
			Help:      "Introduction path searches by outcome",
		}, []string{"outcome"}),
		PathDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "intro_path_duration_seconds",
			Help:      "Introduction path search duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		BreakerTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "breaker_transitions_total",
			Help:      "Circuit breaker state transitions",
		}, []string{"breaker", "from", "to"}),
		BreakerOpen: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "breaker_open",
			Help:      "1 while the circuit breaker is open",
		}, []string{"breaker"}),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.LayoutDuration,
		c.LayoutNodes,
		c.PathSearches,
		c.PathDuration,
		c.BreakerTransitions,
		c.BreakerOpen,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveHTTP records a finished request.
func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (c *Collector) ObserveLayout(algorithm layout.Algorithm, nodes int, elapsed time.Duration) {
	c.LayoutDuration.WithLabelValues(string(algorithm)).Observe(elapsed.Seconds())
	c.LayoutNodes.WithLabelValues(string(algorithm)).Observe(float64(nodes))
}

func (c *Collector) ObservePathSearch(outcome string, elapsed time.Duration) {
	c.PathSearches.WithLabelValues(outcome).Inc()
	c.PathDuration.Observe(elapsed.Seconds())
}

// BreakerStateChanged matches graph.BreakerSettings.OnStateChange.
func (c *Collector) BreakerStateChanged(name, from, to string) {
	c.BreakerTransitions.WithLabelValues(name, from, to).Inc()
	open := 0.0
	if to == "open" {
		open = 1
	}
	c.BreakerOpen.WithLabelValues(name).Set(open)
}
