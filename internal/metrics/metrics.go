// Package metrics collects Prometheus telemetry for API calls, store
// mutations and container sizes. A nil *Collector records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so several clients can live in one process.
type Collector struct {
	registry *prometheus.Registry

	apiRequests  *prometheus.CounterVec
	apiDuration  *prometheus.HistogramVec
	apiInFlight  prometheus.Gauge
	throttleWait *prometheus.HistogramVec

	storeMutations *prometheus.CounterVec
	containerSize  *prometheus.GaugeVec
	tabSelections  *prometheus.CounterVec
}

// NewCollector creates a collector whose metrics live under namespace.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "miniapp"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Backend API calls by method, resource group and status (0 = transport failure).",
		},
		[]string{"method", "group", "status"},
	)

	c.apiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of backend API calls.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s; generation is slow
		},
		[]string{"method", "group"},
	)

	c.apiInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "inflight_requests",
			Help:      "Backend API calls currently in flight.",
		},
	)

	c.throttleWait = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "throttle_wait_seconds",
			Help:      "Time spent waiting for the per-group rate limiter.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"group"},
	)

	c.storeMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "mutations_total",
			Help:      "State store mutations by operation.",
		},
		[]string{"op"},
	)

	c.containerSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "container_size",
			Help:      "Number of entries per state container.",
		},
		[]string{"container"},
	)

	c.tabSelections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "nav",
			Name:      "tab_selections_total",
			Help:      "Tab selections by tab.",
		},
		[]string{"tab"},
	)

	c.registry.MustRegister(
		c.apiRequests,
		c.apiDuration,
		c.apiInFlight,
		c.throttleWait,
		c.storeMutations,
		c.containerSize,
		c.tabSelections,
	)

	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler exposes the collector's metrics over HTTP.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// StartRequest marks a call in flight and returns a func that records its outcome.
func (c *Collector) StartRequest(method, group string) func(status int) {
	if c == nil {
		return func(int) {}
	}
	start := time.Now()
	c.apiInFlight.Inc()
	return func(status int) {
		c.apiInFlight.Dec()
		c.apiRequests.WithLabelValues(method, group, strconv.Itoa(status)).Inc()
		c.apiDuration.WithLabelValues(method, group).Observe(time.Since(start).Seconds())
	}
}

// RecordThrottleWait records how long a call waited for its rate limiter.
func (c *Collector) RecordThrottleWait(group string, d time.Duration) {
	if c == nil {
		return
	}
	c.throttleWait.WithLabelValues(group).Observe(d.Seconds())
}

// RecordMutation counts a store mutation.
func (c *Collector) RecordMutation(op string) {
	if c == nil {
		return
	}
	c.storeMutations.WithLabelValues(op).Inc()
}

// SetContainerSize records the current size of a store container.
func (c *Collector) SetContainerSize(container string, n int) {
	if c == nil {
		return
	}
	c.containerSize.WithLabelValues(container).Set(float64(n))
}

// RecordTabSelection counts a tab selection.
func (c *Collector) RecordTabSelection(tab string) {
	if c == nil {
		return
	}
	c.tabSelections.WithLabelValues(tab).Inc()
}
