package metrics

import (
	"strings"

	"quill/app/cache"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	ReqDuration       *prometheus.HistogramVec
	InFlight          prometheus.Gauge
	CacheLookups      *prometheus.CounterVec
	CacheInvalidation *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests"},
			[]string{"route", "method", "status"},
		),
		ReqDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Request duration seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "http_in_flight_requests", Help: "In-flight HTTP requests"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "response_cache_lookups_total", Help: "Response cache lookups"},
			[]string{"result"},
		),
		CacheInvalidation: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "response_cache_invalidated_total", Help: "Response cache entries dropped by mutations"},
			[]string{"class"},
		),
	}
	reg.MustRegister(m.RequestsTotal, m.ReqDuration, m.InFlight, m.CacheLookups, m.CacheInvalidation)
	return m
}

// CountedInvalidator wraps a cache invalidator and counts the entries each
// resource class loses.
type CountedInvalidator struct {
	next    cache.Invalidator
	counter *prometheus.CounterVec
}

// Invalidator returns inv instrumented with m.
func (m *Metrics) Invalidator(inv cache.Invalidator) *CountedInvalidator {
	return &CountedInvalidator{next: inv, counter: m.CacheInvalidation}
}

func (c *CountedInvalidator) Invalidate(keyOrPrefix string) int {
	n := c.next.Invalidate(keyOrPrefix)
	class := keyOrPrefix
	if i := strings.IndexByte(class, ':'); i >= 0 {
		class = class[:i]
	}
	c.counter.WithLabelValues(class).Add(float64(n))
	return n
}

func (c *CountedInvalidator) InvalidateAll() {
	c.next.InvalidateAll()
	c.counter.WithLabelValues("all").Inc()
}
