// Package metrics registers the Prometheus collectors for the fetch hop
// loop, the fetch cache, and the rate limiter.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric label values shared across registrations.
const (
	labelOutcome = "outcome"
	labelHost    = "host"
)

// Metrics holds all Prometheus metrics owned by the fetch pipeline. A single
// instance is created in New and threaded through the services that need it
// so tests can inject a fresh prometheus.Registry without polluting the
// default one.
type Metrics struct {
	// FetchRequestsTotal counts completed fetch() calls, partitioned by
	// outcome: "ok" or the FetchError code on failure.
	FetchRequestsTotal *prometheus.CounterVec

	// FetchDurationSeconds records wall-clock duration of fetch() calls.
	FetchDurationSeconds *prometheus.HistogramVec

	// CacheHitsTotal / CacheMissesTotal count fetch-cache lookups.
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// RateLimiterAdmittedTotal / RateLimiterRejectedTotal count Admit
	// outcomes, partitioned by host.
	RateLimiterAdmittedTotal *prometheus.CounterVec
	RateLimiterRejectedTotal *prometheus.CounterVec

	// RateLimiterBackoffSeconds records the duration callers spend waiting
	// in WaitFor before admission or deadline.
	RateLimiterBackoffSeconds prometheus.Histogram
}

// New registers all fetch pipeline metrics against reg and returns the
// populated Metrics. promauto.With(reg) registers into the provided
// registry rather than the global default, keeping unit tests hermetic.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FetchRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webfetch",
			Subsystem: "fetch",
			Name:      "requests_total",
			Help:      "Total number of fetch() calls completed, partitioned by outcome.",
		}, []string{labelOutcome}),

		FetchDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "webfetch",
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of fetch() calls from admission to normalized packet.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{labelOutcome}),

		CacheHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "webfetch",
			Subsystem: "fetch_cache",
			Name:      "hits_total",
			Help:      "Total number of fetch cache lookups that returned a cached result.",
		}),

		CacheMissesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "webfetch",
			Subsystem: "fetch_cache",
			Name:      "misses_total",
			Help:      "Total number of fetch cache lookups with no cached result.",
		}),

		RateLimiterAdmittedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webfetch",
			Subsystem: "rate_limiter",
			Name:      "admitted_total",
			Help:      "Total number of requests admitted by the rate limiter, partitioned by host.",
		}, []string{labelHost}),

		RateLimiterRejectedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webfetch",
			Subsystem: "rate_limiter",
			Name:      "rejected_total",
			Help:      "Total number of requests rejected by the rate limiter, partitioned by host.",
		}, []string{labelHost}),

		RateLimiterBackoffSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "webfetch",
			Subsystem: "rate_limiter",
			Name:      "backoff_seconds",
			Help:      "Duration callers spent waiting for rate-limiter admission via WaitFor.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
	}
}
