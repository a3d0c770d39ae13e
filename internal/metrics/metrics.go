// file: internal/metrics/metrics.go
// version: 1.1.0
// guid: 9f8e7d6c-5b4a-3210-9fed-cba876543210

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "thumbnails",
		Name:      "resolutions_total",
		Help:      "Total number of resolutions by outcome (found, not_found, invalid)",
	}, []string{"outcome"})
	resolutionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "thumbnails",
		Name:      "resolution_duration_seconds",
		Help:      "Histogram of full chain resolution durations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.05, 1.6, 10), // ~50ms up to tens of seconds
	})

	providerAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "thumbnails",
		Name:      "provider_attempts_total",
		Help:      "Total number of provider fetch attempts by provider",
	}, []string{"provider"})
	providerSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "thumbnails",
		Name:      "provider_success_total",
		Help:      "Total number of validated provider successes by provider",
	}, []string{"provider"})
	providerFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "thumbnails",
		Name:      "provider_failures_total",
		Help:      "Total number of provider failures by provider and kind",
	}, []string{"provider", "kind"})
	retryExhausted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "thumbnails",
		Name:      "retry_exhausted_total",
		Help:      "Total number of provider calls that spent the whole retry budget",
	}, []string{"provider"})

	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "thumbnails",
		Name:      "cache_hits_total",
		Help:      "Total number of resolution cache hits",
	})
	cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "thumbnails",
		Name:      "cache_misses_total",
		Help:      "Total number of resolution cache misses",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(resolutions, resolutionDuration,
			providerAttempts, providerSuccess, providerFailures, retryExhausted,
			cacheHits, cacheMisses)
	})
}

func IncResolution(outcome string) { resolutions.WithLabelValues(outcome).Inc() }
func ObserveResolutionDuration(d time.Duration) {
	resolutionDuration.Observe(d.Seconds())
}

func IncProviderAttempt(provider string) { providerAttempts.WithLabelValues(provider).Inc() }
func IncProviderSuccess(provider string) { providerSuccess.WithLabelValues(provider).Inc() }
func IncProviderFailure(provider, kind string) {
	providerFailures.WithLabelValues(provider, kind).Inc()
}
func IncRetryExhausted(provider string) { retryExhausted.WithLabelValues(provider).Inc() }

func IncCacheHit()  { cacheHits.Inc() }
func IncCacheMiss() { cacheMisses.Inc() }
