package metrics

import (
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Client-side metrics, registered lazily and gated by ENABLE_CLIENT_METRICS
// so library consumers pay nothing by default. The record functions are
// called from concurrent fetch paths, so first-use init runs under a
// sync.Once.
var (
	clientMetricsOnce sync.Once

	apiRequestsTotal    *prometheus.CounterVec
	apiRequestDuration  *prometheus.HistogramVec
	cacheLookupsTotal   *prometheus.CounterVec
	cacheInvalidations  *prometheus.CounterVec
	tokenRefreshesTotal *prometheus.CounterVec
)

func clientMetricsEnabled() bool {
	return os.Getenv("ENABLE_CLIENT_METRICS") == "true"
}

func initializeClientMetrics() {
	clientMetricsOnce.Do(registerClientMetrics)
}

func registerClientMetrics() {
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumina_api_requests_total",
			Help: "Total number of SDK requests to the Lumina backend",
		},
		[]string{"method", "path", "result"},
	)

	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lumina_api_request_duration_seconds",
			Help:    "Duration of SDK requests to the Lumina backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumina_query_cache_lookups_total",
			Help: "Query cache lookups by outcome",
		},
		[]string{"prefix", "outcome"}, // "hit", "miss", "stale"
	)

	cacheInvalidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumina_query_cache_invalidations_total",
			Help: "Cache keys marked stale by mutations",
		},
		[]string{"prefix"},
	)

	tokenRefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumina_token_refreshes_total",
			Help: "Silent token refresh attempts by result",
		},
		[]string{"result"}, // "success", "failure", "no_refresh_token"
	)

	GetInstance().registry.MustRegister(
		apiRequestsTotal,
		apiRequestDuration,
		cacheLookupsTotal,
		cacheInvalidations,
		tokenRefreshesTotal,
	)
}

// RecordAPIRequest records one SDK request outcome.
func RecordAPIRequest(method, path, result string) {
	if !clientMetricsEnabled() {
		return
	}
	initializeClientMetrics()
	apiRequestsTotal.WithLabelValues(method, path, result).Inc()
}

// RecordAPIRequestDuration records one SDK request duration.
func RecordAPIRequestDuration(method, path string, duration time.Duration) {
	if !clientMetricsEnabled() {
		return
	}
	initializeClientMetrics()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCacheLookup records a query cache lookup outcome for a key prefix.
func RecordCacheLookup(prefix, outcome string) {
	if !clientMetricsEnabled() {
		return
	}
	initializeClientMetrics()
	cacheLookupsTotal.WithLabelValues(prefix, outcome).Inc()
}

// RecordCacheInvalidation records keys marked stale under a prefix.
func RecordCacheInvalidation(prefix string, count int) {
	if !clientMetricsEnabled() {
		return
	}
	initializeClientMetrics()
	cacheInvalidations.WithLabelValues(prefix).Add(float64(count))
}

// RecordTokenRefresh records one silent refresh attempt.
func RecordTokenRefresh(result string) {
	if !clientMetricsEnabled() {
		return
	}
	initializeClientMetrics()
	tokenRefreshesTotal.WithLabelValues(result).Inc()
}
