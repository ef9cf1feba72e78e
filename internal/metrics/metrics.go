// Package metrics exposes the service's Prometheus collectors. Everything
// registers on the default registry and is served by the side listener.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP surface metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chairview",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the API.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chairview",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration observed at the API layer.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	// Response cache metrics
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chairview",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Response cache hits by surface.",
		},
		[]string{"surface"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chairview",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Response cache misses by surface.",
		},
		[]string{"surface"},
	)

	CacheEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chairview",
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Entries removed by the expiry sweep.",
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "chairview",
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Current number of cached responses.",
		},
	)

	// Store metrics
	StoreQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chairview",
			Subsystem: "store",
			Name:      "queries_total",
			Help:      "Store operations by namespace and outcome.",
		},
		[]string{"database", "collection", "operation", "outcome"},
	)

	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chairview",
			Subsystem: "store",
			Name:      "query_duration_seconds",
			Help:      "Store operation duration.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"database", "collection", "operation"},
	)

	// Engine metrics
	EngineRows = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chairview",
			Subsystem: "engine",
			Name:      "rows",
			Help:      "Rows produced per engine run, before pagination.",
			Buckets:   []float64{0, 10, 100, 1000, 10000, 100000},
		},
		[]string{"surface"},
	)
)

// RecordHTTPRequest records one handled request.
func RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	statusCode := strconv.Itoa(status)
	HTTPRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordCacheLookup records a cache probe for a surface.
func RecordCacheLookup(surface string, hit bool) {
	if hit {
		CacheHitsTotal.WithLabelValues(surface).Inc()
		return
	}
	CacheMissesTotal.WithLabelValues(surface).Inc()
}

// RecordCacheSweep records the outcome of an expiry sweep.
func RecordCacheSweep(evicted, remaining int) {
	if evicted > 0 {
		CacheEvictionsTotal.Add(float64(evicted))
	}
	CacheEntries.Set(float64(remaining))
}

// RecordStoreQuery records one store round-trip.
func RecordStoreQuery(database, collection, operation string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	StoreQueriesTotal.WithLabelValues(database, collection, operation, outcome).Inc()
	StoreQueryDuration.WithLabelValues(database, collection, operation).Observe(elapsed.Seconds())
}

// RecordEngineRows records the pre-pagination row count of an engine run.
func RecordEngineRows(surface string, rows int) {
	EngineRows.WithLabelValues(surface).Observe(float64(rows))
}
