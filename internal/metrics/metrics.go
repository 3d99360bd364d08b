// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

// Package metrics provides Prometheus metrics for the recommendation
// service: HTTP throughput and latency, engine cache efficiency,
// matrix build cost, store query performance, and interaction event
// flow. Metrics are exposed at /metrics in Prometheus text format.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayfare_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wayfare_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wayfare_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Recommendation engine metrics
	MatrixBuilds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wayfare_matrix_builds_total",
			Help: "Total number of interaction matrix builds",
		},
	)

	MatrixBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wayfare_matrix_build_duration_seconds",
			Help:    "Duration of interaction matrix builds in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	SimilarityComputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayfare_similarity_computations_total",
			Help: "Total number of similarity matrix computations",
		},
		[]string{"kind"}, // "user" or "tour"
	)

	EngineCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wayfare_engine_cache_hits_total",
			Help: "Matrix requests served from the engine cache",
		},
	)

	EngineCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wayfare_engine_cache_misses_total",
			Help: "Matrix requests that required a rebuild",
		},
	)

	CacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wayfare_engine_cache_invalidations_total",
			Help: "Explicit engine cache invalidations",
		},
	)

	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayfare_recommendations_served_total",
			Help: "Total recommendations returned, by method",
		},
		[]string{"method"},
	)

	// Store metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wayfare_db_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayfare_db_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	// Interaction event metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayfare_events_published_total",
			Help: "Interaction events published to the event bus",
		},
		[]string{"topic"},
	)

	EventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayfare_event_publish_errors_total",
			Help: "Interaction event publish failures",
		},
		[]string{"topic"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayfare_events_consumed_total",
			Help: "Interaction events consumed from the event bus",
		},
		[]string{"topic"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wayfare_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// ObserveAPIRequest records one completed HTTP request.
func ObserveAPIRequest(method, path string, status int, elapsed time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// ObserveDBQuery records one store query.
func ObserveDBQuery(operation string, elapsed time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}
