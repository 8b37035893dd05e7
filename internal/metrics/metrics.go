// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TMDB client metrics

	TMDBRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdb_requests_total",
			Help: "Total TMDB API requests by endpoint and HTTP status",
		},
		[]string{"endpoint", "status"},
	)

	TMDBRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdb_retries_total",
			Help: "Total TMDB request retries after non-200 responses",
		},
		[]string{"endpoint"},
	)

	TMDBRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tmdb_request_duration_seconds",
			Help:    "TMDB request duration in seconds, including retries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	TMDBFetchExhaustedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdb_fetch_exhausted_total",
			Help: "Fetches that exhausted all retries and degraded to defaults",
		},
		[]string{"endpoint"},
	)

	// Pipeline metrics

	PipelineRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pipeline_records",
			Help: "Record counts per pipeline stage for the latest run",
		},
		[]string{"stage"}, // "listed", "enriched", "cleaned", "encoded"
	)

	PipelineRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipeline_run_duration_seconds",
			Help:    "End-to-end duration of a collection run",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
		},
	)

	// API metrics

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Database metrics

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordDBQuery records one database query duration.
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordStage records the record count of one pipeline stage.
func RecordStage(stage string, count int) {
	PipelineRecords.WithLabelValues(stage).Set(float64(count))
}
