// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

// Package metrics defines the Prometheus instrumentation for Cinemetrics:
// TMDB client requests and retries, pipeline stage record counts, API
// latency, and DuckDB query timing. All collectors are registered on the
// default registry via promauto and exposed at /metrics.
package metrics
