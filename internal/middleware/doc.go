// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

// Package middleware provides HTTP middleware shared by the dashboard API:
// request ID propagation and Prometheus request instrumentation. Rate
// limiting and CORS come from go-chi/httprate and go-chi/cors and are wired
// directly in the router.
package middleware
