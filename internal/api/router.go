// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mfaucher/cinemetrics/internal/middleware"
)

// NewRouter builds the chi router with the full middleware stack and all
// API routes.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)

	// CORS is global so OPTIONS preflight is handled before routing.
	if len(h.config.Server.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.Server.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(h.config.Server.RateLimitPerMinute, time.Minute))

		r.Get("/health", h.handleHealth)
		r.Get("/movies", h.handleMovies)
		r.Get("/analytics/genres", h.handleGenreROI)
		r.Get("/analytics/genres/trends", h.handleGenreTrends)
		r.Get("/analytics/studios", h.handleStudioROI)
		r.Post("/predict", h.handlePredict)
		r.Get("/export/movies/csv", h.handleExportCSV)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
