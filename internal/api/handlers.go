// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

/*
Package api implements the dashboard HTTP API.

Handler methods are split across files:
  - handlers.go: Handler struct, constructor, health endpoint
  - handlers_movies.go: dataset listing and CSV export
  - handlers_analytics.go: genre/studio/trend aggregations
  - handlers_predict.go: ROI prediction from the trained bundle
  - helpers.go: response envelope and parameter helpers
  - router.go: chi router and middleware stack
*/
package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/mfaucher/cinemetrics/internal/artifacts"
	"github.com/mfaucher/cinemetrics/internal/cache"
	"github.com/mfaucher/cinemetrics/internal/config"
	"github.com/mfaucher/cinemetrics/internal/database"
	"github.com/mfaucher/cinemetrics/internal/models"
)

// Store is the dataset access surface the handlers need. Implemented by
// database.DB.
type Store interface {
	Ping(ctx context.Context) error
	CountMovies(ctx context.Context) (int64, error)
	GetMovies(ctx context.Context, filter database.MovieFilter) ([]models.MovieRecord, error)
	GetGenreROI(ctx context.Context) ([]models.GenreROI, error)
	GetStudioROI(ctx context.Context, minMovies int64) ([]models.StudioROI, error)
	GetStudioGenreROI(ctx context.Context, studio string) ([]models.GenreROI, error)
	GetGenreYearROI(ctx context.Context) (map[string][]models.YearROI, error)
	ExportMoviesCSV(ctx context.Context, w io.Writer, filter database.MovieFilter) (int, error)
}

// BundleLoader restores the current trained bundle. Implemented by
// artifacts.Store.
type BundleLoader interface {
	Load() (*artifacts.Bundle, error)
}

// Handler carries the dependencies of all API endpoints.
type Handler struct {
	db        Store
	bundles   BundleLoader
	config    *config.Config
	startTime time.Time

	// analytics holds computed aggregation payloads; nil when caching is
	// disabled. The dataset only changes when a collection run replaces
	// it, so a short TTL bounds staleness without any invalidation hook
	// between the two processes.
	analytics *cache.Cache
}

// NewHandler creates the API handler.
func NewHandler(db Store, bundles BundleLoader, cfg *config.Config) *Handler {
	h := &Handler{
		db:        db,
		bundles:   bundles,
		config:    cfg,
		startTime: time.Now(),
	}
	if ttl := cfg.Server.AnalyticsCacheTTL; ttl > 0 {
		h.analytics = cache.New(ttl)
	}
	return h
}

// cachedAnalytics returns the cached payload for key, if caching is on.
func (h *Handler) cachedAnalytics(key string) (interface{}, bool) {
	if h.analytics == nil {
		return nil, false
	}
	return h.analytics.Get(key)
}

// storeAnalytics caches an analytics payload, if caching is on.
func (h *Handler) storeAnalytics(key string, payload interface{}) {
	if h.analytics != nil {
		h.analytics.Set(key, payload)
	}
}

// healthResponse is the payload of GET /api/v1/health.
type healthResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	MovieCount    int64   `json:"movie_count"`
	ModelVersion  string  `json:"model_version,omitempty"`
	ModelReady    bool    `json:"model_ready"`
}

// handleHealth reports liveness plus dataset and model readiness. The
// endpoint stays 200 as long as the database answers; an absent model is
// reported, not an error, since the server legitimately runs before the
// first collection.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if err := h.db.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, codeDatabaseError, "database unreachable", err)
		return
	}

	count, err := h.db.CountMovies(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeDatabaseError, "failed to count movies", err)
		return
	}

	resp := healthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		MovieCount:    count,
	}
	if bundle, err := h.bundles.Load(); err == nil {
		resp.ModelReady = true
		resp.ModelVersion = bundle.Version
	}

	respondSuccess(w, resp, start)
}
