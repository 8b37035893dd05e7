// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package api

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/mfaucher/cinemetrics/internal/cache"
	"github.com/mfaucher/cinemetrics/internal/models"
	"github.com/mfaucher/cinemetrics/internal/regress"
)

// handleGenreROI serves mean ROI per genre, most profitable first.
func (h *Handler) handleGenreROI(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	const key = "analytics:genres"
	if payload, ok := h.cachedAnalytics(key); ok {
		respondSuccess(w, payload, start)
		return
	}

	genres, err := h.db.GetGenreROI(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeDatabaseError, "failed to query genre analytics", err)
		return
	}
	if genres == nil {
		genres = []models.GenreROI{}
	}

	payload := map[string]interface{}{"genres": genres}
	h.storeAnalytics(key, payload)
	respondSuccess(w, payload, start)
}

// studiosResponse is the payload of GET /api/v1/analytics/studios.
type studiosResponse struct {
	Studios []models.StudioROI `json:"studios"`
	// ByGenre is present only when one studio was requested via ?studio=.
	Studio  string            `json:"studio,omitempty"`
	ByGenre []models.GenreROI `json:"by_genre,omitempty"`
}

// handleStudioROI serves the studio ranking, or one studio's per-genre
// breakdown when ?studio= is given.
func (h *Handler) handleStudioROI(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if studio := r.URL.Query().Get("studio"); studio != "" {
		byGenre, err := h.db.GetStudioGenreROI(r.Context(), studio)
		if err != nil {
			respondError(w, http.StatusInternalServerError, codeDatabaseError, "failed to query studio breakdown", err)
			return
		}
		if len(byGenre) == 0 {
			respondError(w, http.StatusNotFound, codeNotFound, "studio not in dataset", nil)
			return
		}
		respondSuccess(w, studiosResponse{Studio: studio, ByGenre: byGenre}, start)
		return
	}

	minMovies := int64(getIntParam(r, "min_movies", 1))
	topN := getIntParam(r, "limit", 20)
	if topN < 1 || topN > 200 {
		topN = 20
	}

	key := cache.Key("analytics:studios", map[string]int64{
		"min_movies": minMovies,
		"limit":      int64(topN),
	})
	if payload, ok := h.cachedAnalytics(key); ok {
		respondSuccess(w, payload, start)
		return
	}

	studios, err := h.db.GetStudioROI(r.Context(), minMovies)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeDatabaseError, "failed to query studio analytics", err)
		return
	}
	if len(studios) > topN {
		studios = studios[:topN]
	}
	if studios == nil {
		studios = []models.StudioROI{}
	}

	payload := studiosResponse{Studios: studios}
	h.storeAnalytics(key, payload)
	respondSuccess(w, payload, start)
}

// handleGenreTrends serves the per-genre yearly ROI series with a fitted
// linear trend and next-year projection. Genres with fewer than two yearly
// points report null slope and projection; that is expected data sparsity,
// not a failure.
func (h *Handler) handleGenreTrends(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	const key = "analytics:trends"
	if payload, ok := h.cachedAnalytics(key); ok {
		respondSuccess(w, payload, start)
		return
	}

	series, err := h.db.GetGenreYearROI(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeDatabaseError, "failed to query trend series", err)
		return
	}

	trends := make([]models.GenreTrend, 0, len(series))
	for genre, years := range series {
		trend := models.GenreTrend{Genre: genre, Years: years}

		xs := make([]float64, 0, len(years))
		ys := make([]float64, 0, len(years))
		for _, y := range years {
			year, err := strconv.Atoi(y.Year)
			if err != nil {
				continue
			}
			xs = append(xs, float64(year))
			ys = append(ys, y.MeanROI)
		}

		fit, err := regress.FitTrend(xs, ys)
		switch {
		case err == nil:
			trend.Slope = &fit.Slope
			trend.Intercept = &fit.Intercept
			trend.Projection = &fit.Projection
		case errors.Is(err, regress.ErrInsufficientData):
			// Nulls in the payload; nothing to fit.
		default:
			respondError(w, http.StatusInternalServerError, codeInternalError, "trend fit failed", err)
			return
		}
		trends = append(trends, trend)
	}

	// Map iteration order is random; present genres alphabetically.
	sort.Slice(trends, func(i, j int) bool { return trends[i].Genre < trends[j].Genre })

	payload := map[string]interface{}{"trends": trends}
	h.storeAnalytics(key, payload)
	respondSuccess(w, payload, start)
}
