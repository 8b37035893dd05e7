// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package api

import (
	"io"
	"net/http"
	"time"

	"github.com/mfaucher/cinemetrics/internal/database"
	"github.com/mfaucher/cinemetrics/internal/logging"
	"github.com/mfaucher/cinemetrics/internal/models"
)

// moviesQuery bounds and filters a dataset page request.
type moviesQuery struct {
	Limit  int    `validate:"gte=1,lte=1000"`
	Offset int    `validate:"gte=0"`
	Genre  string `validate:"omitempty,max=64"`
	Year   string `validate:"omitempty,len=4,numeric"`
}

// moviesResponse is the payload of GET /api/v1/movies.
type moviesResponse struct {
	Movies []models.MovieRecord `json:"movies"`
	Count  int                  `json:"count"`
	Total  int64                `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// handleMovies serves a filtered page of the dataset.
func (h *Handler) handleMovies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q := moviesQuery{
		Limit:  getIntParam(r, "limit", 100),
		Offset: getIntParam(r, "offset", 0),
		Genre:  r.URL.Query().Get("genre"),
		Year:   r.URL.Query().Get("year"),
	}
	if apiErr := validateRequest(&q); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	movies, err := h.db.GetMovies(r.Context(), database.MovieFilter{
		Genre:  q.Genre,
		Year:   q.Year,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeDatabaseError, "failed to query movies", err)
		return
	}
	total, err := h.db.CountMovies(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeDatabaseError, "failed to count movies", err)
		return
	}

	if movies == nil {
		movies = []models.MovieRecord{}
	}
	respondSuccess(w, moviesResponse{
		Movies: movies,
		Count:  len(movies),
		Total:  total,
		Limit:  q.Limit,
		Offset: q.Offset,
	}, start)
}

// exportQuery filters a CSV export the same way handleMovies filters a
// page; the row limit is clamped rather than validated since the cap is a
// server policy, not a client error.
type exportQuery struct {
	Genre string `validate:"omitempty,max=64"`
	Year  string `validate:"omitempty,len=4,numeric"`
}

// countingWriter tracks whether any bytes reached the client.
type countingWriter struct {
	w       io.Writer
	written int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.written += int64(n)
	return n, err
}

// handleExportCSV streams the filtered dataset as a CSV download. A failure
// before the first byte still gets a proper error response; after that the
// CSV headers are on the wire and the error can only be logged.
func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	maxRows := getIntParam(r, "limit", h.config.Server.ExportMaxRows)
	if maxRows < 1 || maxRows > h.config.Server.ExportMaxRows {
		maxRows = h.config.Server.ExportMaxRows
	}

	q := exportQuery{
		Genre: r.URL.Query().Get("genre"),
		Year:  r.URL.Query().Get("year"),
	}
	if apiErr := validateRequest(&q); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="movies.csv"`)

	cw := &countingWriter{w: w}
	n, err := h.db.ExportMoviesCSV(r.Context(), cw, database.MovieFilter{
		Genre: q.Genre,
		Year:  q.Year,
		Limit: maxRows,
	})
	if err != nil {
		if cw.written == 0 {
			w.Header().Del("Content-Disposition")
			respondError(w, http.StatusInternalServerError, codeDatabaseError, "failed to export movies", err)
			return
		}
		logging.Error().Err(err).Int("rows_written", n).Msg("CSV export failed mid-stream")
		return
	}

	logging.Debug().Int("rows", n).Msg("CSV export complete")
}
