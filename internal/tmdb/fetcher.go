// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package tmdb

import (
	"context"

	"github.com/mfaucher/cinemetrics/internal/logging"
	"github.com/mfaucher/cinemetrics/internal/models"
	tmdbmodels "github.com/mfaucher/cinemetrics/internal/models/tmdb"
)

// DetailFetcher is the interface the enrichment stage consumes. The second
// return value reports availability: false means retries were exhausted and
// the caller must fall back to default field values. Implemented by Fetcher
// for production and by stubs in tests.
type DetailFetcher interface {
	FetchDetails(ctx context.Context, movieID int64) (*tmdbmodels.MovieDetails, bool)
}

// Fetcher applies the best-effort collection policy on top of Client:
// a page or detail lookup that fails after all retries contributes nothing
// instead of aborting the batch. One slow or missing resource never costs
// more than its own records.
type Fetcher struct {
	client *Client
}

// NewFetcher wraps a Client with best-effort semantics.
func NewFetcher(client *Client) *Fetcher {
	return &Fetcher{client: client}
}

// FetchCategory fetches pages [1, pageCount] of listings for one genre and
// flattens them into Listing rows tagged with the genre name. Failed pages
// are logged and skipped.
func (f *Fetcher) FetchCategory(ctx context.Context, genreName string, genreID, pageCount int) []models.Listing {
	var listings []models.Listing

	for page := 1; page <= pageCount; page++ {
		resp, err := f.client.DiscoverByGenre(ctx, genreID, page)
		if err != nil {
			logging.Warn().
				Err(err).
				Str("genre", genreName).
				Int("page", page).
				Msg("discover page unavailable, continuing without it")
			continue
		}

		for _, movie := range resp.Results {
			listings = append(listings, models.Listing{
				ID:    movie.ID,
				Title: movie.Title,
				Genre: genreName,
			})
		}
	}

	logging.Info().
		Str("genre", genreName).
		Int("pages", pageCount).
		Int("listings", len(listings)).
		Msg("fetched genre listings")

	return listings
}

// FetchDetails fetches the detail record for one movie. Returns (nil, false)
// when the record is unavailable after retries; the caller substitutes
// defaults for every enrichment field.
func (f *Fetcher) FetchDetails(ctx context.Context, movieID int64) (*tmdbmodels.MovieDetails, bool) {
	details, err := f.client.GetMovieDetails(ctx, movieID)
	if err != nil {
		logging.Warn().
			Err(err).
			Int64("movie_id", movieID).
			Msg("detail fetch unavailable, enriching with defaults")
		return nil, false
	}
	return details, true
}
