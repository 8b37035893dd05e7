// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

// Package tmdb defines the wire types of the TMDB v3 API endpoints consumed
// by the fetcher: the discover listing endpoint and the movie detail
// endpoint with appended credits.
package tmdb

// DiscoverResponse is one page of /discover/movie results.
type DiscoverResponse struct {
	Page         int            `json:"page"`
	Results      []MovieSummary `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// MovieSummary is one listing row of a discover page. Only the fields the
// pipeline consumes are decoded.
type MovieSummary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
}

// MovieDetails is the /movie/{id}?append_to_response=credits payload.
// Budget and revenue are plain integers (0 when TMDB has no figure, which
// is indistinguishable from an actual zero and treated as absent).
type MovieDetails struct {
	ID                  int64               `json:"id"`
	Title               string              `json:"title"`
	Budget              int64               `json:"budget"`
	Revenue             int64               `json:"revenue"`
	ReleaseDate         string              `json:"release_date"`
	Credits             *Credits            `json:"credits"`
	ProductionCompanies []ProductionCompany `json:"production_companies"`
}

// Credits is the appended credits block.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// CastMember is one cast credit, ordered by billing.
type CastMember struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// CrewMember is one crew credit; Job distinguishes directors, writers, etc.
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// ProductionCompany is one entry of the production_companies list; the
// first entry is treated as the primary studio.
type ProductionCompany struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
