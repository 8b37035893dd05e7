// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

/*
Package pipeline implements the collection pipeline: enrich raw genre
listings with detail-endpoint data, derive release economics, clean the
dataset, encode categoricals and train the ROI model.

Stages are plain functions over record slices so each is testable in
isolation; Run in pipeline.go wires them together for the collect binary.
*/
package pipeline

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/mfaucher/cinemetrics/internal/models"
	tmdbmodels "github.com/mfaucher/cinemetrics/internal/models/tmdb"
	"github.com/mfaucher/cinemetrics/internal/tmdb"
)

// directorJob is the crew job title that identifies the director.
const directorJob = "Director"

// Enricher joins listings with detail-endpoint data. Details are fetched
// once per distinct movie ID and reused for every listing of that movie, so
// a movie discovered under several genres costs one API call.
type Enricher struct {
	fetcher tmdb.DetailFetcher
	topCast int
}

// NewEnricher creates an Enricher. topCast is how many leading cast members
// make up the actors field.
func NewEnricher(fetcher tmdb.DetailFetcher, topCast int) *Enricher {
	if topCast < 1 {
		topCast = 3
	}
	return &Enricher{fetcher: fetcher, topCast: topCast}
}

// Enrich builds one MovieRecord per listing. A listing whose detail lookup
// fails still yields a record, populated with defaults; the cleaning stage
// removes it later via the economics filters.
func (e *Enricher) Enrich(ctx context.Context, listings []models.Listing) []models.MovieRecord {
	details := make(map[int64]*tmdbmodels.MovieDetails, len(listings))
	fetched := make(map[int64]bool, len(listings))

	records := make([]models.MovieRecord, 0, len(listings))
	for _, listing := range listings {
		if ctx.Err() != nil {
			break
		}
		if !fetched[listing.ID] {
			d, ok := e.fetcher.FetchDetails(ctx, listing.ID)
			fetched[listing.ID] = true
			if ok {
				details[listing.ID] = d
			}
		}
		records = append(records, e.buildRecord(listing, details[listing.ID]))
	}
	return records
}

// buildRecord merges one listing with its detail record (nil when the lookup
// failed), applying the default for every absent field.
func (e *Enricher) buildRecord(listing models.Listing, d *tmdbmodels.MovieDetails) models.MovieRecord {
	rec := models.MovieRecord{
		ID:          listing.ID,
		Title:       listing.Title,
		Genre:       listing.Genre,
		ReleaseDate: models.Unknown,
		ReleaseYear: models.Unknown,
		Season:      models.Unknown,
		Director:    models.Unknown,
		Studio:      models.Unknown,
	}
	if d == nil {
		return rec
	}

	rec.Budget = d.Budget
	rec.Revenue = d.Revenue

	if d.ReleaseDate != "" {
		rec.ReleaseDate = d.ReleaseDate
		rec.ReleaseYear = releaseYear(d.ReleaseDate)
		rec.Season = seasonFromDate(d.ReleaseDate)
	}
	if d.Credits != nil {
		if director := findDirector(d.Credits.Crew); director != "" {
			rec.Director = director
		}
		rec.Actors = topCastNames(d.Credits.Cast, e.topCast)
	}
	if len(d.ProductionCompanies) > 0 && d.ProductionCompanies[0].Name != "" {
		rec.Studio = d.ProductionCompanies[0].Name
	}
	return rec
}

// findDirector returns the name of the first crew member with the Director
// job, or "".
func findDirector(crew []tmdbmodels.CrewMember) string {
	for _, member := range crew {
		if member.Job == directorJob {
			return member.Name
		}
	}
	return ""
}

// topCastNames joins the names of the n leading cast members (lowest billing
// order first) with ", ". An empty cast yields "".
func topCastNames(cast []tmdbmodels.CastMember, n int) string {
	if len(cast) == 0 {
		return ""
	}
	sorted := append([]tmdbmodels.CastMember(nil), cast...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	names := make([]string, len(sorted))
	for i, member := range sorted {
		names[i] = member.Name
	}
	return strings.Join(names, ", ")
}

// releaseYear extracts the year component of a YYYY-MM-DD date, or Unknown
// when the date does not parse.
func releaseYear(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return models.Unknown
	}
	return t.Format("2006")
}

// seasonFromDate maps a YYYY-MM-DD date to its meteorological season:
// Dec-Feb Winter, Mar-May Spring, Jun-Aug Summer, Sep-Nov Fall. Unparseable
// dates map to Unknown.
func seasonFromDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return models.Unknown
	}
	switch t.Month() {
	case time.December, time.January, time.February:
		return models.SeasonWinter
	case time.March, time.April, time.May:
		return models.SeasonSpring
	case time.June, time.July, time.August:
		return models.SeasonSummer
	default:
		return models.SeasonFall
	}
}
