// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package models

// Unknown is the sentinel for string attributes the detail endpoint did not
// provide. Budget and revenue default to 0 and actors to "" instead; those
// sentinels are documented on the fields below.
const Unknown = "Unknown"

// Season names derived from the release month. December through February is
// Winter, and so on by meteorological quarter. Unparseable dates map to
// Unknown.
const (
	SeasonWinter = "Winter"
	SeasonSpring = "Spring"
	SeasonSummer = "Summer"
	SeasonFall   = "Fall"
)

// Listing is one raw row from a discover-by-genre query. The genre is a
// property of the query, not of the movie: the same movie fetched under two
// genre queries yields two listings.
type Listing struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Genre string `json:"genre"`
}

// MovieRecord is one row of the collected dataset: a listing joined with
// detail-endpoint enrichment, derived economics and encoded categoricals.
//
// Defaults when the detail lookup fails or a field is absent: Budget and
// Revenue 0, ReleaseDate/ReleaseYear/Season/Director/Studio "Unknown",
// Actors "". Rows with default economics are later removed by the cleaner's
// budget/revenue filters.
type MovieRecord struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	Budget      int64  `json:"budget"`
	Revenue     int64  `json:"revenue"`
	ReleaseDate string `json:"release_date"`
	ReleaseYear string `json:"release_year"`
	Season      string `json:"season"`
	Director    string `json:"director"`
	Actors      string `json:"actors"`
	Studio      string `json:"studio"`

	// ROI is (revenue - budget) / budget, defined only after cleaning
	// (budget > 0 guaranteed).
	ROI float64 `json:"roi"`

	DirectorEncoded int `json:"director_encoded"`
	SeasonEncoded   int `json:"season_encoded"`
	ActorsEncoded   int `json:"actors_encoded"`
	StudioEncoded   int `json:"studio_encoded"`
	GenreEncoded    int `json:"genre_encoded"`
}

// CategoricalValue returns the value of the named categorical column.
// Column names follow config.CategoricalColumns.
func (m *MovieRecord) CategoricalValue(column string) (string, bool) {
	switch column {
	case "director":
		return m.Director, true
	case "season":
		return m.Season, true
	case "actors":
		return m.Actors, true
	case "studio":
		return m.Studio, true
	case "genre":
		return m.Genre, true
	default:
		return "", false
	}
}

// SetEncoded stores the integer code for the named categorical column.
func (m *MovieRecord) SetEncoded(column string, code int) bool {
	switch column {
	case "director":
		m.DirectorEncoded = code
	case "season":
		m.SeasonEncoded = code
	case "actors":
		m.ActorsEncoded = code
	case "studio":
		m.StudioEncoded = code
	case "genre":
		m.GenreEncoded = code
	default:
		return false
	}
	return true
}

// Encoded returns the stored code for the named categorical column.
func (m *MovieRecord) Encoded(column string) (int, bool) {
	switch column {
	case "director":
		return m.DirectorEncoded, true
	case "season":
		return m.SeasonEncoded, true
	case "actors":
		return m.ActorsEncoded, true
	case "studio":
		return m.StudioEncoded, true
	case "genre":
		return m.GenreEncoded, true
	default:
		return 0, false
	}
}

// GenreROI is the mean ROI for one genre across the cleaned dataset.
type GenreROI struct {
	Genre      string  `json:"genre"`
	MeanROI    float64 `json:"mean_roi"`
	MovieCount int64   `json:"movie_count"`
}

// StudioROI is the mean ROI for one studio across the cleaned dataset.
type StudioROI struct {
	Studio     string  `json:"studio"`
	MeanROI    float64 `json:"mean_roi"`
	MovieCount int64   `json:"movie_count"`
}

// YearROI is the mean ROI of one genre in one release year.
type YearROI struct {
	Year    string  `json:"year"`
	MeanROI float64 `json:"mean_roi"`
	Count   int64   `json:"count"`
}

// GenreTrend is the year-over-year ROI series for one genre plus a fitted
// linear trend. Slope and Projection are null when the genre has fewer than
// two yearly observations: the trend is unavailable, not an error.
type GenreTrend struct {
	Genre      string    `json:"genre"`
	Years      []YearROI `json:"years"`
	Slope      *float64  `json:"slope"`
	Intercept  *float64  `json:"intercept"`
	Projection *float64  `json:"projection"`
}
