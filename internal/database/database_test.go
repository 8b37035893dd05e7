// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package database

import (
	"context"
	"strings"
	"testing"

	"github.com/mfaucher/cinemetrics/internal/config"
	"github.com/mfaucher/cinemetrics/internal/models"
)

// newTestDB opens an in-memory database.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{Path: "", MaxMemory: "512MB", Threads: 2})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() = %v", err)
		}
	})
	return db
}

func testRecords() []models.MovieRecord {
	return []models.MovieRecord{
		{
			ID: 1, Title: "Alpha", Genre: "Action", Budget: 100000, Revenue: 500000,
			ReleaseDate: "2019-07-04", ReleaseYear: "2019", Season: "Summer",
			Director: "Nolan", Actors: "A, B", Studio: "Warner", ROI: 4.0,
		},
		{
			ID: 2, Title: "Beta", Genre: "Action", Budget: 200000, Revenue: 600000,
			ReleaseDate: "2020-02-14", ReleaseYear: "2020", Season: "Winter",
			Director: "Bigelow", Actors: "C", Studio: "Warner", ROI: 2.0,
		},
		{
			ID: 3, Title: "Gamma", Genre: "Drama", Budget: 50000, Revenue: 100000,
			ReleaseDate: "2020-10-01", ReleaseYear: "2020", Season: "Fall",
			Director: "Nolan", Actors: "A, B", Studio: "A24", ROI: 1.0,
		},
		{
			ID: 4, Title: "Delta", Genre: "Drama", Budget: 80000, Revenue: 400000,
			ReleaseDate: "2021-05-20", ReleaseYear: "2021", Season: "Spring",
			Director: "Villeneuve", Actors: "D", Studio: models.Unknown, ROI: 4.0,
		},
	}
}

func TestReplaceAndGetMovies(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.ReplaceMovies(ctx, testRecords()); err != nil {
		t.Fatalf("ReplaceMovies() = %v", err)
	}

	got, err := db.GetMovies(ctx, MovieFilter{})
	if err != nil {
		t.Fatalf("GetMovies() = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len(movies) = %d, want 4", len(got))
	}
	// Newest release first.
	if got[0].Title != "Delta" {
		t.Errorf("first movie = %q, want Delta", got[0].Title)
	}

	count, err := db.CountMovies(ctx)
	if err != nil {
		t.Fatalf("CountMovies() = %v", err)
	}
	if count != 4 {
		t.Errorf("CountMovies() = %d, want 4", count)
	}
}

func TestReplaceMoviesReplacesNotAppends(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.ReplaceMovies(ctx, testRecords()); err != nil {
		t.Fatalf("first ReplaceMovies() = %v", err)
	}
	if err := db.ReplaceMovies(ctx, testRecords()[:1]); err != nil {
		t.Fatalf("second ReplaceMovies() = %v", err)
	}

	count, err := db.CountMovies(ctx)
	if err != nil {
		t.Fatalf("CountMovies() = %v", err)
	}
	if count != 1 {
		t.Errorf("CountMovies() after replace = %d, want 1", count)
	}
}

func TestGetMoviesFilters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	if err := db.ReplaceMovies(ctx, testRecords()); err != nil {
		t.Fatalf("ReplaceMovies() = %v", err)
	}

	byGenre, err := db.GetMovies(ctx, MovieFilter{Genre: "Drama"})
	if err != nil {
		t.Fatalf("GetMovies(genre) = %v", err)
	}
	if len(byGenre) != 2 {
		t.Errorf("drama movies = %d, want 2", len(byGenre))
	}

	byYear, err := db.GetMovies(ctx, MovieFilter{Year: "2020"})
	if err != nil {
		t.Fatalf("GetMovies(year) = %v", err)
	}
	if len(byYear) != 2 {
		t.Errorf("2020 movies = %d, want 2", len(byYear))
	}

	both, err := db.GetMovies(ctx, MovieFilter{Genre: "Drama", Year: "2020"})
	if err != nil {
		t.Fatalf("GetMovies(genre+year) = %v", err)
	}
	if len(both) != 1 || both[0].Title != "Gamma" {
		t.Errorf("drama 2020 = %+v, want just Gamma", both)
	}

	paged, err := db.GetMovies(ctx, MovieFilter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("GetMovies(paged) = %v", err)
	}
	if len(paged) != 2 {
		t.Errorf("paged movies = %d, want 2", len(paged))
	}
}

func TestGetGenreROI(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	if err := db.ReplaceMovies(ctx, testRecords()); err != nil {
		t.Fatalf("ReplaceMovies() = %v", err)
	}

	got, err := db.GetGenreROI(ctx)
	if err != nil {
		t.Fatalf("GetGenreROI() = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(genres) = %d, want 2", len(got))
	}
	// Action mean = (4+2)/2 = 3.0; Drama mean = (1+4)/2 = 2.5.
	if got[0].Genre != "Action" || got[0].MeanROI != 3.0 || got[0].MovieCount != 2 {
		t.Errorf("top genre = %+v, want Action mean 3.0 count 2", got[0])
	}
	if got[1].Genre != "Drama" || got[1].MeanROI != 2.5 {
		t.Errorf("second genre = %+v, want Drama mean 2.5", got[1])
	}
}

func TestGetStudioROI(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	if err := db.ReplaceMovies(ctx, testRecords()); err != nil {
		t.Fatalf("ReplaceMovies() = %v", err)
	}

	got, err := db.GetStudioROI(ctx, 1)
	if err != nil {
		t.Fatalf("GetStudioROI() = %v", err)
	}
	for _, s := range got {
		if s.Studio == models.Unknown {
			t.Errorf("Unknown studio leaked into ranking: %+v", s)
		}
	}
	if len(got) != 2 {
		t.Fatalf("len(studios) = %d, want 2 (Unknown excluded)", len(got))
	}
	// Warner mean = (4+2)/2 = 3.0 beats A24 at 1.0.
	if got[0].Studio != "Warner" || got[0].MeanROI != 3.0 {
		t.Errorf("top studio = %+v, want Warner mean 3.0", got[0])
	}

	// Raising the floor drops single-movie studios.
	filtered, err := db.GetStudioROI(ctx, 2)
	if err != nil {
		t.Fatalf("GetStudioROI(min 2) = %v", err)
	}
	if len(filtered) != 1 || filtered[0].Studio != "Warner" {
		t.Errorf("studios with >= 2 movies = %+v, want just Warner", filtered)
	}
}

func TestGetGenreYearROI(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	records := testRecords()
	records = append(records, models.MovieRecord{
		ID: 5, Title: "Epsilon", Genre: "Drama", Budget: 10000, Revenue: 30000,
		ReleaseDate: models.Unknown, ReleaseYear: models.Unknown, Season: models.Unknown,
		Director: "Nolan", Actors: "", Studio: "A24", ROI: 2.0,
	})
	if err := db.ReplaceMovies(ctx, records); err != nil {
		t.Fatalf("ReplaceMovies() = %v", err)
	}

	got, err := db.GetGenreYearROI(ctx)
	if err != nil {
		t.Fatalf("GetGenreYearROI() = %v", err)
	}

	action := got["Action"]
	if len(action) != 2 {
		t.Fatalf("action years = %d, want 2", len(action))
	}
	if action[0].Year != "2019" || action[0].MeanROI != 4.0 {
		t.Errorf("action 2019 = %+v, want mean 4.0", action[0])
	}

	// Unknown years never appear on the time axis.
	for genre, years := range got {
		for _, y := range years {
			if y.Year == models.Unknown {
				t.Errorf("genre %s includes Unknown year", genre)
			}
		}
	}
}

func TestExportMoviesCSV(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	if err := db.ReplaceMovies(ctx, testRecords()); err != nil {
		t.Fatalf("ReplaceMovies() = %v", err)
	}

	var buf strings.Builder
	n, err := db.ExportMoviesCSV(ctx, &buf, MovieFilter{Limit: 1000})
	if err != nil {
		t.Fatalf("ExportMoviesCSV() = %v", err)
	}
	if n != 4 {
		t.Errorf("rows written = %d, want 4", n)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("CSV lines = %d, want header + 4 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,title,genre,budget,revenue") {
		t.Errorf("header = %q", lines[0])
	}
	// The export is the complete persisted table, encoded columns included.
	if !strings.HasSuffix(lines[0],
		"director_encoded,season_encoded,actors_encoded,studio_encoded,genre_encoded") {
		t.Errorf("header missing encoded columns: %q", lines[0])
	}

	// Row limit is honored.
	buf.Reset()
	n, err = db.ExportMoviesCSV(ctx, &buf, MovieFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ExportMoviesCSV(limit 2) = %v", err)
	}
	if n != 2 {
		t.Errorf("rows written = %d, want 2", n)
	}
}

func TestExportMoviesCSVFiltered(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	if err := db.ReplaceMovies(ctx, testRecords()); err != nil {
		t.Fatalf("ReplaceMovies() = %v", err)
	}

	var buf strings.Builder
	n, err := db.ExportMoviesCSV(ctx, &buf, MovieFilter{Genre: "Drama", Limit: 1000})
	if err != nil {
		t.Fatalf("ExportMoviesCSV(genre) = %v", err)
	}
	if n != 2 {
		t.Errorf("drama rows = %d, want 2", n)
	}
	if out := buf.String(); strings.Contains(out, "Alpha") || strings.Contains(out, "Beta") {
		t.Errorf("action rows leaked into drama export:\n%s", out)
	}

	buf.Reset()
	n, err = db.ExportMoviesCSV(ctx, &buf, MovieFilter{Genre: "Drama", Year: "2021", Limit: 1000})
	if err != nil {
		t.Fatalf("ExportMoviesCSV(genre+year) = %v", err)
	}
	if n != 1 {
		t.Errorf("2021 drama rows = %d, want 1", n)
	}
	if !strings.Contains(buf.String(), "Delta") {
		t.Error("expected Delta in the 2021 drama export")
	}
}

func TestEmptyDataset(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	movies, err := db.GetMovies(ctx, MovieFilter{})
	if err != nil {
		t.Fatalf("GetMovies() on empty dataset = %v", err)
	}
	if len(movies) != 0 {
		t.Errorf("movies = %d, want 0", len(movies))
	}

	genres, err := db.GetGenreROI(ctx)
	if err != nil {
		t.Fatalf("GetGenreROI() on empty dataset = %v", err)
	}
	if len(genres) != 0 {
		t.Errorf("genres = %d, want 0", len(genres))
	}
}
