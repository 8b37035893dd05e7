// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/mfaucher/cinemetrics/internal/metrics"
	"github.com/mfaucher/cinemetrics/internal/models"
)

// GetGenreROI returns mean ROI per genre, most profitable first.
func (db *DB) GetGenreROI(ctx context.Context) ([]models.GenreROI, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("genre_roi", time.Since(start)) }()

	query := `
		SELECT genre, AVG(roi) AS mean_roi, COUNT(*) AS movie_count
		FROM movies
		GROUP BY genre
		ORDER BY mean_roi DESC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query genre ROI: %w", err)
	}
	defer closeQuietly(rows)

	var out []models.GenreROI
	for rows.Next() {
		var g models.GenreROI
		if err := rows.Scan(&g.Genre, &g.MeanROI, &g.MovieCount); err != nil {
			return nil, fmt.Errorf("failed to scan genre ROI row: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("genre ROI iteration failed: %w", err)
	}
	return out, nil
}

// GetStudioROI returns mean ROI per studio, most profitable first. Studios
// below minMovies are excluded so single-film flukes do not dominate the
// ranking; the Unknown placeholder studio is always excluded.
func (db *DB) GetStudioROI(ctx context.Context, minMovies int64) ([]models.StudioROI, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("studio_roi", time.Since(start)) }()

	if minMovies < 1 {
		minMovies = 1
	}

	query := `
		SELECT studio, AVG(roi) AS mean_roi, COUNT(*) AS movie_count
		FROM movies
		WHERE studio <> ?
		GROUP BY studio
		HAVING COUNT(*) >= ?
		ORDER BY mean_roi DESC`

	rows, err := db.conn.QueryContext(ctx, query, models.Unknown, minMovies)
	if err != nil {
		return nil, fmt.Errorf("failed to query studio ROI: %w", err)
	}
	defer closeQuietly(rows)

	var out []models.StudioROI
	for rows.Next() {
		var s models.StudioROI
		if err := rows.Scan(&s.Studio, &s.MeanROI, &s.MovieCount); err != nil {
			return nil, fmt.Errorf("failed to scan studio ROI row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("studio ROI iteration failed: %w", err)
	}
	return out, nil
}

// GetStudioGenreROI returns one studio's mean ROI broken down by genre,
// most profitable genre first. An unknown studio yields an empty slice.
func (db *DB) GetStudioGenreROI(ctx context.Context, studio string) ([]models.GenreROI, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("studio_genre_roi", time.Since(start)) }()

	query := `
		SELECT genre, AVG(roi) AS mean_roi, COUNT(*) AS movie_count
		FROM movies
		WHERE studio = ?
		GROUP BY genre
		ORDER BY mean_roi DESC`

	rows, err := db.conn.QueryContext(ctx, query, studio)
	if err != nil {
		return nil, fmt.Errorf("failed to query studio genre ROI: %w", err)
	}
	defer closeQuietly(rows)

	var out []models.GenreROI
	for rows.Next() {
		var g models.GenreROI
		if err := rows.Scan(&g.Genre, &g.MeanROI, &g.MovieCount); err != nil {
			return nil, fmt.Errorf("failed to scan studio genre row: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("studio genre iteration failed: %w", err)
	}
	return out, nil
}

// GetGenreYearROI returns the per-year mean ROI series for every genre,
// ordered by genre then year. Rows with an Unknown release year are
// excluded: they cannot sit on a time axis.
func (db *DB) GetGenreYearROI(ctx context.Context) (map[string][]models.YearROI, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("genre_year_roi", time.Since(start)) }()

	query := `
		SELECT genre, release_year, AVG(roi) AS mean_roi, COUNT(*) AS movie_count
		FROM movies
		WHERE release_year <> ?
		GROUP BY genre, release_year
		ORDER BY genre, release_year`

	rows, err := db.conn.QueryContext(ctx, query, models.Unknown)
	if err != nil {
		return nil, fmt.Errorf("failed to query genre-year ROI: %w", err)
	}
	defer closeQuietly(rows)

	out := make(map[string][]models.YearROI)
	for rows.Next() {
		var genre string
		var y models.YearROI
		if err := rows.Scan(&genre, &y.Year, &y.MeanROI, &y.Count); err != nil {
			return nil, fmt.Errorf("failed to scan genre-year row: %w", err)
		}
		out[genre] = append(out[genre], y)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("genre-year iteration failed: %w", err)
	}
	return out, nil
}
