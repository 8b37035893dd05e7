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

// movieColumns is the column list shared by inserts and selects, in
// models.MovieRecord field order.
const movieColumns = `id, title, genre, budget, revenue, release_date, release_year,
	season, director, actors, studio, roi,
	director_encoded, season_encoded, actors_encoded, studio_encoded, genre_encoded`

// MovieFilter narrows dashboard movie queries. Zero values mean "no filter";
// Limit <= 0 falls back to a server-side default.
type MovieFilter struct {
	Genre  string
	Year   string
	Limit  int
	Offset int
}

// defaultMovieLimit caps unpaginated movie listings.
const defaultMovieLimit = 500

// ReplaceMovies replaces the entire dataset with the given records in one
// transaction. Called once per collection run.
func (db *DB) ReplaceMovies(ctx context.Context, records []models.MovieRecord) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("replace_movies", time.Since(start)) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM movies"); err != nil {
		return fmt.Errorf("failed to clear movies table: %w", err)
	}

	insert := fmt.Sprintf(
		"INSERT INTO movies (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		movieColumns,
	)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer closeQuietly(stmt)

	for i := range records {
		r := &records[i]
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.Title, r.Genre, r.Budget, r.Revenue, r.ReleaseDate, r.ReleaseYear,
			r.Season, r.Director, r.Actors, r.Studio, r.ROI,
			r.DirectorEncoded, r.SeasonEncoded, r.ActorsEncoded, r.StudioEncoded, r.GenreEncoded,
		); err != nil {
			return fmt.Errorf("failed to insert movie %d: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dataset replace: %w", err)
	}
	return nil
}

// GetMovies returns dataset rows matching the filter, newest release first.
func (db *DB) GetMovies(ctx context.Context, filter MovieFilter) ([]models.MovieRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("get_movies", time.Since(start)) }()

	query := fmt.Sprintf("SELECT %s FROM movies WHERE 1=1", movieColumns)
	var args []interface{}

	if filter.Genre != "" {
		query += " AND genre = ?"
		args = append(args, filter.Genre)
	}
	if filter.Year != "" {
		query += " AND release_year = ?"
		args = append(args, filter.Year)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultMovieLimit
	}
	query += " ORDER BY release_date DESC, id LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer closeQuietly(rows)

	var records []models.MovieRecord
	for rows.Next() {
		var r models.MovieRecord
		if err := rows.Scan(
			&r.ID, &r.Title, &r.Genre, &r.Budget, &r.Revenue, &r.ReleaseDate, &r.ReleaseYear,
			&r.Season, &r.Director, &r.Actors, &r.Studio, &r.ROI,
			&r.DirectorEncoded, &r.SeasonEncoded, &r.ActorsEncoded, &r.StudioEncoded, &r.GenreEncoded,
		); err != nil {
			return nil, fmt.Errorf("failed to scan movie row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("movie row iteration failed: %w", err)
	}
	return records, nil
}

// CountMovies returns the dataset size.
func (db *DB) CountMovies(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int64
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return count, nil
}
