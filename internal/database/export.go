// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package database

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mfaucher/cinemetrics/internal/metrics"
	"github.com/mfaucher/cinemetrics/internal/models"
)

// exportHeader is the CSV column order, matching the movies table.
var exportHeader = []string{
	"id", "title", "genre", "budget", "revenue", "release_date", "release_year",
	"season", "director", "actors", "studio", "roi",
	"director_encoded", "season_encoded", "actors_encoded", "studio_encoded", "genre_encoded",
}

// ExportMoviesCSV streams the filtered dataset as CSV to w: the complete
// persisted table, encoded columns included, with the same genre/year
// semantics as GetMovies. filter.Limit bounds the export and must be
// positive; rows are written in stable release-date order. Returns the
// number of data rows written.
func (db *DB) ExportMoviesCSV(ctx context.Context, w io.Writer, filter MovieFilter) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("export_csv", time.Since(start)) }()

	if filter.Limit < 1 {
		return 0, fmt.Errorf("export row limit must be >= 1, got %d", filter.Limit)
	}

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
	query += " ORDER BY release_date DESC, id LIMIT ?"
	args = append(args, filter.Limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to query movies for export: %w", err)
	}
	defer closeQuietly(rows)

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, fmt.Errorf("failed to write CSV header: %w", err)
	}

	written := 0
	for rows.Next() {
		var r models.MovieRecord
		if err := rows.Scan(
			&r.ID, &r.Title, &r.Genre, &r.Budget, &r.Revenue, &r.ReleaseDate, &r.ReleaseYear,
			&r.Season, &r.Director, &r.Actors, &r.Studio, &r.ROI,
			&r.DirectorEncoded, &r.SeasonEncoded, &r.ActorsEncoded, &r.StudioEncoded, &r.GenreEncoded,
		); err != nil {
			return written, fmt.Errorf("failed to scan export row: %w", err)
		}

		record := []string{
			strconv.FormatInt(r.ID, 10),
			r.Title,
			r.Genre,
			strconv.FormatInt(r.Budget, 10),
			strconv.FormatInt(r.Revenue, 10),
			r.ReleaseDate,
			r.ReleaseYear,
			r.Season,
			r.Director,
			r.Actors,
			r.Studio,
			strconv.FormatFloat(r.ROI, 'g', -1, 64),
			strconv.Itoa(r.DirectorEncoded),
			strconv.Itoa(r.SeasonEncoded),
			strconv.Itoa(r.ActorsEncoded),
			strconv.Itoa(r.StudioEncoded),
			strconv.Itoa(r.GenreEncoded),
		}
		if err := cw.Write(record); err != nil {
			return written, fmt.Errorf("failed to write CSV row: %w", err)
		}
		written++
	}
	if err := rows.Err(); err != nil {
		return written, fmt.Errorf("export iteration failed: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return written, nil
}
