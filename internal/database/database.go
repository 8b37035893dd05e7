// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

/*
Package database provides the DuckDB-backed store for the collected movie
dataset. DuckDB fits the workload: the dataset is written once per
collection run and then served through aggregation-heavy dashboard queries
(mean ROI by genre, studio and year), which a columnar engine answers
without any manual indexing.

The movies table holds the cleaned dataset only; raw pre-clean records are
never persisted. A collection run replaces the table contents in one
transaction, so dashboard readers see either the old dataset or the new
one, never a mix.
*/
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/mfaucher/cinemetrics/internal/config"
	"github.com/mfaucher/cinemetrics/internal/logging"
)

// queryTimeout bounds any single dashboard query.
const queryTimeout = 30 * time.Second

// DB wraps the DuckDB connection and provides dataset access methods.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New opens (or creates) the DuckDB database and initializes the schema.
// An empty Path opens an in-memory database, used by tests.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	connStr := ""
	if cfg.Path != "" {
		// Parent directory must exist before DuckDB creates the file.
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
		connStr = fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
			cfg.Path, numThreads, cfg.MaxMemory)
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(numThreads)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	db := &DB{conn: conn, cfg: cfg}

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Int("threads", numThreads).
		Msg("database opened")

	return db, nil
}

// initialize creates the schema if it does not exist.
func (db *DB) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	schema := `
		CREATE TABLE IF NOT EXISTS movies (
			id               BIGINT NOT NULL,
			title            VARCHAR NOT NULL,
			genre            VARCHAR NOT NULL,
			budget           BIGINT NOT NULL,
			revenue          BIGINT NOT NULL,
			release_date     VARCHAR NOT NULL,
			release_year     VARCHAR NOT NULL,
			season           VARCHAR NOT NULL,
			director         VARCHAR NOT NULL,
			actors           VARCHAR NOT NULL,
			studio           VARCHAR NOT NULL,
			roi              DOUBLE NOT NULL,
			director_encoded INTEGER NOT NULL,
			season_encoded   INTEGER NOT NULL,
			actors_encoded   INTEGER NOT NULL,
			studio_encoded   INTEGER NOT NULL,
			genre_encoded    INTEGER NOT NULL
		)`

	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create movies table: %w", err)
	}
	return nil
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// ensureContext attaches the query timeout when the caller's context has no
// deadline of its own.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, queryTimeout)
}

// closeQuietly closes a resource where the error has nowhere to go.
func closeQuietly(c interface{ Close() error }) {
	if err := c.Close(); err != nil {
		logging.Debug().Err(err).Msg("close failed")
	}
}
