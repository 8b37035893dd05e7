// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

// Command collect runs one full collection: fetch listings and details
// from TMDB, enrich and clean them, train the ROI model and persist both
// the dataset and the model bundle. Designed to run as a batch job (cron
// or manual) while the server binary keeps serving the previous dataset.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/mfaucher/cinemetrics/internal/artifacts"
	"github.com/mfaucher/cinemetrics/internal/config"
	"github.com/mfaucher/cinemetrics/internal/database"
	"github.com/mfaucher/cinemetrics/internal/logging"
	"github.com/mfaucher/cinemetrics/internal/pipeline"
	"github.com/mfaucher/cinemetrics/internal/tmdb"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := cfg.ValidateCollect(); err != nil {
		logging.Fatal().Err(err).Msg("invalid collection configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Int("genres", len(cfg.TMDB.Genres)).
		Int("pages_per_genre", cfg.TMDB.PagesPerGenre).
		Str("db_path", cfg.Database.Path).
		Msg("starting collection run")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := tmdb.NewClient(&cfg.TMDB)
	// A dead API or bad credential fails the run up front; per-page
	// failures later degrade instead.
	if err := client.Ping(ctx); err != nil {
		logging.Fatal().Err(err).Msg("TMDB API unreachable")
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing database")
		}
	}()

	bundles, err := artifacts.NewStore(&cfg.Artifacts)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open artifacts store")
	}

	fetcher := tmdb.NewFetcher(client)
	p := pipeline.New(
		cfg,
		fetcher,
		pipeline.NewEnricher(fetcher, cfg.TMDB.TopCastCount),
		db,
		bundles,
	)

	result, err := p.Run(ctx)
	if err != nil {
		logging.Fatal().Err(err).Msg("collection run failed")
	}

	event := logging.Info().
		Int("listings", result.Listings).
		Int("cleaned", result.Cleaned).
		Bool("trained", result.Trained).
		Dur("duration", result.Duration)
	if result.Trained {
		event = event.
			Str("bundle_version", result.BundleVersion).
			Float64("mse", result.Evaluation.MSE).
			Float64("r_squared", result.Evaluation.RSquared)
	}
	event.Msg("collection run finished")
}
