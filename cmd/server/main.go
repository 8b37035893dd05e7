// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

// Command server runs the dashboard API over a previously collected
// dataset. It serves analytics, CSV export and ROI prediction; it never
// talks to TMDB itself — collection is the collect binary's job.
package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/mfaucher/cinemetrics/internal/api"
	"github.com/mfaucher/cinemetrics/internal/artifacts"
	"github.com/mfaucher/cinemetrics/internal/config"
	"github.com/mfaucher/cinemetrics/internal/database"
	"github.com/mfaucher/cinemetrics/internal/logging"
	"github.com/mfaucher/cinemetrics/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("artifacts_dir", cfg.Artifacts.Dir).
		Int("port", cfg.Server.Port).
		Msg("starting cinemetrics server")

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
	if bundle, err := bundles.Load(); err == nil {
		logging.Info().Str("bundle_version", bundle.Version).Msg("model bundle loaded")
	} else if errors.Is(err, artifacts.ErrNoBundle) {
		logging.Warn().Msg("no trained model yet, predict endpoint will return 503")
	} else {
		logging.Fatal().Err(err).Msg("failed to load model bundle")
	}

	handler := api.NewHandler(db, bundles, cfg)
	router := api.NewRouter(handler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.Add(supervisor.NewHTTPService(&cfg.Server, router))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("supervisor exited with error")
	}
	logging.Info().Msg("server stopped")
}
