// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

// Package logging provides centralized zerolog-based logging for Cinemetrics.
//
// A single global logger is configured once at startup and used through
// package-level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("genre", "Action").Int("pages", 3).Msg("fetching listings")
//	logging.Error().Err(err).Msg("detail fetch failed")
//
// Request-scoped loggers carry a correlation ID through context:
//
//	ctx = logging.ContextWithRequestID(ctx, id)
//	logging.Ctx(ctx).Info().Msg("request handled")
//
// An slog adapter is provided for libraries that speak log/slog (the suture
// supervisor via sutureslog).
//
// Always terminate log chains with .Msg() or .Send(); an unterminated chain
// is never emitted.
package logging
