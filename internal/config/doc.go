// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

// Package config loads and validates Cinemetrics configuration.
//
// Configuration is layered via Koanf v2: built-in defaults, then an optional
// YAML file (config.yaml or CONFIG_PATH), then environment variables. Env
// vars map section-first onto config paths, e.g. TMDB_API_KEY -> tmdb.api_key.
//
// The cleaner's economic thresholds (cleaning.min_budget, cleaning.min_revenue,
// cleaning.max_roi) and the training split (training.test_fraction,
// training.seed) are deliberately configuration rather than constants.
package config
