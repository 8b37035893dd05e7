// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

// Package models defines the shared data types of Cinemetrics: the
// MovieRecord dataset row, analytics aggregates, and the API envelope.
// TMDB wire types live in the models/tmdb subpackage.
package models
