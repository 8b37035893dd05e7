// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package pipeline

import (
	"github.com/mfaucher/cinemetrics/internal/config"
	"github.com/mfaucher/cinemetrics/internal/models"
)

// Clean filters records to economically meaningful rows and computes ROI on
// the survivors:
//
//   - budget strictly above MinBudget (placeholder near-zero budgets out)
//   - revenue strictly above MinRevenue
//   - ROI = (revenue - budget) / budget at most MaxROI (data-entry outliers out)
//
// Rows built entirely from defaults fail the budget filter, so failed detail
// lookups never reach training. Cleaning is idempotent: every survivor
// re-passes all three filters with the same ROI. Returns a fresh slice; the
// input is not modified.
func Clean(records []models.MovieRecord, cfg *config.CleaningConfig) []models.MovieRecord {
	cleaned := make([]models.MovieRecord, 0, len(records))
	for _, rec := range records {
		if rec.Budget <= cfg.MinBudget || rec.Revenue <= cfg.MinRevenue {
			continue
		}
		roi := float64(rec.Revenue-rec.Budget) / float64(rec.Budget)
		if roi > cfg.MaxROI {
			continue
		}
		rec.ROI = roi
		cleaned = append(cleaned, rec)
	}
	return cleaned
}
