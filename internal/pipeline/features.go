// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package pipeline

import (
	"github.com/mfaucher/cinemetrics/internal/config"
	"github.com/mfaucher/cinemetrics/internal/models"
)

// FeatureNames returns the model's feature column order: raw budget first,
// then the encoded form of each configured categorical column.
func FeatureNames(cfg *config.TrainingConfig) []string {
	names := make([]string, 0, 1+len(cfg.Features))
	names = append(names, "budget")
	for _, col := range cfg.Features {
		names = append(names, col+"_encoded")
	}
	return names
}

// FeatureMatrix builds the design matrix and target vector for training.
// Records must already be cleaned (ROI computed) and encoded.
func FeatureMatrix(records []models.MovieRecord, cfg *config.TrainingConfig) (x [][]float64, y []float64) {
	x = make([][]float64, len(records))
	y = make([]float64, len(records))
	for i := range records {
		row := make([]float64, 0, 1+len(cfg.Features))
		row = append(row, float64(records[i].Budget))
		for _, col := range cfg.Features {
			code, _ := records[i].Encoded(col)
			row = append(row, float64(code))
		}
		x[i] = row
		y[i] = records[i].ROI
	}
	return x, y
}
