// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package regress

import (
	"fmt"
	"math"
)

// Evaluation holds the held-out metrics reported after a training run.
type Evaluation struct {
	MSE      float64 `json:"mse"`
	RSquared float64 `json:"r_squared"`
	TestSize int     `json:"test_size"`
}

// MeanSquaredError returns the mean of squared residuals.
func MeanSquaredError(actual, predicted []float64) (float64, error) {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0, fmt.Errorf("regress: %d actuals vs %d predictions", len(actual), len(predicted))
	}
	var sum float64
	for i := range actual {
		d := actual[i] - predicted[i]
		sum += d * d
	}
	return sum / float64(len(actual)), nil
}

// RSquared returns the coefficient of determination, 1 - SSres/SStot. When
// the actuals have zero variance the score is 0 unless the predictions are
// exact, matching the convention most ML toolkits use.
func RSquared(actual, predicted []float64) (float64, error) {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0, fmt.Errorf("regress: %d actuals vs %d predictions", len(actual), len(predicted))
	}

	var mean float64
	for _, v := range actual {
		mean += v
	}
	mean /= float64(len(actual))

	var ssRes, ssTot float64
	for i := range actual {
		r := actual[i] - predicted[i]
		ssRes += r * r
		t := actual[i] - mean
		ssTot += t * t
	}

	if ssTot == 0 {
		if ssRes == 0 {
			return 1, nil
		}
		return 0, nil
	}
	score := 1 - ssRes/ssTot
	if math.IsNaN(score) {
		return 0, fmt.Errorf("regress: R² is NaN (ssRes=%v ssTot=%v)", ssRes, ssTot)
	}
	return score, nil
}

// Evaluate computes both held-out metrics for a fitted model.
func Evaluate(m *LinearModel, xTest [][]float64, yTest []float64) (*Evaluation, error) {
	predicted, err := m.PredictAll(xTest)
	if err != nil {
		return nil, err
	}
	mse, err := MeanSquaredError(yTest, predicted)
	if err != nil {
		return nil, err
	}
	r2, err := RSquared(yTest, predicted)
	if err != nil {
		return nil, err
	}
	return &Evaluation{MSE: mse, RSquared: r2, TestSize: len(yTest)}, nil
}
