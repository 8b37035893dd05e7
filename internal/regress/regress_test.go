// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package regress

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestTrainTestSplitDeterministic(t *testing.T) {
	x := make([][]float64, 10)
	y := make([]float64, 10)
	for i := range x {
		x[i] = []float64{float64(i)}
		y[i] = float64(i)
	}

	xTr1, xTe1, yTr1, yTe1, err := TrainTestSplit(x, y, 0.2, 42)
	if err != nil {
		t.Fatalf("TrainTestSplit() = %v", err)
	}
	xTr2, xTe2, yTr2, yTe2, err := TrainTestSplit(x, y, 0.2, 42)
	if err != nil {
		t.Fatalf("TrainTestSplit() = %v", err)
	}

	if !reflect.DeepEqual(xTr1, xTr2) || !reflect.DeepEqual(xTe1, xTe2) ||
		!reflect.DeepEqual(yTr1, yTr2) || !reflect.DeepEqual(yTe1, yTe2) {
		t.Error("same seed produced different splits")
	}

	if len(xTe1) != 2 || len(xTr1) != 8 {
		t.Errorf("split sizes = %d/%d, want 8/2", len(xTr1), len(xTe1))
	}

	// Rows stay paired with their targets.
	for i := range xTe1 {
		if xTe1[i][0] != yTe1[i] {
			t.Errorf("test row %d decoupled from target: x=%v y=%v", i, xTe1[i], yTe1[i])
		}
	}
	for i := range xTr1 {
		if xTr1[i][0] != yTr1[i] {
			t.Errorf("train row %d decoupled from target: x=%v y=%v", i, xTr1[i], yTr1[i])
		}
	}
}

func TestTrainTestSplitSeedChangesPartition(t *testing.T) {
	x := make([][]float64, 20)
	y := make([]float64, 20)
	for i := range x {
		x[i] = []float64{float64(i)}
		y[i] = float64(i)
	}

	_, xTe1, _, _, err := TrainTestSplit(x, y, 0.3, 1)
	if err != nil {
		t.Fatalf("TrainTestSplit() = %v", err)
	}
	_, xTe2, _, _, err := TrainTestSplit(x, y, 0.3, 2)
	if err != nil {
		t.Fatalf("TrainTestSplit() = %v", err)
	}
	if reflect.DeepEqual(xTe1, xTe2) {
		t.Error("different seeds produced identical test partitions")
	}
}

func TestTrainTestSplitValidation(t *testing.T) {
	x := [][]float64{{1}, {2}}
	y := []float64{1, 2}

	if _, _, _, _, err := TrainTestSplit(x, y, 0, 1); err == nil {
		t.Error("zero test fraction should fail")
	}
	if _, _, _, _, err := TrainTestSplit(x, y, 1, 1); err == nil {
		t.Error("test fraction of 1 should fail")
	}
	if _, _, _, _, err := TrainTestSplit(x[:1], y[:1], 0.5, 1); err == nil {
		t.Error("single-row split should fail")
	}
	if _, _, _, _, err := TrainTestSplit(x, y[:1], 0.5, 1); err == nil {
		t.Error("row/target mismatch should fail")
	}
}

func TestMeanSquaredError(t *testing.T) {
	mse, err := MeanSquaredError([]float64{1, 2, 3}, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("MeanSquaredError() = %v", err)
	}
	if mse != 0 {
		t.Errorf("MSE of perfect predictions = %v, want 0", mse)
	}

	mse, err = MeanSquaredError([]float64{0, 0}, []float64{3, 1})
	if err != nil {
		t.Fatalf("MeanSquaredError() = %v", err)
	}
	if mse != 5 {
		t.Errorf("MSE = %v, want 5", mse)
	}

	if _, err := MeanSquaredError(nil, nil); err == nil {
		t.Error("empty inputs should fail")
	}
}

func TestRSquared(t *testing.T) {
	// Perfect predictions score 1.
	r2, err := RSquared([]float64{1, 2, 3}, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("RSquared() = %v", err)
	}
	if r2 != 1 {
		t.Errorf("R² of perfect predictions = %v, want 1", r2)
	}

	// Predicting the mean scores 0.
	r2, err = RSquared([]float64{1, 2, 3}, []float64{2, 2, 2})
	if err != nil {
		t.Fatalf("RSquared() = %v", err)
	}
	if r2 != 0 {
		t.Errorf("R² of mean predictions = %v, want 0", r2)
	}

	// Zero-variance actuals, imperfect predictions.
	r2, err = RSquared([]float64{5, 5}, []float64{4, 6})
	if err != nil {
		t.Fatalf("RSquared() = %v", err)
	}
	if r2 != 0 {
		t.Errorf("R² with zero-variance actuals = %v, want 0", r2)
	}
}

func TestFitTrend(t *testing.T) {
	// Exact line: y = 0.5*x + 1 over x = 2015..2018.
	xs := []float64{2015, 2016, 2017, 2018}
	ys := make([]float64, len(xs))
	for i := range xs {
		ys[i] = 0.5*xs[i] + 1
	}

	trend, err := FitTrend(xs, ys)
	if err != nil {
		t.Fatalf("FitTrend() = %v", err)
	}
	if !almostEqual(trend.Slope, 0.5) {
		t.Errorf("Slope = %v, want 0.5", trend.Slope)
	}
	wantProjection := 0.5*2019 + 1
	if !almostEqual(trend.Projection, wantProjection) {
		t.Errorf("Projection = %v, want %v", trend.Projection, wantProjection)
	}
}

func TestFitTrendInsufficientData(t *testing.T) {
	if _, err := FitTrend([]float64{2020}, []float64{1.5}); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("single point error = %v, want ErrInsufficientData", err)
	}
	if _, err := FitTrend(nil, nil); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("empty series error = %v, want ErrInsufficientData", err)
	}
	// Duplicate x values only.
	if _, err := FitTrend([]float64{2020, 2020}, []float64{1, 2}); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("degenerate x error = %v, want ErrInsufficientData", err)
	}
}

func TestForestImportancesRankDominantFeature(t *testing.T) {
	// x0 drives y; x1 is noise-free but irrelevant.
	x := make([][]float64, 60)
	y := make([]float64, 60)
	for i := range x {
		x[i] = []float64{float64(i), float64(i % 3)}
		y[i] = 10 * float64(i)
	}

	forest, err := FitForest(x, y, []string{"signal", "noise"}, ForestParams{
		Trees:    20,
		MaxDepth: 6,
		MinLeaf:  2,
		Seed:     42,
	})
	if err != nil {
		t.Fatalf("FitForest() = %v", err)
	}

	imps := forest.Importances()
	if imps[0].Feature != "signal" {
		t.Errorf("top feature = %q, want signal", imps[0].Feature)
	}

	var total float64
	for _, imp := range imps {
		if imp.Importance < 0 {
			t.Errorf("negative importance for %q: %v", imp.Feature, imp.Importance)
		}
		total += imp.Importance
	}
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("importances sum = %v, want 1", total)
	}
}

func TestForestPredictTracksTarget(t *testing.T) {
	x := make([][]float64, 40)
	y := make([]float64, 40)
	for i := range x {
		x[i] = []float64{float64(i)}
		y[i] = float64(i) * 2
	}

	forest, err := FitForest(x, y, []string{"x"}, ForestParams{Trees: 30, MaxDepth: 8, MinLeaf: 1, Seed: 7})
	if err != nil {
		t.Fatalf("FitForest() = %v", err)
	}

	pred, err := forest.Predict([]float64{20})
	if err != nil {
		t.Fatalf("Predict() = %v", err)
	}
	if math.Abs(pred-40) > 10 {
		t.Errorf("Predict(20) = %v, want near 40", pred)
	}
}

func TestForestValidation(t *testing.T) {
	if _, err := FitForest(nil, nil, nil, ForestParams{Trees: 1}); err == nil {
		t.Error("empty fit should fail")
	}
	if _, err := FitForest([][]float64{{1}}, []float64{1}, []string{"a"}, ForestParams{Trees: 0}); err == nil {
		t.Error("zero trees should fail")
	}
}
