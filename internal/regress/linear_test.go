// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package regress

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance*(1+math.Abs(a)+math.Abs(b))
}

func TestFitLinearRecoversExactRelationship(t *testing.T) {
	// y = 2*x0 - 3*x1 + 5, noise-free.
	x := [][]float64{
		{1, 0}, {0, 1}, {1, 1}, {2, 1}, {3, 4}, {5, 2}, {0, 0},
	}
	y := make([]float64, len(x))
	for i := range x {
		y[i] = 2*x[i][0] - 3*x[i][1] + 5
	}

	m, err := FitLinear(x, y, []string{"x0", "x1"})
	if err != nil {
		t.Fatalf("FitLinear() = %v", err)
	}
	if !almostEqual(m.Weights[0], 2) || !almostEqual(m.Weights[1], -3) {
		t.Errorf("Weights = %v, want [2 -3]", m.Weights)
	}
	if !almostEqual(m.Intercept, 5) {
		t.Errorf("Intercept = %v, want 5", m.Intercept)
	}

	pred, err := m.Predict([]float64{4, 2})
	if err != nil {
		t.Fatalf("Predict() = %v", err)
	}
	if !almostEqual(pred, 2*4-3*2+5) {
		t.Errorf("Predict([4 2]) = %v, want 7", pred)
	}
}

func TestFitLinearValidation(t *testing.T) {
	tests := []struct {
		name  string
		x     [][]float64
		y     []float64
		names []string
	}{
		{"empty", nil, nil, nil},
		{"row mismatch", [][]float64{{1}}, []float64{1, 2}, []string{"a"}},
		{"name mismatch", [][]float64{{1, 2}, {3, 4}, {5, 6}}, []float64{1, 2, 3}, []string{"a"}},
		{"too few rows", [][]float64{{1, 2}, {3, 4}}, []float64{1, 2}, []string{"a", "b"}},
		{"ragged row", [][]float64{{1, 2}, {3}, {5, 6}, {7, 8}}, []float64{1, 2, 3, 4}, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FitLinear(tt.x, tt.y, tt.names); err == nil {
				t.Error("FitLinear() should fail")
			}
		})
	}
}

func TestFitLinearCollinearColumns(t *testing.T) {
	// x1 = 2*x0 exactly; the ridge retry must still produce a fit that
	// predicts the training data.
	x := [][]float64{{1, 2}, {2, 4}, {3, 6}, {4, 8}}
	y := []float64{3, 5, 7, 9} // y = 2*x0 + 1

	m, err := FitLinear(x, y, []string{"x0", "x1"})
	if err != nil {
		t.Fatalf("FitLinear() on collinear data = %v", err)
	}
	for i := range x {
		pred, err := m.Predict(x[i])
		if err != nil {
			t.Fatalf("Predict() = %v", err)
		}
		if math.Abs(pred-y[i]) > 1e-3 {
			t.Errorf("Predict(%v) = %v, want %v", x[i], pred, y[i])
		}
	}
}

func TestPredictDimensionCheck(t *testing.T) {
	m := &LinearModel{FeatureNames: []string{"a", "b"}, Weights: []float64{1, 2}}
	if _, err := m.Predict([]float64{1}); err == nil {
		t.Error("Predict with wrong dimension should fail")
	}
}

func TestSolveCholeskyKnownSystem(t *testing.T) {
	// A = [[4,2],[2,3]], b = [10, 9] -> w = [1.5, 2].
	a := [][]float64{{4, 2}, {2, 3}}
	b := []float64{10, 9}
	w, err := solveCholesky(a, b)
	if err != nil {
		t.Fatalf("solveCholesky() = %v", err)
	}
	if !almostEqual(w[0], 1.5) || !almostEqual(w[1], 2) {
		t.Errorf("w = %v, want [1.5 2]", w)
	}
}

func TestSolveCholeskyRejectsIndefinite(t *testing.T) {
	a := [][]float64{{0, 0}, {0, 0}}
	if _, err := solveCholesky(a, []float64{1, 1}); err == nil {
		t.Error("solveCholesky on a zero matrix should fail")
	}
}
