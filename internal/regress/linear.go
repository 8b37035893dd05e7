// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

/*
Package regress implements the small amount of numerics the pipeline needs:
ordinary least squares for ROI prediction and year trends, a random-forest
regressor for feature importances, a seeded train/test split and the two
evaluation metrics reported after training.

Everything here is deliberately dependency-free dense math on float64
slices. The feature matrices are tiny (hundreds of rows, single-digit
columns), so normal equations with a Cholesky solve are exact enough and
keep the model trivially serializable.
*/
package regress

import (
	"errors"
	"fmt"
	"math"
)

// ErrSingular reports a normal-equations matrix that could not be factorized
// even after ridge stabilization.
var ErrSingular = errors.New("regress: singular design matrix")

// LinearModel is an ordinary least squares fit: one weight per feature plus
// an intercept. The zero value is unusable; call FitLinear.
type LinearModel struct {
	// FeatureNames records the column order the weights were fit in.
	// Predict inputs must follow the same order.
	FeatureNames []string  `json:"feature_names"`
	Weights      []float64 `json:"weights"`
	Intercept    float64   `json:"intercept"`
}

// FitLinear fits ordinary least squares via the normal equations
// XᵀXw = Xᵀy with an intercept column appended internally. X is row-major:
// X[i] is one observation. Needs more rows than features; collinear columns
// are handled by retrying the factorization with a small ridge term.
func FitLinear(x [][]float64, y []float64, featureNames []string) (*LinearModel, error) {
	n := len(x)
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("regress: %d rows of features for %d targets", n, len(y))
	}
	p := len(x[0])
	if p == 0 {
		return nil, errors.New("regress: no feature columns")
	}
	if len(featureNames) != p {
		return nil, fmt.Errorf("regress: %d feature names for %d columns", len(featureNames), p)
	}
	if n <= p {
		return nil, fmt.Errorf("regress: %d observations cannot determine %d weights", n, p+1)
	}
	for i := range x {
		if len(x[i]) != p {
			return nil, fmt.Errorf("regress: row %d has %d columns, want %d", i, len(x[i]), p)
		}
	}

	// Build XᵀX and Xᵀy with the intercept as column p.
	dim := p + 1
	ata := make([][]float64, dim)
	for i := range ata {
		ata[i] = make([]float64, dim)
	}
	aty := make([]float64, dim)

	for r := 0; r < n; r++ {
		for i := 0; i < dim; i++ {
			xi := 1.0
			if i < p {
				xi = x[r][i]
			}
			aty[i] += xi * y[r]
			for j := i; j < dim; j++ {
				xj := 1.0
				if j < p {
					xj = x[r][j]
				}
				ata[i][j] += xi * xj
			}
		}
	}
	// Mirror the upper triangle.
	for i := 1; i < dim; i++ {
		for j := 0; j < i; j++ {
			ata[i][j] = ata[j][i]
		}
	}

	w, err := solveCholesky(ata, aty)
	if err != nil {
		// Retry with ridge stabilization on near-singular systems.
		for i := 0; i < dim; i++ {
			ata[i][i] += 1e-8
		}
		if w, err = solveCholesky(ata, aty); err != nil {
			return nil, err
		}
	}

	names := make([]string, p)
	copy(names, featureNames)

	return &LinearModel{
		FeatureNames: names,
		Weights:      w[:p],
		Intercept:    w[p],
	}, nil
}

// Predict returns the fitted value for one observation. The features must be
// in FeatureNames order.
func (m *LinearModel) Predict(features []float64) (float64, error) {
	if len(features) != len(m.Weights) {
		return 0, fmt.Errorf("regress: %d features, model has %d weights", len(features), len(m.Weights))
	}
	pred := m.Intercept
	for i, w := range m.Weights {
		pred += w * features[i]
	}
	return pred, nil
}

// PredictAll returns fitted values for a batch of observations.
func (m *LinearModel) PredictAll(x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i := range x {
		pred, err := m.Predict(x[i])
		if err != nil {
			return nil, err
		}
		out[i] = pred
	}
	return out, nil
}

// solveCholesky solves Aw = b for a symmetric positive-definite A using a
// Cholesky factorization A = LLᵀ followed by forward and back substitution.
// The inputs are not modified.
func solveCholesky(a [][]float64, b []float64) ([]float64, error) {
	n := len(a)

	l := make([][]float64, n)
	for i := range l {
		l[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := a[i][j]
			for k := 0; k < j; k++ {
				sum -= l[i][k] * l[j][k]
			}
			if i == j {
				if sum <= 0 || math.IsNaN(sum) {
					return nil, fmt.Errorf("%w: non-positive pivot at %d", ErrSingular, i)
				}
				l[i][i] = math.Sqrt(sum)
			} else {
				l[i][j] = sum / l[j][j]
			}
		}
	}

	// Forward substitution: Lz = b.
	z := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := b[i]
		for k := 0; k < i; k++ {
			sum -= l[i][k] * z[k]
		}
		z[i] = sum / l[i][i]
	}

	// Back substitution: Lᵀw = z.
	w := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := z[i]
		for k := i + 1; k < n; k++ {
			sum -= l[k][i] * w[k]
		}
		w[i] = sum / l[i][i]
	}
	return w, nil
}
