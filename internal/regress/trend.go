// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package regress

import (
	"errors"
	"fmt"
)

// ErrInsufficientData reports a trend fit over fewer than two points. The
// analytics layer translates it into a null slope and projection rather than
// a request failure.
var ErrInsufficientData = errors.New("regress: fewer than two points")

// Trend is a simple y = slope*x + intercept line fit over a yearly series,
// with a one-step-ahead projection.
type Trend struct {
	Slope      float64
	Intercept  float64
	Projection float64 // fitted value at max(x) + 1
}

// FitTrend fits a least-squares line through (x, y) pairs and projects one
// step past the largest x. Needs at least two points with distinct x values.
func FitTrend(xs, ys []float64) (*Trend, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("regress: %d x values for %d y values", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return nil, ErrInsufficientData
	}

	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX, maxX float64
	maxX = xs[0]
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
		if xs[i] > maxX {
			maxX = xs[i]
		}
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		// All x identical; a line through them is undefined.
		return nil, ErrInsufficientData
	}

	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	return &Trend{
		Slope:      slope,
		Intercept:  intercept,
		Projection: slope*(maxX+1) + intercept,
	}, nil
}
