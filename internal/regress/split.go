// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package regress

import (
	"fmt"
	"math/rand"
)

// TrainTestSplit shuffles the rows with a seeded PRNG and splits them into
// train and test partitions. The same seed and inputs always produce the
// same partitions, which keeps training runs reproducible. testFraction is
// the share of rows held out, in (0, 1); the test set gets
// round(n * testFraction) rows but never all of them.
func TrainTestSplit(x [][]float64, y []float64, testFraction float64, seed int64) (
	xTrain, xTest [][]float64, yTrain, yTest []float64, err error,
) {
	n := len(x)
	if n != len(y) {
		return nil, nil, nil, nil, fmt.Errorf("regress: %d rows of features for %d targets", n, len(y))
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, nil, nil, fmt.Errorf("regress: test fraction %v outside (0, 1)", testFraction)
	}
	if n < 2 {
		return nil, nil, nil, nil, fmt.Errorf("regress: %d rows cannot be split", n)
	}

	testSize := int(float64(n)*testFraction + 0.5)
	if testSize < 1 {
		testSize = 1
	}
	if testSize >= n {
		testSize = n - 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	trainSize := n - testSize
	xTrain = make([][]float64, 0, trainSize)
	yTrain = make([]float64, 0, trainSize)
	xTest = make([][]float64, 0, testSize)
	yTest = make([]float64, 0, testSize)

	for i, idx := range perm {
		if i < trainSize {
			xTrain = append(xTrain, x[idx])
			yTrain = append(yTrain, y[idx])
		} else {
			xTest = append(xTest, x[idx])
			yTest = append(yTest, y[idx])
		}
	}
	return xTrain, xTest, yTrain, yTest, nil
}
