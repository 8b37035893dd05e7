// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package regress

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// ForestParams configures a random forest fit.
type ForestParams struct {
	Trees    int   // number of trees
	MaxDepth int   // maximum tree depth
	MinLeaf  int   // minimum samples per leaf
	Seed     int64 // PRNG seed, for reproducible fits
}

// FeatureImportance is the normalized impurity reduction attributed to one
// feature across the forest.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Forest is a random-forest regressor. Its single job in the pipeline is
// ranking which features actually drive ROI, so only the fit and the
// importances are exposed; per-row prediction stays with the linear model.
type Forest struct {
	trees       []*treeNode
	importances []float64
	features    []string
}

type treeNode struct {
	feature   int
	threshold float64
	value     float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) isLeaf() bool { return n.left == nil }

// FitForest trains the forest on the full dataset. Each tree sees a
// bootstrap sample and considers a random ceil(sqrt(p)) feature subset per
// split.
func FitForest(x [][]float64, y []float64, featureNames []string, params ForestParams) (*Forest, error) {
	n := len(x)
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("regress: %d rows of features for %d targets", n, len(y))
	}
	p := len(x[0])
	if len(featureNames) != p {
		return nil, fmt.Errorf("regress: %d feature names for %d columns", len(featureNames), p)
	}
	if params.Trees < 1 {
		return nil, fmt.Errorf("regress: %d trees requested", params.Trees)
	}
	if params.MaxDepth < 1 {
		params.MaxDepth = 10
	}
	if params.MinLeaf < 1 {
		params.MinLeaf = 1
	}

	rng := rand.New(rand.NewSource(params.Seed))
	mtry := int(math.Ceil(math.Sqrt(float64(p))))

	f := &Forest{
		trees:       make([]*treeNode, 0, params.Trees),
		importances: make([]float64, p),
		features:    append([]string(nil), featureNames...),
	}

	indices := make([]int, n)
	for t := 0; t < params.Trees; t++ {
		for i := range indices {
			indices[i] = rng.Intn(n)
		}
		tree := f.growTree(x, y, indices, 0, mtry, params, rng)
		f.trees = append(f.trees, tree)
	}

	// Normalize accumulated impurity reductions to sum to 1.
	var total float64
	for _, v := range f.importances {
		total += v
	}
	if total > 0 {
		for i := range f.importances {
			f.importances[i] /= total
		}
	}
	return f, nil
}

// Importances returns features ranked by normalized importance, descending.
func (f *Forest) Importances() []FeatureImportance {
	out := make([]FeatureImportance, len(f.features))
	for i, name := range f.features {
		out[i] = FeatureImportance{Feature: name, Importance: f.importances[i]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Importance > out[j].Importance
	})
	return out
}

// Predict returns the forest mean for one observation.
func (f *Forest) Predict(features []float64) (float64, error) {
	if len(features) != len(f.features) {
		return 0, fmt.Errorf("regress: %d features, forest fit on %d", len(features), len(f.features))
	}
	var sum float64
	for _, tree := range f.trees {
		node := tree
		for !node.isLeaf() {
			if features[node.feature] <= node.threshold {
				node = node.left
			} else {
				node = node.right
			}
		}
		sum += node.value
	}
	return sum / float64(len(f.trees)), nil
}

func (f *Forest) growTree(x [][]float64, y []float64, indices []int, depth, mtry int, params ForestParams, rng *rand.Rand) *treeNode {
	mean, sse := meanSSE(y, indices)

	if depth >= params.MaxDepth || len(indices) < 2*params.MinLeaf || sse == 0 {
		return &treeNode{value: mean}
	}

	bestFeature := -1
	var bestThreshold, bestGain float64
	var bestLeft, bestRight []int

	for _, feat := range sampleFeatures(len(x[0]), mtry, rng) {
		sorted := append([]int(nil), indices...)
		sort.Slice(sorted, func(i, j int) bool {
			return x[sorted[i]][feat] < x[sorted[j]][feat]
		})

		for split := params.MinLeaf; split <= len(sorted)-params.MinLeaf; split++ {
			lo, hi := x[sorted[split-1]][feat], x[sorted[split]][feat]
			if lo == hi {
				continue
			}
			_, leftSSE := meanSSE(y, sorted[:split])
			_, rightSSE := meanSSE(y, sorted[split:])
			gain := sse - leftSSE - rightSSE
			if gain > bestGain {
				bestGain = gain
				bestFeature = feat
				bestThreshold = (lo + hi) / 2
				bestLeft = append([]int(nil), sorted[:split]...)
				bestRight = append([]int(nil), sorted[split:]...)
			}
		}
	}

	if bestFeature < 0 {
		return &treeNode{value: mean}
	}

	f.importances[bestFeature] += bestGain

	return &treeNode{
		feature:   bestFeature,
		threshold: bestThreshold,
		left:      f.growTree(x, y, bestLeft, depth+1, mtry, params, rng),
		right:     f.growTree(x, y, bestRight, depth+1, mtry, params, rng),
	}
}

// meanSSE returns the mean and sum of squared errors of y over the given
// indices.
func meanSSE(y []float64, indices []int) (mean, sse float64) {
	if len(indices) == 0 {
		return 0, 0
	}
	for _, i := range indices {
		mean += y[i]
	}
	mean /= float64(len(indices))
	for _, i := range indices {
		d := y[i] - mean
		sse += d * d
	}
	return mean, sse
}

// sampleFeatures picks mtry distinct feature indices.
func sampleFeatures(p, mtry int, rng *rand.Rand) []int {
	if mtry >= p {
		out := make([]int, p)
		for i := range out {
			out[i] = i
		}
		return out
	}
	return rng.Perm(p)[:mtry]
}
