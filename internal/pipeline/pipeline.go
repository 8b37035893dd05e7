// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mfaucher/cinemetrics/internal/artifacts"
	"github.com/mfaucher/cinemetrics/internal/config"
	"github.com/mfaucher/cinemetrics/internal/encode"
	"github.com/mfaucher/cinemetrics/internal/logging"
	"github.com/mfaucher/cinemetrics/internal/metrics"
	"github.com/mfaucher/cinemetrics/internal/models"
	"github.com/mfaucher/cinemetrics/internal/regress"
)

// ListingSource produces raw listings for one genre. Implemented by
// tmdb.Fetcher.
type ListingSource interface {
	FetchCategory(ctx context.Context, genreName string, genreID, pageCount int) []models.Listing
}

// DatasetStore persists the cleaned, encoded dataset. Implemented by
// database.DB.
type DatasetStore interface {
	ReplaceMovies(ctx context.Context, records []models.MovieRecord) error
}

// BundleStore persists training outputs. Implemented by artifacts.Store.
type BundleStore interface {
	Save(b *artifacts.Bundle) error
}

// Result summarizes one collection run.
type Result struct {
	Listings      int                 `json:"listings"`
	Enriched      int                 `json:"enriched"`
	Cleaned       int                 `json:"cleaned"`
	Trained       bool                `json:"trained"`
	BundleVersion string              `json:"bundle_version,omitempty"`
	Evaluation    *regress.Evaluation `json:"evaluation,omitempty"`
	Duration      time.Duration       `json:"duration"`
}

// Pipeline runs the full collection: fetch, enrich, clean, encode, train,
// persist.
type Pipeline struct {
	cfg      *config.Config
	listings ListingSource
	enricher *Enricher
	dataset  DatasetStore
	bundles  BundleStore
}

// New assembles a Pipeline from its stages.
func New(cfg *config.Config, listings ListingSource, enricher *Enricher, dataset DatasetStore, bundles BundleStore) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		listings: listings,
		enricher: enricher,
		dataset:  dataset,
		bundles:  bundles,
	}
}

// Run executes one collection run. The dataset is always persisted when
// cleaning leaves any rows; training additionally requires enough rows to
// determine the model weights, and is skipped (not failed) below that.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	defer func() { metrics.PipelineRunDuration.Observe(time.Since(start).Seconds()) }()

	result := &Result{}

	// Genres are fetched in name order so runs are deterministic for a
	// given API state.
	genreNames := make([]string, 0, len(p.cfg.TMDB.Genres))
	for name := range p.cfg.TMDB.Genres {
		genreNames = append(genreNames, name)
	}
	sort.Strings(genreNames)

	var listings []models.Listing
	for _, name := range genreNames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		listings = append(listings, p.listings.FetchCategory(ctx, name, p.cfg.TMDB.Genres[name], p.cfg.TMDB.PagesPerGenre)...)
	}
	result.Listings = len(listings)
	metrics.RecordStage("fetched", len(listings))

	records := p.enricher.Enrich(ctx, listings)
	result.Enriched = len(records)
	metrics.RecordStage("enriched", len(records))

	cleaned := Clean(records, &p.cfg.Cleaning)
	result.Cleaned = len(cleaned)
	metrics.RecordStage("cleaned", len(cleaned))

	logging.Info().
		Int("listings", result.Listings).
		Int("enriched", result.Enriched).
		Int("cleaned", result.Cleaned).
		Msg("dataset collected")

	if len(cleaned) == 0 {
		return nil, fmt.Errorf("no records survived cleaning (from %d listings)", result.Listings)
	}

	set := encode.NewSet()
	set.FitApply(cleaned)

	if err := p.dataset.ReplaceMovies(ctx, cleaned); err != nil {
		return nil, fmt.Errorf("failed to persist dataset: %w", err)
	}

	featureNames := FeatureNames(&p.cfg.Training)
	if len(cleaned) <= len(featureNames)+1 {
		logging.Warn().
			Int("rows", len(cleaned)).
			Int("features", len(featureNames)).
			Msg("too few rows to train, dataset persisted without a model")
		result.Duration = time.Since(start)
		return result, nil
	}

	bundle, eval, err := p.train(cleaned, set, featureNames)
	if err != nil {
		return nil, err
	}
	if err := p.bundles.Save(bundle); err != nil {
		return nil, fmt.Errorf("failed to persist model bundle: %w", err)
	}

	result.Trained = true
	result.BundleVersion = bundle.Version
	result.Evaluation = eval
	result.Duration = time.Since(start)

	logging.Info().
		Str("bundle_version", bundle.Version).
		Float64("mse", eval.MSE).
		Float64("r_squared", eval.RSquared).
		Dur("duration", result.Duration).
		Msg("collection run complete")

	return result, nil
}

// train fits the linear ROI model and the importance forest on the cleaned,
// encoded dataset.
func (p *Pipeline) train(cleaned []models.MovieRecord, set *encode.Set, featureNames []string) (*artifacts.Bundle, *regress.Evaluation, error) {
	x, y := FeatureMatrix(cleaned, &p.cfg.Training)

	xTrain, xTest, yTrain, yTest, err := regress.TrainTestSplit(x, y, p.cfg.Training.TestFraction, p.cfg.Training.Seed)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to split dataset: %w", err)
	}

	model, err := regress.FitLinear(xTrain, yTrain, featureNames)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fit model: %w", err)
	}

	eval, err := regress.Evaluate(model, xTest, yTest)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to evaluate model: %w", err)
	}

	// The forest sees the full dataset: importances describe the data, not
	// held-out performance.
	forest, err := regress.FitForest(x, y, featureNames, regress.ForestParams{
		Trees:    p.cfg.Training.ForestTrees,
		MaxDepth: p.cfg.Training.ForestMaxDepth,
		MinLeaf:  p.cfg.Training.ForestMinLeaf,
		Seed:     p.cfg.Training.Seed,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fit importance forest: %w", err)
	}

	return &artifacts.Bundle{
		Model:       model,
		Encoders:    set,
		Evaluation:  eval,
		Importances: forest.Importances(),
	}, eval, nil
}
