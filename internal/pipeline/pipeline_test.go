// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/mfaucher/cinemetrics/internal/artifacts"
	"github.com/mfaucher/cinemetrics/internal/config"
	"github.com/mfaucher/cinemetrics/internal/models"
	tmdbmodels "github.com/mfaucher/cinemetrics/internal/models/tmdb"
)

// stubListings serves canned listings per genre name.
type stubListings struct {
	byGenre map[string][]models.Listing
}

func (s *stubListings) FetchCategory(_ context.Context, genreName string, _, _ int) []models.Listing {
	return s.byGenre[genreName]
}

// memoryDataset captures the persisted dataset.
type memoryDataset struct {
	records []models.MovieRecord
	calls   int
}

func (m *memoryDataset) ReplaceMovies(_ context.Context, records []models.MovieRecord) error {
	m.records = append([]models.MovieRecord(nil), records...)
	m.calls++
	return nil
}

// memoryBundles captures the saved bundle.
type memoryBundles struct {
	bundle *artifacts.Bundle
}

func (m *memoryBundles) Save(b *artifacts.Bundle) error {
	b.Version = "test-version"
	m.bundle = b
	return nil
}

// pipelineConfig returns a config with two genres and the standard
// thresholds.
func pipelineConfig() *config.Config {
	return &config.Config{
		TMDB: config.TMDBConfig{
			Genres:        map[string]int{"Action": 28, "Drama": 18},
			PagesPerGenre: 1,
			TopCastCount:  3,
		},
		Cleaning: config.CleaningConfig{MinBudget: 1000, MinRevenue: 1000, MaxROI: 10000},
		Training: config.TrainingConfig{
			TestFraction:   0.2,
			Seed:           42,
			Features:       []string{"director", "season", "actors", "studio", "genre"},
			ForestTrees:    10,
			ForestMaxDepth: 4,
			ForestMinLeaf:  1,
		},
	}
}

// syntheticDetails builds n valid movie detail records with varied
// categoricals and economics.
func syntheticDetails(n int) (map[string][]models.Listing, map[int64]*tmdbmodels.MovieDetails) {
	directors := []string{"Nolan", "Bigelow", "Villeneuve", "Gerwig"}
	studios := []string{"Warner", "A24", "Universal"}
	months := []string{"01", "04", "07", "10"}

	listings := map[string][]models.Listing{}
	details := map[int64]*tmdbmodels.MovieDetails{}

	for i := 0; i < n; i++ {
		id := int64(i + 1)
		genre := "Action"
		if i%2 == 1 {
			genre = "Drama"
		}
		title := fmt.Sprintf("Movie %d", id)
		listings[genre] = append(listings[genre], models.Listing{ID: id, Title: title, Genre: genre})

		budget := int64(100000 + i*10000)
		details[id] = &tmdbmodels.MovieDetails{
			ID:          id,
			Title:       title,
			Budget:      budget,
			Revenue:     budget * int64(2+i%4),
			ReleaseDate: fmt.Sprintf("20%02d-%s-15", 10+i%10, months[i%len(months)]),
			Credits: &tmdbmodels.Credits{
				Cast: []tmdbmodels.CastMember{{Name: fmt.Sprintf("Lead %d", i%5), Order: 0}},
				Crew: []tmdbmodels.CrewMember{{Name: directors[i%len(directors)], Job: "Director"}},
			},
			ProductionCompanies: []tmdbmodels.ProductionCompany{
				{ID: int64(i % len(studios)), Name: studios[i%len(studios)]},
			},
		}
	}
	return listings, details
}

func TestRunEndToEnd(t *testing.T) {
	listings, details := syntheticDetails(40)

	// One listing whose detail lookup fails: enriched with defaults,
	// removed by cleaning.
	listings["Action"] = append(listings["Action"], models.Listing{ID: 999, Title: "Ghost", Genre: "Action"})

	dataset := &memoryDataset{}
	bundles := &memoryBundles{}
	p := New(
		pipelineConfig(),
		&stubListings{byGenre: listings},
		NewEnricher(newStubFetcher(details), 3),
		dataset,
		bundles,
	)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}

	if result.Listings != 41 {
		t.Errorf("Listings = %d, want 41", result.Listings)
	}
	if result.Enriched != 41 {
		t.Errorf("Enriched = %d, want 41 (every listing yields a record)", result.Enriched)
	}
	if result.Cleaned != 40 {
		t.Errorf("Cleaned = %d, want 40 (default row removed)", result.Cleaned)
	}
	if !result.Trained {
		t.Fatal("Run() did not train")
	}
	if result.BundleVersion == "" {
		t.Error("BundleVersion empty")
	}
	if result.Evaluation == nil || result.Evaluation.TestSize != 8 {
		t.Errorf("Evaluation = %+v, want test size 8 (20%% of 40)", result.Evaluation)
	}

	// Persisted dataset is the cleaned, encoded one.
	if dataset.calls != 1 {
		t.Fatalf("ReplaceMovies calls = %d, want 1", dataset.calls)
	}
	for _, rec := range dataset.records {
		if rec.ID == 999 {
			t.Error("default row leaked into persisted dataset")
		}
		if rec.ROI <= 0 {
			t.Errorf("movie %d has ROI %v after cleaning", rec.ID, rec.ROI)
		}
	}

	// Bundle carries a model over budget + five encoded features.
	if bundles.bundle == nil {
		t.Fatal("no bundle saved")
	}
	if got := len(bundles.bundle.Model.Weights); got != 6 {
		t.Errorf("model weights = %d, want 6", got)
	}
	if got := len(bundles.bundle.Importances); got != 6 {
		t.Errorf("importances = %d, want 6", got)
	}
	for _, col := range config.CategoricalColumns {
		if bundles.bundle.Encoders.Encoder(col).Len() == 0 {
			t.Errorf("encoder %s is unfitted", col)
		}
	}
}

func TestRunIsDeterministic(t *testing.T) {
	listings, details := syntheticDetails(30)

	run := func() *artifacts.Bundle {
		t.Helper()
		bundles := &memoryBundles{}
		p := New(
			pipelineConfig(),
			&stubListings{byGenre: listings},
			NewEnricher(newStubFetcher(details), 3),
			&memoryDataset{},
			bundles,
		)
		if _, err := p.Run(context.Background()); err != nil {
			t.Fatalf("Run() = %v", err)
		}
		return bundles.bundle
	}

	a, b := run(), run()
	if a.Evaluation.MSE != b.Evaluation.MSE || a.Evaluation.RSquared != b.Evaluation.RSquared {
		t.Errorf("evaluations differ across identical runs: %+v vs %+v", a.Evaluation, b.Evaluation)
	}
	for i := range a.Model.Weights {
		if a.Model.Weights[i] != b.Model.Weights[i] {
			t.Errorf("weight %d differs: %v vs %v", i, a.Model.Weights[i], b.Model.Weights[i])
		}
	}
}

func TestRunFailsWhenNothingSurvivesCleaning(t *testing.T) {
	// All lookups fail, so every record carries default economics.
	p := New(
		pipelineConfig(),
		&stubListings{byGenre: map[string][]models.Listing{
			"Action": {{ID: 1, Title: "Ghost", Genre: "Action"}},
		}},
		NewEnricher(newStubFetcher(nil), 3),
		&memoryDataset{},
		&memoryBundles{},
	)
	if _, err := p.Run(context.Background()); err == nil {
		t.Error("Run() with empty cleaned dataset should fail")
	}
}

func TestRunSkipsTrainingOnTinyDataset(t *testing.T) {
	listings, details := syntheticDetails(5)

	dataset := &memoryDataset{}
	bundles := &memoryBundles{}
	p := New(
		pipelineConfig(),
		&stubListings{byGenre: listings},
		NewEnricher(newStubFetcher(details), 3),
		dataset,
		bundles,
	)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if result.Trained {
		t.Error("5-row dataset should not train a 7-parameter model")
	}
	if bundles.bundle != nil {
		t.Error("bundle saved despite skipped training")
	}
	if dataset.calls != 1 {
		t.Errorf("dataset persisted %d times, want 1 (persist even without training)", dataset.calls)
	}
}
