// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package artifacts

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/goccy/go-json"

	"github.com/mfaucher/cinemetrics/internal/config"
	"github.com/mfaucher/cinemetrics/internal/encode"
	"github.com/mfaucher/cinemetrics/internal/models"
	"github.com/mfaucher/cinemetrics/internal/regress"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(&config.ArtifactsConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewStore() = %v", err)
	}
	return store
}

func testBundle() *Bundle {
	set := encode.NewSet()
	set.Fit([]models.MovieRecord{
		{Genre: "Action", Director: "Nolan", Season: "Summer", Actors: "A, B", Studio: "Warner"},
		{Genre: "Drama", Director: "Bigelow", Season: "Winter", Actors: "C", Studio: "A24"},
	})

	return &Bundle{
		Model: &regress.LinearModel{
			FeatureNames: []string{"budget", "director_encoded", "season_encoded"},
			Weights:      []float64{0.001, 0.5, -0.2},
			Intercept:    1.5,
		},
		Encoders: set,
		Evaluation: &regress.Evaluation{
			MSE:      0.75,
			RSquared: 0.42,
			TestSize: 20,
		},
		Importances: []regress.FeatureImportance{
			{Feature: "budget", Importance: 0.6},
			{Feature: "director_encoded", Importance: 0.4},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	saved := testBundle()
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save() = %v", err)
	}
	if saved.Version == "" {
		t.Fatal("Save() left Version empty")
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}

	if loaded.Version != saved.Version {
		t.Errorf("Version = %q, want %q", loaded.Version, saved.Version)
	}
	if !reflect.DeepEqual(loaded.Model, saved.Model) {
		t.Errorf("Model = %+v, want %+v", loaded.Model, saved.Model)
	}
	if !reflect.DeepEqual(loaded.Evaluation, saved.Evaluation) {
		t.Errorf("Evaluation = %+v, want %+v", loaded.Evaluation, saved.Evaluation)
	}
	if !reflect.DeepEqual(loaded.Importances, saved.Importances) {
		t.Errorf("Importances = %+v, want %+v", loaded.Importances, saved.Importances)
	}

	// Encoders survive with identical vocabularies and codes.
	for _, col := range config.CategoricalColumns {
		want := saved.Encoders.Encoder(col).Classes()
		got := loaded.Encoders.Encoder(col).Classes()
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s classes = %v, want %v", col, got, want)
		}
	}
}

func TestLoadWithoutBundle(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Load(); !errors.Is(err, ErrNoBundle) {
		t.Errorf("Load() on empty store = %v, want ErrNoBundle", err)
	}
}

func TestSaveMakesNewVersionCurrent(t *testing.T) {
	store := newTestStore(t)

	first := testBundle()
	if err := store.Save(first); err != nil {
		t.Fatalf("first Save() = %v", err)
	}
	second := testBundle()
	second.Evaluation.RSquared = 0.9
	if err := store.Save(second); err != nil {
		t.Fatalf("second Save() = %v", err)
	}

	if first.Version == second.Version {
		t.Fatal("two saves produced the same version")
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if loaded.Version != second.Version {
		t.Errorf("current version = %q, want %q", loaded.Version, second.Version)
	}
	if loaded.Evaluation.RSquared != 0.9 {
		t.Errorf("RSquared = %v, want 0.9", loaded.Evaluation.RSquared)
	}

	// Older versions stay loadable.
	old, err := store.LoadVersion(first.Version)
	if err != nil {
		t.Fatalf("LoadVersion(first) = %v", err)
	}
	if old.Version != first.Version {
		t.Errorf("old version = %q, want %q", old.Version, first.Version)
	}
}

func TestLoadRejectsVersionMismatch(t *testing.T) {
	store := newTestStore(t)

	b := testBundle()
	if err := store.Save(b); err != nil {
		t.Fatalf("Save() = %v", err)
	}

	// Corrupt one encoder file with a foreign version stamp.
	path := filepath.Join(store.dir, b.Version, "encoders", "genre.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() = %v", err)
	}
	var wrapper versioned
	if err := json.Unmarshal(data, &wrapper); err != nil {
		t.Fatalf("Unmarshal() = %v", err)
	}
	wrapper.Version = "someone-elses-version"
	tampered, err := json.Marshal(wrapper)
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}
	if err := os.WriteFile(path, tampered, 0o640); err != nil {
		t.Fatalf("WriteFile() = %v", err)
	}

	if _, err := store.Load(); err == nil {
		t.Error("Load() of mixed-version bundle should fail")
	}
}

func TestSaveRejectsIncompleteBundle(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(&Bundle{Model: &regress.LinearModel{}}); err == nil {
		t.Error("Save() without encoders should fail")
	}
	if err := store.Save(&Bundle{Encoders: encode.NewSet()}); err == nil {
		t.Error("Save() without model should fail")
	}
}
