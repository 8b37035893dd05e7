// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

/*
Package artifacts persists and restores the training outputs: the five
fitted label encoders, the linear ROI model, the held-out evaluation and
the feature-importance ranking.

Encoders and model are only meaningful together: a model predicts garbage
when fed codes from a different encoder fit. The bundle therefore carries a
single version (a UUID minted at save time) stamped into the manifest and
into every component file, and Load refuses any bundle whose component
versions disagree. A "current" pointer file names the active version;
writes land in a fresh version directory first and the pointer flips last,
so a crashed save never corrupts the active bundle.

Layout under the artifacts dir:

	current                   <- file holding the active version string
	<version>/manifest.json
	<version>/model.json
	<version>/encoders/<column>.json
*/
package artifacts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mfaucher/cinemetrics/internal/config"
	"github.com/mfaucher/cinemetrics/internal/encode"
	"github.com/mfaucher/cinemetrics/internal/logging"
	"github.com/mfaucher/cinemetrics/internal/regress"
)

// ErrNoBundle reports that no trained bundle has been saved yet. The predict
// endpoint maps it to a service-unavailable response.
var ErrNoBundle = errors.New("artifacts: no trained bundle available")

const currentPointerFile = "current"

// Bundle is one complete, internally consistent training output.
type Bundle struct {
	Version     string                      `json:"version"`
	CreatedAt   time.Time                   `json:"created_at"`
	Model       *regress.LinearModel        `json:"model"`
	Encoders    *encode.Set                 `json:"-"`
	Evaluation  *regress.Evaluation         `json:"evaluation"`
	Importances []regress.FeatureImportance `json:"importances"`
}

// manifest is the persisted bundle summary. Encoder and model payloads live
// in their own files; the manifest records what must be present.
type manifest struct {
	Version     string                      `json:"version"`
	CreatedAt   time.Time                   `json:"created_at"`
	Columns     []string                    `json:"columns"`
	Evaluation  *regress.Evaluation         `json:"evaluation"`
	Importances []regress.FeatureImportance `json:"importances"`
}

// versioned wraps a component payload with the bundle version it belongs to.
type versioned struct {
	Version string          `json:"version"`
	Payload json.RawMessage `json:"payload"`
}

// Store reads and writes bundles under one artifacts directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at cfg.Dir, creating the directory if
// needed.
func NewStore(cfg *config.ArtifactsConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("artifacts: directory not configured")
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create artifacts directory %s: %w", cfg.Dir, err)
	}
	return &Store{dir: cfg.Dir}, nil
}

// Save persists the bundle under a freshly minted version and makes it
// current. The bundle's Version and CreatedAt fields are set by Save.
func (s *Store) Save(b *Bundle) error {
	if b.Model == nil || b.Encoders == nil {
		return errors.New("artifacts: bundle needs both model and encoders")
	}

	b.Version = uuid.NewString()
	b.CreatedAt = time.Now().UTC()

	versionDir := filepath.Join(s.dir, b.Version)
	encodersDir := filepath.Join(versionDir, "encoders")
	if err := os.MkdirAll(encodersDir, 0o750); err != nil {
		return fmt.Errorf("failed to create bundle directory: %w", err)
	}

	for _, enc := range b.Encoders.Encoders() {
		path := filepath.Join(encodersDir, enc.Column()+".json")
		if err := writeVersionedJSON(path, b.Version, enc); err != nil {
			return fmt.Errorf("failed to write %s encoder: %w", enc.Column(), err)
		}
	}

	if err := writeVersionedJSON(filepath.Join(versionDir, "model.json"), b.Version, b.Model); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}

	m := manifest{
		Version:     b.Version,
		CreatedAt:   b.CreatedAt,
		Columns:     config.CategoricalColumns,
		Evaluation:  b.Evaluation,
		Importances: b.Importances,
	}
	manifestData, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(versionDir, "manifest.json"), manifestData, 0o640); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	// Flip the pointer last: until this succeeds, readers keep the old
	// bundle.
	if err := s.setCurrent(b.Version); err != nil {
		return err
	}

	logging.Info().
		Str("version", b.Version).
		Str("dir", versionDir).
		Msg("saved model bundle")
	return nil
}

// Load restores the current bundle, verifying that every component carries
// the manifest's version. Returns ErrNoBundle when nothing has been saved.
func (s *Store) Load() (*Bundle, error) {
	version, err := s.currentVersion()
	if err != nil {
		return nil, err
	}
	return s.LoadVersion(version)
}

// LoadVersion restores one specific bundle version.
func (s *Store) LoadVersion(version string) (*Bundle, error) {
	versionDir := filepath.Join(s.dir, version)

	manifestData, err := os.ReadFile(filepath.Join(versionDir, "manifest.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: version %s", ErrNoBundle, version)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m manifest
	if err := json.Unmarshal(manifestData, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if m.Version != version {
		return nil, fmt.Errorf("manifest version %q does not match directory %q", m.Version, version)
	}

	encoders := make([]*encode.LabelEncoder, 0, len(m.Columns))
	for _, column := range m.Columns {
		path := filepath.Join(versionDir, "encoders", column+".json")
		var enc encode.LabelEncoder
		if err := readVersionedJSON(path, version, &enc); err != nil {
			return nil, fmt.Errorf("failed to load %s encoder: %w", column, err)
		}
		encoders = append(encoders, &enc)
	}
	set, err := encode.NewSetFromEncoders(encoders)
	if err != nil {
		return nil, fmt.Errorf("inconsistent encoder bundle: %w", err)
	}

	var model regress.LinearModel
	if err := readVersionedJSON(filepath.Join(versionDir, "model.json"), version, &model); err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	return &Bundle{
		Version:     m.Version,
		CreatedAt:   m.CreatedAt,
		Model:       &model,
		Encoders:    set,
		Evaluation:  m.Evaluation,
		Importances: m.Importances,
	}, nil
}

// currentVersion reads the active version from the pointer file.
func (s *Store) currentVersion() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, currentPointerFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoBundle
		}
		return "", fmt.Errorf("failed to read current pointer: %w", err)
	}
	version := strings.TrimSpace(string(data))
	if version == "" {
		return "", ErrNoBundle
	}
	return version, nil
}

// setCurrent atomically updates the pointer file via rename.
func (s *Store) setCurrent(version string) error {
	tmp := filepath.Join(s.dir, currentPointerFile+".tmp")
	if err := os.WriteFile(tmp, []byte(version+"\n"), 0o640); err != nil {
		return fmt.Errorf("failed to write pointer temp file: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, currentPointerFile)); err != nil {
		return fmt.Errorf("failed to update current pointer: %w", err)
	}
	return nil
}

// writeVersionedJSON writes payload wrapped with the bundle version.
func writeVersionedJSON(path, version string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	data, err := json.MarshalIndent(versioned{Version: version, Payload: raw}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode wrapper: %w", err)
	}
	return os.WriteFile(path, data, 0o640)
}

// readVersionedJSON reads a wrapped payload and enforces version agreement.
func readVersionedJSON(path, wantVersion string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var wrapper versioned
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return fmt.Errorf("failed to decode wrapper: %w", err)
	}
	if wrapper.Version != wantVersion {
		return fmt.Errorf("component version %q does not match bundle %q", wrapper.Version, wantVersion)
	}
	return json.Unmarshal(wrapper.Payload, out)
}
