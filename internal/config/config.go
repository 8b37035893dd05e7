// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for both the collect pipeline and the
// dashboard server.
type Config struct {
	TMDB      TMDBConfig      `koanf:"tmdb"`
	Cleaning  CleaningConfig  `koanf:"cleaning"`
	Training  TrainingConfig  `koanf:"training"`
	Database  DatabaseConfig  `koanf:"database"`
	Artifacts ArtifactsConfig `koanf:"artifacts"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// TMDBConfig configures the TMDB API client and the collection run.
type TMDBConfig struct {
	// APIKey authenticates against the TMDB v3 API. Required for collection.
	// Supplied out-of-band via TMDB_API_KEY; never stored in config files.
	APIKey string `koanf:"api_key"`

	// BaseURL is the TMDB API root, overridable for tests.
	BaseURL string `koanf:"base_url"`

	// Genres maps genre display names to TMDB genre IDs. Each entry becomes
	// one discover query; a movie may appear under several genres.
	Genres map[string]int `koanf:"genres"`

	// PagesPerGenre is how many discover pages are fetched per genre.
	PagesPerGenre int `koanf:"pages_per_genre"`

	// MaxRetries is the number of attempts per request on non-200 responses.
	MaxRetries int `koanf:"max_retries"`

	// RetryDelay is the fixed backoff between attempts.
	RetryDelay time.Duration `koanf:"retry_delay"`

	// RequestTimeout bounds a single HTTP request.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// RateLimit is the client-side request rate in requests per second.
	// TMDB enforces roughly 50 req/s; the default stays well under it.
	RateLimit float64 `koanf:"rate_limit"`

	// RateBurst is the rate limiter burst size.
	RateBurst int `koanf:"rate_burst"`

	// TopCastCount is how many leading cast names are joined into the
	// actors field of a record.
	TopCastCount int `koanf:"top_cast_count"`

	// BreakerMaxFailures is the consecutive-failure count that opens the
	// circuit breaker around the API.
	BreakerMaxFailures uint32 `koanf:"breaker_max_failures"`

	// BreakerOpenTimeout is how long the breaker stays open before probing.
	BreakerOpenTimeout time.Duration `koanf:"breaker_open_timeout"`
}

// CleaningConfig holds the economic filter thresholds applied by the cleaner.
// These are configuration, not hardcoded constants: the degenerate-economics
// and outlier cutoffs are tunable per deployment.
type CleaningConfig struct {
	// MinBudget excludes rows with budget <= MinBudget (strict comparison).
	MinBudget int64 `koanf:"min_budget"`

	// MinRevenue excludes rows with revenue <= MinRevenue (strict comparison).
	MinRevenue int64 `koanf:"min_revenue"`

	// MaxROI caps pathological outliers; rows with roi > MaxROI are dropped.
	MaxROI float64 `koanf:"max_roi"`
}

// TrainingConfig configures the ROI regression training run.
type TrainingConfig struct {
	// TestFraction is the held-out share of the train/test split.
	TestFraction float64 `koanf:"test_fraction"`

	// Seed fixes the split shuffle for reproducible evaluation metrics.
	Seed int64 `koanf:"seed"`

	// Features lists the encoded categorical columns fed to the model, in
	// order, after the raw budget feature. Director and season are the
	// required minimum.
	Features []string `koanf:"features"`

	// ForestTrees, ForestMaxDepth and ForestMinLeaf configure the
	// random-forest variant used for feature-importance reporting.
	ForestTrees    int `koanf:"forest_trees"`
	ForestMaxDepth int `koanf:"forest_max_depth"`
	ForestMinLeaf  int `koanf:"forest_min_leaf"`
}

// DatabaseConfig configures the DuckDB dataset store.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	// Threads <= 0 means use runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// ArtifactsConfig configures where encoder/model bundles are persisted.
type ArtifactsConfig struct {
	Dir string `koanf:"dir"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists allowed origins; empty means same-origin only.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitPerMinute caps requests per client IP on data endpoints.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`

	// ExportMaxRows bounds a single CSV export.
	ExportMaxRows int `koanf:"export_max_rows"`

	// AnalyticsCacheTTL bounds staleness of cached analytics responses.
	// Zero or negative disables the cache.
	AnalyticsCacheTTL time.Duration `koanf:"analytics_cache_ttl"`
}

// LoggingConfig configures the zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// CategoricalColumns is the canonical order of encoded categorical columns.
// Encoder artifacts and feature vectors follow this order.
var CategoricalColumns = []string{"director", "season", "actors", "studio", "genre"}

// defaultConfig returns a Config with all defaults applied. Defaults are
// loaded first, then overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			APIKey:  "",
			BaseURL: "https://api.themoviedb.org/3",
			Genres: map[string]int{
				"Action":          28,
				"Comedy":          35,
				"Drama":           18,
				"Adventure":       12,
				"Horror":          27,
				"Science Fiction": 878,
				"Romance":         10749,
				"Thriller":        53,
				"Animation":       16,
				"Documentary":     99,
			},
			PagesPerGenre:      3,
			MaxRetries:         3,
			RetryDelay:         2 * time.Second,
			RequestTimeout:     30 * time.Second,
			RateLimit:          4,
			RateBurst:          4,
			TopCastCount:       3,
			BreakerMaxFailures: 5,
			BreakerOpenTimeout: 60 * time.Second,
		},
		Cleaning: CleaningConfig{
			MinBudget:  1000,
			MinRevenue: 1000,
			MaxROI:     10000,
		},
		Training: TrainingConfig{
			TestFraction:   0.2,
			Seed:           42,
			Features:       []string{"director", "season", "actors", "studio", "genre"},
			ForestTrees:    50,
			ForestMaxDepth: 6,
			ForestMinLeaf:  2,
		},
		Database: DatabaseConfig{
			Path:      "data/cinemetrics.duckdb",
			MaxMemory: "2GB",
			Threads:   0,
		},
		Artifacts: ArtifactsConfig{
			Dir: "data/artifacts",
		},
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8380,
			ReadTimeout:        15 * time.Second,
			WriteTimeout:       30 * time.Second,
			ShutdownTimeout:    10 * time.Second,
			CORSOrigins:        nil,
			RateLimitPerMinute: 300,
			ExportMaxRows:      100000,
			AnalyticsCacheTTL:  5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks configuration shared by both binaries.
func (c *Config) Validate() error {
	if err := c.validateCleaning(); err != nil {
		return err
	}
	if err := c.validateTraining(); err != nil {
		return err
	}
	return c.validateServer()
}

// ValidateCollect additionally checks requirements specific to a collection
// run. A missing API credential is a catastrophic startup error: the batch
// cannot degrade around it.
func (c *Config) ValidateCollect() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.TMDB.APIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is required for collection")
	}
	if len(c.TMDB.Genres) == 0 {
		return fmt.Errorf("tmdb.genres must list at least one genre")
	}
	if c.TMDB.PagesPerGenre < 1 {
		return fmt.Errorf("tmdb.pages_per_genre must be >= 1, got %d", c.TMDB.PagesPerGenre)
	}
	if c.TMDB.MaxRetries < 1 {
		return fmt.Errorf("tmdb.max_retries must be >= 1, got %d", c.TMDB.MaxRetries)
	}
	if c.TMDB.TopCastCount < 1 {
		return fmt.Errorf("tmdb.top_cast_count must be >= 1, got %d", c.TMDB.TopCastCount)
	}
	return nil
}

func (c *Config) validateCleaning() error {
	if c.Cleaning.MinBudget < 0 {
		return fmt.Errorf("cleaning.min_budget must be >= 0, got %d", c.Cleaning.MinBudget)
	}
	if c.Cleaning.MinRevenue < 0 {
		return fmt.Errorf("cleaning.min_revenue must be >= 0, got %d", c.Cleaning.MinRevenue)
	}
	if c.Cleaning.MaxROI <= 0 {
		return fmt.Errorf("cleaning.max_roi must be > 0, got %g", c.Cleaning.MaxROI)
	}
	return nil
}

func (c *Config) validateTraining() error {
	if c.Training.TestFraction <= 0 || c.Training.TestFraction >= 1 {
		return fmt.Errorf("training.test_fraction must be in (0, 1), got %g", c.Training.TestFraction)
	}
	if len(c.Training.Features) == 0 {
		return fmt.Errorf("training.features must not be empty")
	}

	known := make(map[string]bool, len(CategoricalColumns))
	for _, col := range CategoricalColumns {
		known[col] = true
	}
	seen := make(map[string]bool, len(c.Training.Features))
	for _, f := range c.Training.Features {
		if !known[f] {
			return fmt.Errorf("training.features contains unknown column %q", f)
		}
		if seen[f] {
			return fmt.Errorf("training.features contains duplicate column %q", f)
		}
		seen[f] = true
	}
	// Director and season are the minimum feature set for prediction.
	if !seen["director"] || !seen["season"] {
		return fmt.Errorf("training.features must include director and season")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.RateLimitPerMinute < 1 {
		return fmt.Errorf("server.rate_limit_per_minute must be >= 1, got %d", c.Server.RateLimitPerMinute)
	}
	if c.Server.ExportMaxRows < 1 {
		return fmt.Errorf("server.export_max_rows must be >= 1, got %d", c.Server.ExportMaxRows)
	}
	return nil
}
