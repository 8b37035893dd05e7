// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinemetrics/config.yaml",
	"/etc/cinemetrics/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load loads configuration using Koanf v2 with layered sources
// (highest priority wins):
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables
//
// Validation is left to the caller (Validate or ValidateCollect) because
// the two binaries have different requirements.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Environment variables map onto config paths:
	// TMDB_API_KEY -> tmdb.api_key, SERVER_PORT -> server.port
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// configSections are the recognized top-level sections. Environment
// variables outside these prefixes are ignored rather than polluting the
// config tree.
var configSections = []string{
	"tmdb", "cleaning", "training", "database", "artifacts", "server", "logging",
}

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// they arrive as strings from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"training.features",
}

// envTransformFunc maps environment variable names to koanf config paths.
// The first underscore-separated token selects the section, the remainder
// becomes the snake_case key:
//
//	TMDB_API_KEY       -> tmdb.api_key
//	CLEANING_MIN_BUDGET -> cleaning.min_budget
//	SERVER_PORT        -> server.port
//
// Variables that do not start with a known section are dropped.
func envTransformFunc(key string) string {
	lower := strings.ToLower(key)
	for _, section := range configSections {
		prefix := section + "_"
		if strings.HasPrefix(lower, prefix) {
			return section + "." + strings.TrimPrefix(lower, prefix)
		}
	}
	return ""
}

// processSliceFields converts comma-separated env strings to slices for the
// known slice-valued paths. YAML-sourced values are already slices and are
// left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}
