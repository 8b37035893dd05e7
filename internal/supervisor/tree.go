// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

/*
Package supervisor wraps suture v4 process supervision for the dashboard
server. Services that crash are restarted with failure-rate backoff;
supervisor events are routed into the application log through the
sutureslog adapter and the zerolog slog bridge.
*/
package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// TreeConfig holds supervisor failure-handling parameters. Zero values fall
// back to suture's production defaults.
type TreeConfig struct {
	FailureThreshold float64
	FailureDecay     float64
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

// DefaultTreeConfig returns suture's documented defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Tree is the root supervisor for the server process.
type Tree struct {
	root *suture.Supervisor
}

// NewTree creates the supervisor tree, logging events through logger.
func NewTree(logger *slog.Logger, config TreeConfig) *Tree {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5.0
	}
	if config.FailureDecay == 0 {
		config.FailureDecay = 30.0
	}
	if config.FailureBackoff == 0 {
		config.FailureBackoff = 15 * time.Second
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	// sutureslog's hook constructor has a pointer receiver.
	handler := &sutureslog.Handler{Logger: logger}

	root := suture.New("cinemetrics", suture.Spec{
		EventHook:        handler.MustHook(),
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	})

	return &Tree{root: root}
}

// Add registers a service with the tree.
func (t *Tree) Add(service suture.Service) {
	t.root.Add(service)
}

// Serve runs the tree until ctx is cancelled, then shuts every service
// down. Blocks for the lifetime of the process.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}
