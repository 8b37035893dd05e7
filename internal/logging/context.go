// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// contextKey is a private type for context keys defined in this package.
type contextKey string

const requestIDKey contextKey = "request_id"

// NewRequestID creates a new unique request ID (full UUID).
func NewRequestID() string {
	return uuid.New().String()
}

// ContextWithRequestID returns a new context carrying the given request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if not present.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns a logger enriched with the request ID from the context, if any.
// Falls back to the global logger for contexts without an ID.
func Ctx(ctx context.Context) zerolog.Logger {
	if id := RequestIDFromContext(ctx); id != "" {
		return With().Str("request_id", id).Logger()
	}
	return Logger()
}
