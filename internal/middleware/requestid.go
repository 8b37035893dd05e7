// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mfaucher/cinemetrics/internal/logging"
)

// RequestID generates a unique ID for each request, echoes it on the
// X-Request-ID response header and stores it in the request context so the
// logging package can correlate log lines per request. An upstream-supplied
// X-Request-ID is preserved.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := logging.ContextWithRequestID(r.Context(), requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
