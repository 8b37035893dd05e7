// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/mfaucher/cinemetrics/internal/logging"
	"github.com/mfaucher/cinemetrics/internal/models"
	"github.com/mfaucher/cinemetrics/internal/validation"
)

// API error codes.
const (
	codeValidationError = "VALIDATION_ERROR"
	codeUnknownCategory = "UNKNOWN_CATEGORY"
	codeNotFound        = "NOT_FOUND"
	codeDatabaseError   = "DATABASE_ERROR"
	codeInternalError   = "INTERNAL_ERROR"
)

// respondJSON sends a JSON response with proper headers.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

// respondSuccess wraps data in the success envelope with query timing.
func respondSuccess(w http.ResponseWriter, data interface{}, start time.Time) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// respondError sends an error envelope.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().
			Str("code", code).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("api error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    &models.APIError{Code: code, Message: message},
	})
}

// validateRequest runs struct validation and converts failures to an
// APIError payload.
func validateRequest(v interface{}) *models.APIError {
	if err := validation.ValidateStruct(v); err != nil {
		return err.ToAPIError()
	}
	return nil
}

// getIntParam extracts an integer query parameter with a default.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// sanitizeLogValue strips control characters so attacker-controlled strings
// cannot forge log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
