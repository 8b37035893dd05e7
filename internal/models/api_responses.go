// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package models

import "time"

// APIResponse is the common JSON envelope for all API endpoints.
//
// Example:
//
//	{
//	  "status": "success",
//	  "data": {...},
//	  "metadata": {"timestamp": "2026-08-30T12:00:00Z", "query_time_ms": 12}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries per-response observability fields.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is a structured error payload.
//
// Codes used by the dashboard API:
//   - VALIDATION_ERROR: invalid request parameters
//   - UNKNOWN_CATEGORY: a prediction input was never seen during fitting
//   - NOT_FOUND: resource or artifact missing
//   - DATABASE_ERROR: query execution failure
//   - INTERNAL_ERROR: anything else
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PredictRequest is the input of POST /api/v1/predict. Categorical fields
// are raw names; encoding happens server-side against the loaded artifact
// bundle. Budget, director and season are always required; the other
// fields are required whenever the current model was trained on them, and
// ignored otherwise.
type PredictRequest struct {
	Budget   int64  `json:"budget" validate:"required,gt=0"`
	Director string `json:"director" validate:"required"`
	Season   string `json:"season" validate:"required"`
	Actors   string `json:"actors"`
	Studio   string `json:"studio"`
	Genre    string `json:"genre"`
}

// PredictResponse is the output of POST /api/v1/predict.
type PredictResponse struct {
	PredictedROI float64  `json:"predicted_roi"`
	ModelVersion string   `json:"model_version"`
	Features     []string `json:"features"`
}
