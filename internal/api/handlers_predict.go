// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/mfaucher/cinemetrics/internal/artifacts"
	"github.com/mfaucher/cinemetrics/internal/encode"
	"github.com/mfaucher/cinemetrics/internal/models"
)

// maxPredictBodySize bounds the request body of POST /api/v1/predict.
const maxPredictBodySize = 64 * 1024

// handlePredict predicts ROI for one hypothetical movie. Categorical names
// are encoded against the current bundle; a name the encoders never saw is
// a 400 with the offending column and value, never a silent zero code.
func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.PredictRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPredictBodySize))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationError, "invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	bundle, err := h.bundles.Load()
	if err != nil {
		if errors.Is(err, artifacts.ErrNoBundle) {
			respondError(w, http.StatusServiceUnavailable, codeNotFound, "no trained model available yet", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, codeInternalError, "failed to load model", err)
		return
	}

	features, err := h.buildFeatureVector(&req, bundle)
	if err != nil {
		var unknown *encode.UnknownCategoryError
		if errors.As(err, &unknown) {
			// An omitted field reaches the encoder as "". When the model
			// was trained on that column and "" is not one of its classes,
			// the field is effectively required by the current model.
			if unknown.Value == "" {
				respondError(w, http.StatusBadRequest, codeValidationError,
					fmt.Sprintf("%s is required by the current model", unknown.Column), nil)
				return
			}
			apiErr := &models.APIError{
				Code:    codeUnknownCategory,
				Message: fmt.Sprintf("unknown %s %q: not present in the training data", unknown.Column, unknown.Value),
			}
			respondJSON(w, http.StatusBadRequest, &models.APIResponse{
				Status:   "error",
				Metadata: models.Metadata{Timestamp: time.Now().UTC()},
				Error:    apiErr,
			})
			return
		}
		respondError(w, http.StatusInternalServerError, codeInternalError, "failed to build feature vector", err)
		return
	}

	roi, err := bundle.Model.Predict(features)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "prediction failed", err)
		return
	}

	respondSuccess(w, models.PredictResponse{
		PredictedROI: roi,
		ModelVersion: bundle.Version,
		Features:     bundle.Model.FeatureNames,
	}, start)
}

// buildFeatureVector encodes the request's categorical values in the
// model's feature order: budget first, then one code per encoded column.
func (h *Handler) buildFeatureVector(req *models.PredictRequest, bundle *artifacts.Bundle) ([]float64, error) {
	values := map[string]string{
		"director": req.Director,
		"season":   req.Season,
		"actors":   req.Actors,
		"studio":   req.Studio,
		"genre":    req.Genre,
	}

	features := make([]float64, 0, len(bundle.Model.FeatureNames))
	for _, name := range bundle.Model.FeatureNames {
		if name == "budget" {
			features = append(features, float64(req.Budget))
			continue
		}

		column, ok := strings.CutSuffix(name, "_encoded")
		if !ok {
			return nil, fmt.Errorf("model feature %q has no known source column", name)
		}
		enc := bundle.Encoders.Encoder(column)
		if enc == nil {
			return nil, fmt.Errorf("no encoder for model feature %q", name)
		}
		code, err := enc.Encode(values[column])
		if err != nil {
			return nil, err
		}
		features = append(features, float64(code))
	}
	return features, nil
}
