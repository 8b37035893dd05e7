// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

// Package validation wraps go-playground/validator v10 behind a
// thread-safe singleton and translates field errors into the dashboard
// API's VALIDATION_ERROR format. The validator caches struct metadata,
// so a single instance serves every request.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/mfaucher/cinemetrics/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one field-level validation failure.
type FieldError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the struct field name that failed.
func (e *FieldError) Field() string { return e.field }

// Tag returns the validation tag that failed.
func (e *FieldError) Tag() string { return e.tag }

// Param returns the tag parameter, e.g. "1000" for "lte=1000".
func (e *FieldError) Param() string { return e.param }

// Value returns the rejected value.
func (e *FieldError) Value() interface{} { return e.value }

func (e *FieldError) Error() string { return e.message }

// RequestError aggregates every validation failure of one request.
type RequestError struct {
	errors []FieldError
}

// Errors returns the individual field errors.
func (re *RequestError) Errors() []FieldError { return re.errors }

func (re *RequestError) Error() string {
	if len(re.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(re.errors))
	for i, e := range re.errors {
		messages[i] = e.message
	}
	return strings.Join(messages, "; ")
}

// ToAPIError converts the failures into the response error payload. A
// single failure keeps a plain message; multiple failures list every
// field in the details map.
func (re *RequestError) ToAPIError() *models.APIError {
	const code = "VALIDATION_ERROR"

	if len(re.errors) == 0 {
		return &models.APIError{Code: code, Message: "validation failed"}
	}

	if len(re.errors) == 1 {
		e := re.errors[0]
		return &models.APIError{
			Code:    code,
			Message: e.message,
			Details: map[string]interface{}{
				"field": e.field,
				"tag":   e.tag,
			},
		}
	}

	fields := make([]map[string]interface{}, len(re.errors))
	messages := make([]string, len(re.errors))
	for i, e := range re.errors {
		fields[i] = map[string]interface{}{
			"field":   e.field,
			"tag":     e.tag,
			"message": e.message,
		}
		messages[i] = e.message
	}

	return &models.APIError{
		Code:    code,
		Message: strings.Join(messages, "; "),
		Details: map[string]interface{}{"fields": fields},
	}
}

// Validator returns the singleton instance, initializing it on first use.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct validates s against its `validate` tags. Returns nil on
// success, *RequestError otherwise.
func ValidateStruct(s interface{}) *RequestError {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestError{errors: []FieldError{{
			field:   "unknown",
			tag:     "unknown",
			message: err.Error(),
		}}}
	}

	out := make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{
			field:   fe.Field(),
			tag:     fe.Tag(),
			param:   fe.Param(),
			value:   fe.Value(),
			message: translate(fe),
		}
	}
	return &RequestError{errors: out}
}

var tagMessages = map[string]string{
	"required": "%s is required",
	"len":      "%s must be exactly %s characters",
	"numeric":  "%s must be numeric",
	"oneof":    "%s must be one of: %s",
	"gte":      "%s must be greater than or equal to %s",
	"lte":      "%s must be less than or equal to %s",
	"gt":       "%s must be greater than %s",
	"lt":       "%s must be less than %s",
	"min":      "%s must be at least %s",
	"max":      "%s must be at most %s",
}

// translate builds a human-readable message for one field error.
func translate(fe validator.FieldError) string {
	template, ok := tagMessages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
	if strings.Count(template, "%s") == 2 {
		return fmt.Sprintf(template, fe.Field(), fe.Param())
	}
	return fmt.Sprintf(template, fe.Field())
}
