// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

/*
Package encode implements label encoding for categorical movie features.

A LabelEncoder maps the distinct string values of one column onto dense
integer codes 0..n-1, assigned in lexicographic order of the values. The
ordering rule matters: it makes the code assignment a pure function of the
value SET, so re-fitting on a permuted dataset yields identical codes, and
persisted encoders stay valid across runs that see the same vocabulary.

Encoders are fit once per training run, persisted alongside the model, and
reloaded at prediction time. Encoding a value outside the fitted vocabulary
is a typed error (UnknownCategoryError), never a silent zero code: code 0 is
a real category and returning it for unknowns would poison predictions.
*/
package encode

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

// UnknownCategoryError reports an encode attempt for a value the encoder was
// never fitted on. The API layer maps it to a client error.
type UnknownCategoryError struct {
	Column string
	Value  string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q for column %q", e.Value, e.Column)
}

// LabelEncoder maps distinct string values of one categorical column to
// integer codes assigned in lexicographic value order.
//
// Thread safety: safe for concurrent reads after Fit; Fit itself must not
// race with Encode/Decode.
type LabelEncoder struct {
	column  string
	classes []string       // sorted; index is the code
	codes   map[string]int // value -> code
}

// NewLabelEncoder creates an unfitted encoder for the named column.
func NewLabelEncoder(column string) *LabelEncoder {
	return &LabelEncoder{
		column: column,
		codes:  make(map[string]int),
	}
}

// Column returns the column name this encoder was created for.
func (e *LabelEncoder) Column() string {
	return e.column
}

// Fit builds the value-to-code mapping from the given values. Duplicates are
// collapsed; codes are assigned 0..n-1 in lexicographic order of the distinct
// values. Calling Fit again replaces the previous mapping.
func (e *LabelEncoder) Fit(values []string) {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}

	classes := make([]string, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Strings(classes)

	codes := make(map[string]int, len(classes))
	for i, v := range classes {
		codes[v] = i
	}

	e.classes = classes
	e.codes = codes
}

// Encode returns the integer code for a value. Returns an
// *UnknownCategoryError if the value was not present during Fit.
func (e *LabelEncoder) Encode(value string) (int, error) {
	code, ok := e.codes[value]
	if !ok {
		return 0, &UnknownCategoryError{Column: e.column, Value: value}
	}
	return code, nil
}

// Decode returns the original value for a code.
func (e *LabelEncoder) Decode(code int) (string, error) {
	if code < 0 || code >= len(e.classes) {
		return "", fmt.Errorf("column %q: code %d out of range [0, %d)", e.column, code, len(e.classes))
	}
	return e.classes[code], nil
}

// Classes returns the fitted vocabulary in code order. The returned slice is
// a copy.
func (e *LabelEncoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// Len returns the number of distinct fitted values.
func (e *LabelEncoder) Len() int {
	return len(e.classes)
}

// encoderJSON is the persisted form: the column name plus the class list in
// code order. The code map is rebuilt on load.
type encoderJSON struct {
	Column  string   `json:"column"`
	Classes []string `json:"classes"`
}

// MarshalJSON implements json.Marshaler.
func (e *LabelEncoder) MarshalJSON() ([]byte, error) {
	return json.Marshal(encoderJSON{Column: e.column, Classes: e.classes})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *LabelEncoder) UnmarshalJSON(data []byte) error {
	var raw encoderJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode label encoder: %w", err)
	}
	if !sort.StringsAreSorted(raw.Classes) {
		return fmt.Errorf("column %q: persisted classes are not in code order", raw.Column)
	}

	codes := make(map[string]int, len(raw.Classes))
	for i, v := range raw.Classes {
		if _, dup := codes[v]; dup {
			return fmt.Errorf("column %q: duplicate class %q in persisted encoder", raw.Column, v)
		}
		codes[v] = i
	}

	e.column = raw.Column
	e.classes = raw.Classes
	e.codes = codes
	return nil
}
