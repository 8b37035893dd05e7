// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package encode

import (
	"fmt"

	"github.com/mfaucher/cinemetrics/internal/config"
	"github.com/mfaucher/cinemetrics/internal/models"
)

// Set holds one fitted LabelEncoder per categorical column, keyed by column
// name. All five columns in config.CategoricalColumns are always present.
type Set struct {
	encoders map[string]*LabelEncoder
}

// NewSet creates a Set with unfitted encoders for every categorical column.
func NewSet() *Set {
	encoders := make(map[string]*LabelEncoder, len(config.CategoricalColumns))
	for _, col := range config.CategoricalColumns {
		encoders[col] = NewLabelEncoder(col)
	}
	return &Set{encoders: encoders}
}

// NewSetFromEncoders builds a Set from loaded encoders. Every categorical
// column must be covered exactly once.
func NewSetFromEncoders(encoders []*LabelEncoder) (*Set, error) {
	byColumn := make(map[string]*LabelEncoder, len(encoders))
	for _, enc := range encoders {
		if _, dup := byColumn[enc.Column()]; dup {
			return nil, fmt.Errorf("duplicate encoder for column %q", enc.Column())
		}
		byColumn[enc.Column()] = enc
	}
	for _, col := range config.CategoricalColumns {
		if _, ok := byColumn[col]; !ok {
			return nil, fmt.Errorf("missing encoder for column %q", col)
		}
	}
	if len(byColumn) != len(config.CategoricalColumns) {
		return nil, fmt.Errorf("expected %d encoders, got %d", len(config.CategoricalColumns), len(byColumn))
	}
	return &Set{encoders: byColumn}, nil
}

// Encoder returns the encoder for a column, or nil if the column is not
// categorical.
func (s *Set) Encoder(column string) *LabelEncoder {
	return s.encoders[column]
}

// Encoders returns the encoders in config.CategoricalColumns order.
func (s *Set) Encoders() []*LabelEncoder {
	out := make([]*LabelEncoder, 0, len(config.CategoricalColumns))
	for _, col := range config.CategoricalColumns {
		out = append(out, s.encoders[col])
	}
	return out
}

// Fit fits every encoder on the corresponding column of the given records.
func (s *Set) Fit(records []models.MovieRecord) {
	for _, col := range config.CategoricalColumns {
		values := make([]string, len(records))
		for i := range records {
			values[i], _ = records[i].CategoricalValue(col)
		}
		s.encoders[col].Fit(values)
	}
}

// Apply encodes every categorical column of every record in place, storing
// the integer codes in the record's *Encoded fields. All records must carry
// only values seen during Fit; an unknown value aborts with an
// *UnknownCategoryError.
func (s *Set) Apply(records []models.MovieRecord) error {
	for i := range records {
		for _, col := range config.CategoricalColumns {
			value, _ := records[i].CategoricalValue(col)
			code, err := s.encoders[col].Encode(value)
			if err != nil {
				return err
			}
			records[i].SetEncoded(col, code)
		}
	}
	return nil
}

// FitApply fits on the records and encodes them in one pass. Since Fit sees
// exactly the values Apply encodes, this cannot produce an unknown-category
// error.
func (s *Set) FitApply(records []models.MovieRecord) {
	s.Fit(records)
	if err := s.Apply(records); err != nil {
		// Unreachable: Fit covered every value Apply encodes.
		panic(fmt.Sprintf("encode: fit-apply invariant broken: %v", err))
	}
}
