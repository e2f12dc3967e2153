// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/arcana/internal/platform/apperr"
	"github.com/taibuivan/arcana/internal/platform/validate"
)

/*
TestValidator_Rules runs each rule on its own.
*/
func TestValidator_Rules(t *testing.T) {
	tests := []struct {
		name    string
		check   func(v *validate.Validator)
		isValid bool
	}{
		{"required_ok", func(v *validate.Validator) { v.Required("name", "Selin") }, true},
		{"required_empty", func(v *validate.Validator) { v.Required("name", "") }, false},
		{"required_blank", func(v *validate.Validator) { v.Required("name", "   ") }, false},
		{"max_len_runes", func(v *validate.Validator) { v.MaxLen("name", "şşş", 3) }, true},
		{"max_len_over", func(v *validate.Validator) { v.MaxLen("name", "abcd", 3) }, false},
		{"username_ascii", func(v *validate.Validator) { v.Username("username", "selin_92") }, true},
		{"username_dotted", func(v *validate.Validator) { v.Username("username", "a.b-c") }, true},
		{"username_unicode", func(v *validate.Validator) { v.Username("username", "şebnem") }, true},
		{"username_space", func(v *validate.Validator) { v.Username("username", "two words") }, false},
		{"username_symbol", func(v *validate.Validator) { v.Username("username", "tarot$") }, false},
		{"date_ok", func(v *validate.Validator) { v.Date("birth_date", "1992-07-14", time.DateOnly) }, true},
		{"date_impossible", func(v *validate.Validator) { v.Date("birth_date", "1992-02-31", time.DateOnly) }, false},
		{"date_layout", func(v *validate.Validator) { v.Date("birth_date", "14/07/1992", time.DateOnly) }, false},
		{"date_empty_skipped", func(v *validate.Validator) { v.Date("birth_date", "", time.DateOnly) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			tt.check(v)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Accumulates reports every failing field in one error.
*/
func TestValidator_Accumulates(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("question", "").
		Required("reading", "The Tower").
		MaxLen("reading", "The Tower", 3).
		Custom("category", true, "must be one of General, Love, Career, Health").
		Err()

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeValidation, appError.Code)

	fields := make([]string, 0, len(appError.Details))
	for _, detail := range appError.Details {
		fields = append(fields, detail.Field)
	}
	assert.Equal(t, []string{"question", "reading", "category"}, fields)

	assert.NoError(t, (&validate.Validator{}).Required("question", "Will it rain?").Err())
}

/*
TestField builds a single-field error.
*/
func TestField(t *testing.T) {
	err := validate.Field("category", "unknown")

	require.Len(t, err.Details, 1)
	assert.Equal(t, "category", err.Details[0].Field)
	assert.Equal(t, 400, err.HTTPStatus)
}
