// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate checks decoded request bodies before any remote call.
//
// A [Validator] collects every failing field so the app can mark them all
// at once, then [Validator.Err] folds them into one VALIDATION_ERROR.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/taibuivan/arcana/internal/platform/apperr"
)

const failedMessage = "Validation failed"

var (
	// Usernames key the user document, so they stay to letters, digits and . _ -
	// in any script.
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}._-]+$`)

	// ErrInvalidJSON rejects a body that does not decode.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator accumulates field failures. Use one per request.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails on an empty or whitespace-only value.
func (v *Validator) Required(field, value string) *Validator {
	return v.Custom(field, strings.TrimSpace(value) == "", "This field is required")
}

// MaxLen fails when value has more than max runes.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	return v.Custom(field, utf8.RuneCountInString(value) > max, fmt.Sprintf("Maximum %d characters", max))
}

// Username fails on characters a document key may not hold.
func (v *Validator) Username(field, value string) *Validator {
	return v.Custom(field, !usernamePattern.MatchString(value), "Only letters, digits, dots, underscores and hyphens are allowed")
}

// Date fails when value does not parse with layout. Empty values are left
// to [Validator.Required].
func (v *Validator) Date(field, value, layout string) *Validator {
	if value == "" {
		return v
	}
	_, err := time.Parse(layout, value)
	return v.Custom(field, err != nil, "Must be a date formatted as "+layout)
}

// Custom records message for field when failed is true.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
	}
	return v
}

// HasErrors reports whether any rule failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// Err returns nil when every rule passed.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return apperr.ValidationError(failedMessage, v.errs...)
}

// Field is a one-field VALIDATION_ERROR for checks made outside a chain.
func Field(field, message string) *apperr.AppError {
	return apperr.ValidationError(failedMessage, apperr.FieldError{Field: field, Message: message})
}
