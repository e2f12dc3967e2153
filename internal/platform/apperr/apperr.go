// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr is the error type every service hands back to the HTTP layer.

An [AppError] pairs a stable machine code with a message the app can show
as is. The underlying cause rides along for logs and is never serialized.
Errors that are not AppErrors reach the client as [Internal].
*/
package apperr

import (
	"errors"
	"net/http"
)

// Machine-readable codes. The app switches on these, so they never change.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodePrecondition = "PRECONDITION_REQUIRED"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
)

// AppError is a client-facing failure.
type AppError struct {
	Code       string       `json:"code"`
	Message    string       `json:"error"`
	HTTPStatus int          `json:"-"`
	Cause      error        `json:"-"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError names one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func newError(code string, status int, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// Error returns the client message.
func (e *AppError) Error() string { return e.Message }

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause returns a copy of e that logs cause.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// # 4xx

// ValidationError rejects a request body, optionally naming each bad field.
func ValidationError(message string, details ...FieldError) *AppError {
	e := newError(CodeValidation, http.StatusBadRequest, message)
	e.Details = details
	return e
}

// Unauthorized covers missing sessions and failed sign-ins.
func Unauthorized(message string) *AppError {
	return newError(CodeUnauthorized, http.StatusUnauthorized, message)
}

// NotFound reports a missing resource, e.g. NotFound("Reading").
func NotFound(resource string) *AppError {
	return newError(CodeNotFound, http.StatusNotFound, resource+" not found")
}

// Conflict reports a username that is already registered.
func Conflict(message string) *AppError {
	return newError(CodeConflict, http.StatusConflict, message)
}

// PreconditionRequired refuses an operation the session is not ready for:
// no profile loaded yet, or no completed reading to save.
func PreconditionRequired(message string) *AppError {
	return newError(CodePrecondition, http.StatusPreconditionRequired, message)
}

// RateLimited answers a client that exceeded its request budget.
func RateLimited() *AppError {
	return newError(CodeRateLimited, http.StatusTooManyRequests, "Too many requests. Please slow down.")
}

// # 5xx

// Internal hides an unexpected failure behind a generic message.
func Internal(cause error) *AppError {
	return newError(CodeInternal, http.StatusInternalServerError, "An unexpected error occurred").WithCause(cause)
}

// Unavailable reports a remote store call that failed or timed out.
func Unavailable(message string, cause error) *AppError {
	return newError(CodeUnavailable, http.StatusServiceUnavailable, message).WithCause(cause)
}

// # Helpers

// IsAppError reports whether err's chain holds an [*AppError].
func IsAppError(err error) bool {
	return As(err) != nil
}

// As returns the first [*AppError] in err's chain, or nil.
func As(err error) *AppError {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError
	}
	return nil
}
