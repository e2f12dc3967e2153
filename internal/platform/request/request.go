// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package requestutil reads the parts of a request every handler needs: a
// bounded JSON body, chi path parameters and the session claims.
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/arcana/internal/platform/apperr"
	"github.com/taibuivan/arcana/internal/platform/ctxutil"
	"github.com/taibuivan/arcana/internal/platform/sec"
	"github.com/taibuivan/arcana/internal/platform/validate"
)

// MaxBodyBytes bounds a request body. The largest legitimate payload is a
// saved question with its answer.
const MaxBodyBytes = 64 << 10

// DecodeJSON decodes the body into target, rejecting unknown fields,
// trailing data and bodies over [MaxBodyBytes] with [validate.ErrInvalidJSON].
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(writer, request.Body, MaxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	if decoder.More() {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param returns a chi path parameter such as {id}.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// RequiredClaims returns the session claims installed by RequireAuth.
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.Claims(request.Context())
	if claims == nil || claims.SessionID == "" {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}
