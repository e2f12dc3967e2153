// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/arcana/internal/platform/apperr"
	"github.com/taibuivan/arcana/internal/platform/constants"
	"github.com/taibuivan/arcana/internal/platform/ctxutil"
	"github.com/taibuivan/arcana/internal/platform/respond"
	"github.com/taibuivan/arcana/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// Implementations check the signature and that the session behind the token
// has not been revoked.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, tokenStr string) (*sec.AuthClaims, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. Fall back to the access_token query parameter (websocket upgrades).
//  3. If both are absent, request proceeds as anonymous.
//  4. If present, parse and verify the JWT via [TokenVerifier].
//  5. Inject [*sec.AuthClaims] and a session-scoped logger into the request context.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			tokenStr, present, wellFormed := extractToken(request)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if !present {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			if !wellFormed {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyToken(request.Context(), tokenStr)
			if err != nil {
				ctxutil.Logger(request.Context()).DebugContext(request.Context(), "token_rejected", slog.Any("error", err))
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithClaims(request.Context(), claims)
			logger := ctxutil.Logger(ctx).With(slog.String("session_id", claims.SessionID))
			ctx = ctxutil.WithLogger(ctx, logger)

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.Claims(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// extractToken reads the bearer token from the header, or from the query
// string when no header is sent.
func extractToken(request *http.Request) (token string, present bool, wellFormed bool) {
	if authHeader := request.Header.Get(constants.HeaderAuthorization); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			return "", true, false
		}
		return parts[1], true, true
	}

	if queryToken := request.URL.Query().Get(constants.AccessTokenQueryParam); queryToken != "" {
		return queryToken, true, true
	}

	return "", false, false
}
