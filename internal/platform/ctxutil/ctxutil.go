// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil carries request-scoped values through [context.Context]:
// the correlation id, the per-request logger and the session claims.
//
// Keys are distinct unexported struct types, so no other package can read or
// overwrite them.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/arcana/internal/platform/sec"
)

type (
	requestIDKey struct{}
	loggerKey    struct{}
	claimsKey    struct{}
)

// WithRequestID attaches the X-Request-ID value.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation id, or "" outside a request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithLogger attaches a logger already enriched with request attributes.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the request logger, falling back to [slog.Default].
//
// Background work (generation, profile fetches) is started from a request
// context, so its log lines keep the request_id and session_id attributes.
func Logger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// WithClaims attaches the verified session claims.
func WithClaims(ctx context.Context, claims *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// Claims returns the session claims, or nil on public routes.
func Claims(ctx context.Context) *sec.AuthClaims {
	claims, _ := ctx.Value(claimsKey{}).(*sec.AuthClaims)
	return claims
}
