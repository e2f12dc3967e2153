// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/arcana/internal/platform/apperr"
	"github.com/taibuivan/arcana/internal/platform/constants"
	"github.com/taibuivan/arcana/internal/platform/ctxutil"
	"github.com/taibuivan/arcana/internal/platform/middleware"
	"github.com/taibuivan/arcana/internal/platform/sec"
)

type stubVerifier struct{}

func (stubVerifier) VerifyToken(_ context.Context, token string) (*sec.AuthClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &sec.AuthClaims{SessionID: "sid-1", Username: "selin"}, nil
}

type stubConfig struct {
	development bool
}

func (c stubConfig) IsDevelopment() bool      { return c.development }
func (c stubConfig) AllowedOrigins() []string { return []string{"arcana.app"} }

/*
TestAuthenticate covers anonymous, header, query-string and rejected tokens.
*/
func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name        string
		header      string
		query       string
		wantStatus  int
		wantSession string
	}{
		{"anonymous", "", "", http.StatusOK, ""},
		{"bearer_header", "Bearer good", "", http.StatusOK, "sid-1"},
		{"query_fallback", "", "?access_token=good", http.StatusOK, "sid-1"},
		{"malformed_header", "Token good", "", http.StatusUnauthorized, ""},
		{"invalid_token", "Bearer bad", "", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := middleware.Authenticate(stubVerifier{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if claims := ctxutil.Claims(r.Context()); claims != nil {
					seen = claims.SessionID
				}
			}))

			request := httptest.NewRequest(http.MethodGet, "/session"+tt.query, nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, tt.wantSession, seen)
		})
	}
}

/*
TestRequireAuth verifies that anonymous requests are rejected.
*/
func TestRequireAuth(t *testing.T) {
	handler := middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request = request.WithContext(ctxutil.WithClaims(request.Context(), &sec.AuthClaims{SessionID: "sid-1"}))
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

/*
TestCORS checks origin filtering outside development.
*/
func TestCORS(t *testing.T) {
	handler := middleware.CORS(stubConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://www.arcana.app", true},
		{"https://evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.Header.Set("Origin", tt.origin)
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			if tt.allowed {
				assert.Equal(t, tt.origin, recorder.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

/*
TestOriginAllowed applies the CORS policy to websocket upgrades.
*/
func TestOriginAllowed(t *testing.T) {
	check := middleware.OriginAllowed(stubConfig{})

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, check(request), "no origin header")

	request.Header.Set("Origin", "https://arcana.app")
	assert.True(t, check(request))

	request.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(request))

	assert.True(t, middleware.OriginAllowed(stubConfig{development: true})(request))
}

/*
TestRequestID verifies that incoming IDs are echoed and missing ones generated.
*/
func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxutil.RequestID(r.Context())
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", "abc")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", recorder.Header().Get("X-Request-ID"))

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "abc", seen)
}

/*
TestRateLimit refuses a client once its burst is spent without affecting others.
*/
func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimit(ctx)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	send := func(ip string) int {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("X-Real-IP", ip)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		return recorder.Code
	}

	for range constants.DefaultRateLimitBurst {
		assert.Equal(t, http.StatusOK, send("203.0.113.7"))
	}
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.7"))
	assert.Equal(t, http.StatusOK, send("203.0.113.8"))
}

/*
TestPanicRecovery turns a handler panic into the 500 envelope.
*/
func TestPanicRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := middleware.PanicRecovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("deck exploded")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), apperr.CodeInternal)
	assert.NotContains(t, recorder.Body.String(), "deck exploded")
}

/*
TestRealIP prefers proxy headers over the peer address.
*/
func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "192.0.2.1", middleware.RealIP(request))

	request.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")
	assert.Equal(t, "198.51.100.4", middleware.RealIP(request))

	request.Header.Set("X-Real-IP", "198.51.100.9")
	assert.Equal(t, "198.51.100.9", middleware.RealIP(request))
}
