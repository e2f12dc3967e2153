// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/arcana/internal/api"
	"github.com/taibuivan/arcana/internal/platform/config"
	"github.com/taibuivan/arcana/internal/platform/sec"
	"github.com/taibuivan/arcana/internal/tarot/workspace"
	"github.com/taibuivan/arcana/internal/users/auth"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type rejectingVerifier struct{}

func (rejectingVerifier) VerifyToken(context.Context, string) (*sec.AuthClaims, error) {
	return nil, errors.New("no sessions in this test")
}

/*
TestReadiness reports each dependency and degrades on any failure.
*/
func TestReadiness(t *testing.T) {
	tests := []struct {
		name   string
		cache  error
		status int
		state  string
	}{
		{"all_healthy", nil, http.StatusOK, "ready"},
		{"cache_down", errors.New("connection refused"), http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, readiness := api.NewHealthHandlers(api.HealthDependencies{
				CheckDocumentStore: func(context.Context) error { return nil },
				CheckCache:         func(context.Context) error { return tt.cache },
			}, discard)

			recorder := httptest.NewRecorder()
			readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.status, recorder.Code)

			var envelope struct {
				Data struct {
					Status string `json:"status"`
					Checks []struct {
						Name string `json:"name"`
						OK   bool   `json:"ok"`
					} `json:"checks"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
			assert.Equal(t, tt.state, envelope.Data.Status)
			require.Len(t, envelope.Data.Checks, 2)
			assert.Equal(t, tt.cache == nil, envelope.Data.Checks[1].OK)
		})
	}
}

/*
TestServer_Routes checks the probes, the metrics endpoint and that the
application routes require a session.
*/
func TestServer_Routes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{}, discard)
	server := api.NewServer(ctx, &config.Config{ServerPort: "0", Environment: "test"}, discard, rejectingVerifier{}, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   promhttp.Handler(),
		Auth:      auth.NewHandler(nil),
		Workspace: workspace.NewHandler(nil, nil, nil),
	})

	tests := []struct {
		path   string
		header string
		status int
	}{
		{"/health", "", http.StatusOK},
		{"/ready", "", http.StatusOK},
		{"/metrics", "", http.StatusOK},
		{"/api/v1/me/profile", "", http.StatusUnauthorized},
		{"/api/v1/session", "Bearer forged", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()

			server.Handler().ServeHTTP(recorder, request)
			assert.Equal(t, tt.status, recorder.Code, recorder.Body.String())
		})
	}

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(recorder.Body.String(), "arcana_http_requests_total"))
}
