// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/arcana/internal/platform/apperr"
	"github.com/taibuivan/arcana/internal/platform/docstore"
	"github.com/taibuivan/arcana/internal/platform/middleware"
	"github.com/taibuivan/arcana/internal/platform/sec"
	"github.com/taibuivan/arcana/internal/users/auth"
	"github.com/taibuivan/arcana/internal/users/profile"
)

// # Fixtures

type fakeOpener struct {
	mu     sync.Mutex
	opened map[string]profile.UserProfile
	closed []string
}

func (o *fakeOpener) Open(_ context.Context, sessionID string, p profile.UserProfile) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened[sessionID] = p
	return nil
}

func (o *fakeOpener) Close(_ context.Context, sessionID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = append(o.closed, sessionID)
	return nil
}

type fixture struct {
	service *auth.Service
	store   *docstore.MemoryStore
	opener  *fakeOpener
	redis   *miniredis.Miniredis
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tokens, err := sec.NewTokenService("test-secret", "arcana.app")
	require.NoError(t, err)

	store := docstore.NewMemoryStore()
	opener := &fakeOpener{opened: map[string]profile.UserProfile{}}
	service := auth.NewService(
		auth.NewAccountRepository(store, time.Second),
		auth.NewSessionRepository(client),
		tokens,
		opener,
		time.Hour,
	)

	return fixture{service: service, store: store, opener: opener, redis: server}
}

// # Service

/*
TestService_RegisterDefaults stores a hashed password and the registration defaults.
*/
func TestService_RegisterDefaults(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	view, err := fx.service.Register(ctx, auth.RegisterInput{Username: "selin", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, profile.DefaultName, view.Name)
	assert.True(t, view.NeedsOnboarding)

	fields, err := fx.store.FetchDocument(ctx, "users", "selin")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", fields[profile.FieldPassword])
	assert.Equal(t, "General", fields[profile.FieldFavoriteCategory])
	assert.Equal(t, profile.DefaultStatus, fields[profile.FieldWorkStatus])
}

/*
TestService_RegisterDuplicate reports a conflict for a taken username.
*/
func TestService_RegisterDuplicate(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.service.Register(ctx, auth.RegisterInput{Username: "selin", Password: "a"})
	require.NoError(t, err)

	_, err = fx.service.Register(ctx, auth.RegisterInput{Username: "selin", Password: "b"})
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusConflict, appErr.HTTPStatus)
}

/*
TestService_LoginFailuresAreIndistinguishable returns the same error for an
unknown user and a wrong password.
*/
func TestService_LoginFailuresAreIndistinguishable(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.service.Register(ctx, auth.RegisterInput{Username: "selin", Password: "right"})
	require.NoError(t, err)

	_, unknown := fx.service.Login(ctx, auth.LoginInput{Username: "nobody", Password: "right"})
	_, wrong := fx.service.Login(ctx, auth.LoginInput{Username: "selin", Password: "wrong"})

	require.Error(t, unknown)
	require.Error(t, wrong)
	assert.Equal(t, unknown.Error(), wrong.Error())
	assert.Equal(t, http.StatusUnauthorized, apperr.As(wrong).HTTPStatus)
	assert.Empty(t, fx.opener.opened)
}

/*
TestService_LoginPartialDocument lets a user in whose document lacks optional fields.
*/
func TestService_LoginPartialDocument(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	hash, err := sec.HashPassword("pw")
	require.NoError(t, err)
	require.NoError(t, fx.store.SetDocument(ctx, "users", "legacy", docstore.Fields{
		profile.FieldPassword: hash,
		profile.FieldName:     "Legacy User",
	}))

	session, err := fx.service.Login(ctx, auth.LoginInput{Username: "legacy", Password: "pw"})
	require.NoError(t, err)

	assert.Equal(t, "Legacy User", session.Profile.Name)
	assert.False(t, session.Profile.NeedsOnboarding)
	assert.True(t, time.Unix(0, 0).Equal(session.Profile.BirthDate))
	assert.Contains(t, fx.opener.opened, session.SessionID)
}

/*
TestService_LogoutRevokesToken rejects a token once its session is closed.
*/
func TestService_LogoutRevokesToken(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.service.Register(ctx, auth.RegisterInput{Username: "selin", Password: "pw"})
	require.NoError(t, err)
	session, err := fx.service.Login(ctx, auth.LoginInput{Username: "selin", Password: "pw"})
	require.NoError(t, err)

	claims, err := fx.service.VerifyToken(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.SessionID, claims.SessionID)

	require.NoError(t, fx.service.Logout(ctx, session.SessionID))
	assert.Equal(t, []string{session.SessionID}, fx.opener.closed)

	_, err = fx.service.VerifyToken(ctx, session.AccessToken)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

// # HTTP

func newRouter(fx fixture) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Authenticate(fx.service))
	router.Mount("/auth", auth.NewHandler(fx.service).Routes())
	return router
}

func post(t *testing.T, handler http.Handler, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestHandler_Flow registers, logs in and logs out over HTTP.
*/
func TestHandler_Flow(t *testing.T) {
	fx := newFixture(t)
	router := newRouter(fx)

	recorder := post(t, router, "/auth/register", `{"username":"  Selin ","password":"pw"}`, "")
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	recorder = post(t, router, "/auth/login", `{"username":"SELIN","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var envelope struct {
		Data auth.LoginSession `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, "selin", envelope.Data.Profile.Username)
	assert.True(t, envelope.Data.Profile.NeedsOnboarding)
	assert.Equal(t, "Bearer", envelope.Data.TokenType)

	recorder = post(t, router, "/auth/logout", ``, envelope.Data.AccessToken)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = post(t, router, "/auth/logout", ``, envelope.Data.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestHandler_Validation rejects empty credentials before any I/O.
*/
func TestHandler_Validation(t *testing.T) {
	fx := newFixture(t)
	router := newRouter(fx)

	tests := []struct {
		name string
		body string
	}{
		{"empty_username", `{"username":" ","password":"pw"}`},
		{"empty_password", `{"username":"selin","password":""}`},
		{"bad_characters", `{"username":"se lin","password":"pw"}`},
		{"unknown_field", `{"username":"selin","password":"pw","email":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := post(t, router, "/auth/register", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}

	_, err := fx.store.FetchDocument(context.Background(), "users", "selin")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}
