// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/arcana/internal/platform/apperr"
	"github.com/taibuivan/arcana/internal/platform/ctxutil"
	"github.com/taibuivan/arcana/internal/platform/sec"
	"github.com/taibuivan/arcana/internal/users/profile"
	"github.com/taibuivan/arcana/pkg/uuidv7"
)

// # Contracts & Types

// TokenProvider signs and verifies session access tokens.
type TokenProvider interface {
	GenerateAccessToken(sessionID, username string, timeToLive time.Duration) (string, error)
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

// SessionOpener hands a signed-in profile to the per-session state layer.
type SessionOpener interface {
	// Open creates the state of a new session around a freshly loaded profile.
	Open(ctx context.Context, sessionID string, p profile.UserProfile) error

	// Close signs the session out and releases its state.
	Close(ctx context.Context, sessionID string) error
}

// Service implements account use cases.
type Service struct {
	accountRepository AccountRepository
	sessionRepository SessionRepository
	tokenProvider     TokenProvider
	sessionOpener     SessionOpener
	accessTokenTTL    time.Duration
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	accountRepo AccountRepository,
	sessionRepo SessionRepository,
	tokenProv TokenProvider,
	opener SessionOpener,
	accessTokenTTL time.Duration,
) *Service {
	return &Service{
		accountRepository: accountRepo,
		sessionRepository: sessionRepo,
		tokenProvider:     tokenProv,
		sessionOpener:     opener,
		accessTokenTTL:    accessTokenTTL,
	}
}

// # Registration Flow

// RegisterInput holds the data required to create an account.
type RegisterInput struct {
	Username string
	Password string
}

/*
Register creates a user document carrying the registration defaults.

Parameters:
  - ctx: context.Context
  - input: RegisterInput (username already normalized)

Returns:
  - profile.View: The created profile
  - err: Conflict when the username is taken, Unavailable on store failures
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (profile.View, error) {

	// Passwords are stored as bcrypt hashes only.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return profile.View{}, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	account := profile.New(input.Username, hashedPassword)

	// The create is conditional, so two racing registrations cannot both win.
	err = service.accountRepository.Create(ctx, account)
	if errors.Is(err, ErrAccountExists) {
		return profile.View{}, apperr.Conflict("Username is already taken")
	}
	if err != nil {
		return profile.View{}, apperr.Unavailable("Could not create the account", err)
	}

	ctxutil.Logger(ctx).InfoContext(ctx, "account_registered", slog.String("username", account.Username))
	return account.ToView(), nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Username string
	Password string
}

/*
Login verifies credentials and opens a new session.

Description: An unknown username and a wrong password produce the same
client error. The two cases are only told apart in the logs.

Returns:
  - *LoginSession: Access token, session id and the profile view
  - err: Unauthorized, Unavailable, or internal failures
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginSession, error) {
	logger := ctxutil.Logger(ctx)

	// ── 1. Load the account ──
	account, err := service.accountRepository.FindByUsername(ctx, input.Username)
	if errors.Is(err, ErrAccountNotFound) {
		sec.SpendPasswordCheck(input.Password)
		logger.InfoContext(ctx, "login_unknown_user", slog.String("username", input.Username))
		return nil, apperr.Unauthorized(invalidCredentials)
	}
	if err != nil {
		return nil, apperr.Unavailable("Could not reach the account store", err)
	}

	// ── 2. Verify the password ──
	if !sec.CheckPasswordHash(input.Password, account.Password) {
		logger.InfoContext(ctx, "login_password_mismatch", slog.String("username", input.Username))
		return nil, apperr.Unauthorized(invalidCredentials)
	}

	// ── 3. Issue the session ──
	sessionID := uuidv7.New()
	expiresAt := time.Now().Add(service.accessTokenTTL)

	accessToken, err := service.tokenProvider.GenerateAccessToken(sessionID, account.Username, service.accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	if err := service.sessionRepository.Create(ctx, sessionID, account.Username, service.accessTokenTTL); err != nil {
		return nil, apperr.Unavailable("Could not start the session", err)
	}

	// ── 4. Hand the profile to the session state ──
	if err := service.sessionOpener.Open(ctx, sessionID, account); err != nil {
		_ = service.sessionRepository.Revoke(ctx, sessionID)
		return nil, fmt.Errorf("auth_service_open_session_failed: %w", err)
	}

	logger.InfoContext(ctx, "login_succeeded",
		slog.String("username", account.Username),
		slog.String("session_id", sessionID),
	)

	return &LoginSession{
		AccessToken: accessToken,
		TokenType:   TokenType,
		ExpiresAt:   expiresAt,
		SessionID:   sessionID,
		Profile:     account.ToView(),
	}, nil
}

/*
Logout revokes the session and clears its local state.

The remote profile document is untouched. Logging out twice is not an error.
*/
func (service *Service) Logout(ctx context.Context, sessionID string) error {
	if err := service.sessionRepository.Revoke(ctx, sessionID); err != nil {
		return apperr.Unavailable("Could not end the session", err)
	}

	if err := service.sessionOpener.Close(ctx, sessionID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// # Token Verification

/*
VerifyToken checks the token signature and that its session is still live.

It satisfies the middleware's TokenVerifier, so a logged-out token is
rejected even before it expires.
*/
func (service *Service) VerifyToken(ctx context.Context, tokenString string) (*sec.AuthClaims, error) {
	claims, err := service.tokenProvider.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}

	username, err := service.sessionRepository.Username(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_session_lookup_failed: %w", err)
	}

	if username != claims.Username {
		return nil, fmt.Errorf("auth_service_session_user_mismatch: %w", ErrSessionNotFound)
	}

	return claims, nil
}
