// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taibuivan/arcana/internal/platform/constants"
	"github.com/taibuivan/arcana/internal/platform/docstore"
	"github.com/taibuivan/arcana/internal/users/profile"
)

// ErrAccountNotFound is returned when no document exists for a username.
var ErrAccountNotFound = errors.New("account not found")

// ErrAccountExists is returned when registering a username that is taken.
var ErrAccountExists = errors.New("account already exists")

// ErrSessionNotFound is returned for unknown or revoked session ids.
var ErrSessionNotFound = errors.New("session not found")

// # Account Data Access

// AccountRepository defines the data access contract for user documents.
type AccountRepository interface {

	/*
		FindByUsername loads and parses the document of a username under the
		login schema.

		Returns:
		  - profile.UserProfile: Parsed profile, password hash included
		  - error: ErrAccountNotFound or storage failures
	*/
	FindByUsername(ctx context.Context, username string) (profile.UserProfile, error)

	/*
		Create persists a brand-new profile document.

		Returns:
		  - error: ErrAccountExists or storage failures
	*/
	Create(ctx context.Context, p profile.UserProfile) error
}

// DocumentAccountRepository implements [AccountRepository] on a [docstore.Store].
type DocumentAccountRepository struct {
	store   docstore.Store
	timeout time.Duration
}

// NewAccountRepository creates a document-backed account repository. timeout
// bounds every remote call.
func NewAccountRepository(store docstore.Store, timeout time.Duration) *DocumentAccountRepository {
	return &DocumentAccountRepository{store: store, timeout: timeout}
}

// FindByUsername implements [AccountRepository].
func (repository *DocumentAccountRepository) FindByUsername(ctx context.Context, username string) (profile.UserProfile, error) {
	callCtx, cancel := context.WithTimeout(ctx, repository.timeout)
	defer cancel()

	fields, err := repository.store.FetchDocument(callCtx, constants.CollectionUsers, username)
	if errors.Is(err, docstore.ErrNotFound) {
		return profile.UserProfile{}, ErrAccountNotFound
	}
	if err != nil {
		return profile.UserProfile{}, fmt.Errorf("auth_account_fetch_failed: %w", err)
	}

	decoded, err := profile.FromDocument(username, fields, profile.LoginSchema)
	if err != nil {
		return profile.UserProfile{}, fmt.Errorf("auth_account_parse_failed: %w", err)
	}
	return decoded.Profile, nil
}

// Create implements [AccountRepository].
func (repository *DocumentAccountRepository) Create(ctx context.Context, p profile.UserProfile) error {
	callCtx, cancel := context.WithTimeout(ctx, repository.timeout)
	defer cancel()

	err := repository.store.CreateDocument(callCtx, constants.CollectionUsers, p.Username, profile.ToDocument(p))
	if errors.Is(err, docstore.ErrAlreadyExists) {
		return ErrAccountExists
	}
	if err != nil {
		return fmt.Errorf("auth_account_create_failed: %w", err)
	}
	return nil
}

// # Session Data Access

// SessionRepository tracks which session ids are still live.
type SessionRepository interface {
	Create(ctx context.Context, sessionID, username string, ttl time.Duration) error
	Username(ctx context.Context, sessionID string) (string, error)
	Revoke(ctx context.Context, sessionID string) error
}
