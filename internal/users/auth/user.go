// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements account registration, login and logout.

An account is a user document in the remote store, keyed by the normalized
username. A login opens a session: a fresh session id, a signed access token
carrying it, a Redis record that keeps it revocable, and a workspace that
holds the session's in-memory state.

# Architecture

  - Service: orchestrates Register, Login and Logout.
  - AccountRepository: the user documents (docstore-backed).
  - SessionRepository: live session ids (Redis-backed).
  - SessionOpener: the workspace layer that receives the signed-in profile.
*/
package auth

import (
	"time"

	"github.com/taibuivan/arcana/internal/users/profile"
)

// # Domain Entities

// LoginSession is the result of a successful login.
type LoginSession struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	SessionID   string       `json:"session_id"`
	Profile     profile.View `json:"profile"`
}

// # Field Identifiers

const (
	FieldUsername = "username"
	FieldPassword = "password"
)
