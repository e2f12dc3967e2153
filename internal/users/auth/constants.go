// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Authentication Constraints

const (
	// MaxUsernameLength bounds the document key.
	MaxUsernameLength = 64

	// MaxPasswordLength is the bcrypt input limit; longer inputs are rejected
	// rather than silently truncated.
	MaxPasswordLength = 72

	// TokenType is the scheme clients send the access token with.
	TokenType = "Bearer"

	// invalidCredentials is the single message for every failed login, so
	// callers cannot tell an unknown user from a wrong password.
	invalidCredentials = "Invalid username or password"
)
