// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// decoyHash is compared against when a username does not exist, so an
// unknown user costs one bcrypt comparison just like a wrong password.
var decoyHash, _ = bcrypt.GenerateFromPassword([]byte("arcana-decoy"), bcrypt.DefaultCost)

// HashPassword returns the bcrypt hash stored in the user document's
// password field.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec_hash_password_failed: %w", err)
	}
	return string(hashed), nil
}

// CheckPasswordHash reports whether password matches hash. Documents
// written without a password (empty hash) never match.
func CheckPasswordHash(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// SpendPasswordCheck burns the time of one comparison without a hash.
func SpendPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(decoyHash, []byte(password))
}
