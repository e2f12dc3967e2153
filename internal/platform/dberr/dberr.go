// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// the sentinel errors the document store exposes to its callers.
package dberr

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a queried document doesn't exist.
	ErrNotFound = errors.New("document not found")

	// ErrConflict is returned when an insert collides with an existing key.
	ErrConflict = errors.New("document already exists")

	// ErrTimeout is returned when the database did not answer before the deadline.
	ErrTimeout = errors.New("database call timed out")
)

// Wrap inspects a database error and classifies it against the package sentinels.
// The action names the failed operation for the log line, e.g. "docstore_fetch".
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", action, ErrNotFound)
	}

	// 2. Unique key violations
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%s: %w", action, ErrConflict)
	}

	// 3. Deadlines, including statement_timeout cancellations
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return fmt.Errorf("%s: %w: %w", action, ErrTimeout, err)
	}

	return fmt.Errorf("%s: %w", action, err)
}
