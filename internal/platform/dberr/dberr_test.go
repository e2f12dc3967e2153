// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/arcana/internal/platform/dberr"
)

/*
TestWrap classifies driver errors against the package sentinels.
*/
func TestWrap(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"no_rows", pgx.ErrNoRows, dberr.ErrNotFound},
		{"unique_violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, dberr.ErrConflict},
		{"deadline", context.DeadlineExceeded, dberr.ErrTimeout},
		{"passthrough", plain, plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := dberr.Wrap(tt.err, "docstore_test")
			assert.ErrorIs(t, wrapped, tt.target)
			assert.Contains(t, wrapped.Error(), "docstore_test")
		})
	}

	assert.NoError(t, dberr.Wrap(nil, "docstore_test"))
}
