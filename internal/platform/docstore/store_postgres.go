// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/arcana/internal/platform/dberr"
	"github.com/taibuivan/arcana/internal/platform/metrics"
)

// Querier is the subset of [pgxpool.Pool] the store needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore implements [Store] on a single JSONB table.
type PostgresStore struct {
	db      Querier
	timeout time.Duration
}

// NewPostgresStore constructs a store bound to db. Every call is capped by timeout.
func NewPostgresStore(db Querier, timeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, timeout: timeout}
}

// FetchDocument reads the full field map of one document.
func (repository *PostgresStore) FetchDocument(ctx context.Context, collection, key string) (Fields, error) {
	defer metrics.TrackDocument("fetch")()

	callCtx, cancel := context.WithTimeout(ctx, repository.timeout)
	defer cancel()

	const query = `SELECT fields FROM documents WHERE collection = $1 AND key = $2`

	var payload []byte
	err := repository.db.QueryRow(callCtx, query, collection, key).Scan(&payload)
	if err != nil {
		err = dberr.Wrap(err, "docstore_fetch")
		metrics.DocumentOps.WithLabelValues("fetch", resultLabel(err)).Inc()
		return nil, err
	}

	fields, err := decodeFields(payload)
	metrics.DocumentOps.WithLabelValues("fetch", metrics.Result(err)).Inc()
	return fields, err
}

// SetDocument overwrites the document, creating it when absent.
func (repository *PostgresStore) SetDocument(ctx context.Context, collection, key string, fields Fields) error {
	const query = `
		INSERT INTO documents (collection, key, fields)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, key)
		DO UPDATE SET fields = EXCLUDED.fields, updated_at = now()`

	_, err := repository.write(ctx, "set", query, collection, key, fields)
	return err
}

// CreateDocument inserts a new document, failing with [ErrAlreadyExists] on collision.
func (repository *PostgresStore) CreateDocument(ctx context.Context, collection, key string, fields Fields) error {
	const query = `INSERT INTO documents (collection, key, fields) VALUES ($1, $2, $3::jsonb)`

	_, err := repository.write(ctx, "create", query, collection, key, fields)
	return err
}

// UpdateFields merges the given top-level fields into an existing document.
func (repository *PostgresStore) UpdateFields(ctx context.Context, collection, key string, partial Fields) error {
	const query = `
		UPDATE documents
		SET fields = fields || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND key = $2`

	tag, err := repository.write(ctx, "update", query, collection, key, partial)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("docstore_update: %w", ErrNotFound)
	}
	return nil
}

// write encodes fields and runs one statement under the call deadline.
func (repository *PostgresStore) write(ctx context.Context, operation, query, collection, key string, fields Fields) (pgconn.CommandTag, error) {
	defer metrics.TrackDocument(operation)()

	payload, err := encodeFields(fields)
	if err != nil {
		metrics.DocumentOps.WithLabelValues(operation, metrics.ResultError).Inc()
		return pgconn.CommandTag{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, repository.timeout)
	defer cancel()

	tag, err := repository.db.Exec(callCtx, query, collection, key, payload)
	if err != nil {
		err = dberr.Wrap(err, "docstore_"+operation)
	}

	metrics.DocumentOps.WithLabelValues(operation, resultLabel(err)).Inc()
	return tag, err
}

func resultLabel(err error) string {
	if errors.Is(err, ErrNotFound) {
		return metrics.ResultNotFound
	}
	return metrics.Result(err)
}
