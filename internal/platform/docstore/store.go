// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package docstore is the remote document store: schemaless documents addressed
by (collection, key) holding a map of top-level fields.

Operations:

  - FetchDocument: read the full field map, [ErrNotFound] when absent.
  - SetDocument: full overwrite (upsert).
  - CreateDocument: insert only, [ErrAlreadyExists] on key collision.
  - UpdateFields: shallow merge of top-level fields, [ErrNotFound] when absent.

Dates are carried as the store-native [Timestamp]. Every implementation must
hand back a Timestamp wherever one was written, so callers never see the
persisted encoding.
*/
package docstore

import (
	"context"
	"time"

	"github.com/taibuivan/arcana/internal/platform/dberr"
)

// Fields is the top-level field map of one document.
type Fields = map[string]any

var (
	// ErrNotFound is returned when no document exists under the key.
	ErrNotFound = dberr.ErrNotFound

	// ErrAlreadyExists is returned by CreateDocument when the key is taken.
	ErrAlreadyExists = dberr.ErrConflict
)

// Store is the contract every document store implementation satisfies.
type Store interface {
	FetchDocument(ctx context.Context, collection, key string) (Fields, error)
	SetDocument(ctx context.Context, collection, key string, fields Fields) error
	CreateDocument(ctx context.Context, collection, key string, fields Fields) error
	UpdateFields(ctx context.Context, collection, key string, partial Fields) error
}

// # Native Timestamp

// Timestamp is the store-native instant: seconds and nanoseconds since the Unix epoch.
type Timestamp struct {
	Seconds int64
	Nanos   int32
}

// NewTimestamp converts t into a [Timestamp].
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{
		Seconds: t.Unix(),
		Nanos:   int32(t.Nanosecond()),
	}
}

// Time converts the timestamp back into a UTC [time.Time].
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC()
}
