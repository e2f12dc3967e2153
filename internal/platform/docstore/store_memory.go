// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package docstore

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process [Store]. Documents are kept in their encoded
// form, so values come back exactly as they would from Postgres.
type MemoryStore struct {
	mu        sync.RWMutex
	documents map[string][]byte
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{documents: make(map[string][]byte)}
}

func documentKey(collection, key string) string {
	return collection + "/" + key
}

// FetchDocument implements [Store].
func (repository *MemoryStore) FetchDocument(ctx context.Context, collection, key string) (Fields, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	repository.mu.RLock()
	payload, found := repository.documents[documentKey(collection, key)]
	repository.mu.RUnlock()

	if !found {
		return nil, fmt.Errorf("docstore_fetch: %w", ErrNotFound)
	}
	return decodeFields(payload)
}

// SetDocument implements [Store].
func (repository *MemoryStore) SetDocument(ctx context.Context, collection, key string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := encodeFields(fields)
	if err != nil {
		return err
	}

	repository.mu.Lock()
	repository.documents[documentKey(collection, key)] = payload
	repository.mu.Unlock()
	return nil
}

// CreateDocument implements [Store].
func (repository *MemoryStore) CreateDocument(ctx context.Context, collection, key string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := encodeFields(fields)
	if err != nil {
		return err
	}

	repository.mu.Lock()
	defer repository.mu.Unlock()

	id := documentKey(collection, key)
	if _, taken := repository.documents[id]; taken {
		return fmt.Errorf("docstore_create: %w", ErrAlreadyExists)
	}
	repository.documents[id] = payload
	return nil
}

// UpdateFields implements [Store].
func (repository *MemoryStore) UpdateFields(ctx context.Context, collection, key string, partial Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	repository.mu.Lock()
	defer repository.mu.Unlock()

	id := documentKey(collection, key)
	payload, found := repository.documents[id]
	if !found {
		return fmt.Errorf("docstore_update: %w", ErrNotFound)
	}

	current, err := decodeFields(payload)
	if err != nil {
		return err
	}

	merged := cloneFields(current)
	for field, value := range partial {
		merged[field] = value
	}

	updated, err := encodeFields(merged)
	if err != nil {
		return err
	}
	repository.documents[id] = updated
	return nil
}
