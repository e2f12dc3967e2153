// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/arcana/internal/platform/constants"
)

// RedisSessionRepository implements [SessionRepository] using Redis.
type RedisSessionRepository struct {
	client redis.Cmdable
}

// NewSessionRepository creates a new Redis-backed SessionRepository.
func NewSessionRepository(client redis.Cmdable) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func sessionKey(sessionID string) string {
	return constants.RedisPrefixSession + sessionID
}

/*
Create records a live session and its username until ttl elapses.

Parameters:
  - ctx: context.Context
  - sessionID: string
  - username: string
  - ttl: time.Duration (matches the access token lifetime)

Returns:
  - error: Execution errors
*/
func (repository *RedisSessionRepository) Create(ctx context.Context, sessionID, username string, ttl time.Duration) error {
	if err := repository.client.Set(ctx, sessionKey(sessionID), username, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_create_failed: %w", err)
	}
	return nil
}

/*
Username returns the username a live session belongs to.

Returns:
  - string: Username
  - error: ErrSessionNotFound if the session expired or was revoked
*/
func (repository *RedisSessionRepository) Username(ctx context.Context, sessionID string) (string, error) {
	username, err := repository.client.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis_session_get_failed: %w", err)
	}
	return username, nil
}

// Revoke deletes the session record. Revoking an unknown session is not an error.
func (repository *RedisSessionRepository) Revoke(ctx context.Context, sessionID string) error {
	if err := repository.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis_session_revoke_failed: %w", err)
	}
	return nil
}
