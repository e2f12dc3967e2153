// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package usersync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/arcana/internal/platform/constants"
	"github.com/taibuivan/arcana/internal/platform/metrics"
	"github.com/taibuivan/arcana/internal/users/profile"
)

// RedisCache stores one session slot under two keys: the JSON profile
// snapshot and, separately, the bare username.
type RedisCache struct {
	client      redis.Cmdable
	profileKey  string
	usernameKey string
	ttl         time.Duration
	logger      *slog.Logger
}

// NewRedisCache binds a cache to the slot of one session id. Both keys expire
// after ttl; zero keeps them until cleared.
func NewRedisCache(client redis.Cmdable, sessionID string, ttl time.Duration, logger *slog.Logger) *RedisCache {
	prefix := constants.RedisPrefixSlot + sessionID
	return &RedisCache{
		client:      client,
		profileKey:  prefix + constants.RedisSuffixProfile,
		usernameKey: prefix + constants.RedisSuffixUsername,
		ttl:         ttl,
		logger:      logger,
	}
}

// Save rewrites the full snapshot and the username in one transaction.
func (repository *RedisCache) Save(ctx context.Context, p profile.UserProfile) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("usersync_cache_encode_failed: %w", err)
	}

	_, err = repository.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, repository.profileKey, payload, repository.ttl)
		pipe.Set(ctx, repository.usernameKey, p.Username, repository.ttl)
		return nil
	})

	metrics.CacheOps.WithLabelValues("save", metrics.Result(err)).Inc()
	if err != nil {
		return fmt.Errorf("usersync_cache_save_failed: %w", err)
	}
	return nil
}

// Load returns the cached profile, or nil when the slot is empty or unreadable.
func (repository *RedisCache) Load(ctx context.Context) (*profile.UserProfile, error) {
	payload, err := repository.client.Get(ctx, repository.profileKey).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheOps.WithLabelValues("load", metrics.ResultNotFound).Inc()
		return nil, nil
	}
	if err != nil {
		metrics.CacheOps.WithLabelValues("load", metrics.ResultError).Inc()
		return nil, fmt.Errorf("usersync_cache_load_failed: %w", err)
	}

	var cached profile.UserProfile
	if err := json.Unmarshal(payload, &cached); err != nil {
		repository.logger.WarnContext(ctx, "cache_snapshot_unreadable",
			slog.String("key", repository.profileKey),
			slog.Any("error", err),
		)
		metrics.CacheOps.WithLabelValues("load", "unreadable").Inc()
		return nil, nil
	}

	if cached.Username == "" {
		repository.logger.WarnContext(ctx, "cache_snapshot_without_username", slog.String("key", repository.profileKey))
		metrics.CacheOps.WithLabelValues("load", "unreadable").Inc()
		return nil, nil
	}

	metrics.CacheOps.WithLabelValues("load", metrics.ResultOK).Inc()
	return &cached, nil
}

// LoadUsername returns the cached username, or "" when none is stored.
func (repository *RedisCache) LoadUsername(ctx context.Context) (string, error) {
	username, err := repository.client.Get(ctx, repository.usernameKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("usersync_cache_username_failed: %w", err)
	}
	return username, nil
}

// Clear removes both keys of the slot.
func (repository *RedisCache) Clear(ctx context.Context) error {
	err := repository.client.Del(ctx, repository.profileKey, repository.usernameKey).Err()
	metrics.CacheOps.WithLabelValues("clear", metrics.Result(err)).Inc()
	if err != nil {
		return fmt.Errorf("usersync_cache_clear_failed: %w", err)
	}
	return nil
}
