// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis opens the go-redis client shared by two concerns:

  - the local cache slot of every signed-in session (profile snapshot and
    the username used to recover identity on resume)
  - the session registry that makes logout revoke an access token

Both are small keyed values, so the pool is modest and the timeouts short.
A slow cache must never hold up a reading.
*/
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const (
	poolSize     = 8
	minIdleConns = 1
	dialTimeout  = 3 * time.Second
	ioTimeout    = time.Second
	pingTimeout  = 2 * time.Second
)

// NewClient parses redisURL, connects and pings.
func NewClient(ctx context.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis_parse_url_failed: %w", err)
	}

	options.PoolSize = poolSize
	options.MinIdleConns = minIdleConns
	options.DialTimeout = dialTimeout
	options.ReadTimeout = ioTimeout
	options.WriteTimeout = ioTimeout

	client := redis.NewClient(options)

	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	registerPoolStats(client, logger)

	logger.Info("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
		slog.Int("pool_size", options.PoolSize),
	)

	return client, nil
}

// Ping backs the readiness check of the local cache.
func Ping(ctx context.Context, client redis.UniversalClient) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis_ping_failed: %w", err)
	}
	return nil
}

func registerPoolStats(client *redis.Client, logger *slog.Logger) {
	collector := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "arcana_redis_pool_connections",
		Help: "Local cache pool connections currently open",
	}, func() float64 { return float64(client.PoolStats().TotalConns) })

	if err := prometheus.Register(collector); err != nil {
		logger.Debug("redis_pool_stats_not_registered", slog.Any("error", err))
	}
}
