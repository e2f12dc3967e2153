// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package postgres opens the pgx pool behind the remote document store.
//
// The workload is one JSONB row per user, read on sign-in and rewritten a
// field at a time, so the pool stays small. Every statement is bounded on the
// server by the same deadline the client applies to a remote call.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	maxConns          = 10
	minConns          = 1
	maxConnLifetime   = 30 * time.Minute
	maxConnIdleTime   = 5 * time.Minute
	healthCheckPeriod = time.Minute
	connectTimeout    = 5 * time.Second
	pingTimeout       = 2 * time.Second
)

// NewPool connects to dsn and checks the connection with a ping.
//
// statementTimeout is installed as the per-connection statement_timeout; it
// is normally REMOTE_CALL_TIMEOUT. Pool statistics are exported as
// arcana_postgres_pool_* gauges.
func NewPool(ctx context.Context, dsn string, statementTimeout time.Duration, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres_parse_dsn_failed: %w", err)
	}

	poolConfig.MaxConns = maxConns
	poolConfig.MinConns = minConns
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout
	poolConfig.AfterConnect = func(ctx context.Context, connection *pgx.Conn) error {
		_, err := connection.Exec(ctx, fmt.Sprintf("SET statement_timeout = %d", statementTimeout.Milliseconds()))
		return err
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres_open_pool_failed: %w", err)
	}

	if err := Ping(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	registerPoolStats(pool, logger)

	logger.Info("postgres_pool_connected",
		slog.String("host", poolConfig.ConnConfig.Host),
		slog.String("database", poolConfig.ConnConfig.Database),
		slog.Int("max_conns", int(poolConfig.MaxConns)),
		slog.Duration("statement_timeout", statementTimeout),
	)

	return pool, nil
}

// Ping backs the readiness check of the document store.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("postgres_ping_failed: %w", err)
	}
	return nil
}

// registerPoolStats exports pool occupancy. A second pool in the same
// process (tests) keeps the first registration.
func registerPoolStats(pool *pgxpool.Pool, logger *slog.Logger) {
	gauges := map[string]func(*pgxpool.Stat) float64{
		"acquired": func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) },
		"idle":     func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) },
		"total":    func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) },
	}

	for state, read := range gauges {
		collector := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "arcana_postgres_pool_connections",
			Help:        "Document store pool connections by state",
			ConstLabels: prometheus.Labels{"state": state},
		}, func() float64 { return read(pool.Stat()) })

		if err := prometheus.Register(collector); err != nil {
			logger.Debug("postgres_pool_stats_not_registered", slog.String("state", state), slog.Any("error", err))
		}
	}
}
