// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Arcana HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool) and Redis.
//  4. Run database migrations (idempotent).
//  5. Load the card catalog and the completion client.
//  6. Wire the session registry and the HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taibuivan/arcana/internal/api"
	"github.com/taibuivan/arcana/internal/platform/config"
	"github.com/taibuivan/arcana/internal/platform/constants"
	"github.com/taibuivan/arcana/internal/platform/docstore"
	"github.com/taibuivan/arcana/internal/platform/middleware"
	"github.com/taibuivan/arcana/internal/platform/migration"
	pgstore "github.com/taibuivan/arcana/internal/platform/postgres"
	redisstore "github.com/taibuivan/arcana/internal/platform/redis"
	"github.com/taibuivan/arcana/internal/platform/sec"
	"github.com/taibuivan/arcana/internal/tarot/deck"
	"github.com/taibuivan/arcana/internal/tarot/reading"
	"github.com/taibuivan/arcana/internal/tarot/workspace"
	"github.com/taibuivan/arcana/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL & Redis ─────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, cfg.RemoteCallTimeout, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 4. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 5. Cards & Completion ─────────────────────────────────────────────
	catalog, err := deck.Load(cfg.CardCatalogPath, log)
	must(log, err, "load card catalog")

	completer := reading.NewOpenAICompleter(cfg.CompletionAPIKey, cfg.CompletionBaseURL, cfg.CompletionModel, nil)
	generator := reading.NewGenerator(completer, reading.Options{
		MaxTokens:      cfg.CompletionMaxTokens,
		DailyMaxTokens: cfg.CompletionDailyMaxTokens,
		Temperature:    cfg.CompletionTemperature,
		Language:       cfg.ReadingLanguage,
		Timeout:        cfg.CompletionTimeout,
	})

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	store := docstore.NewPostgresStore(pool, cfg.RemoteCallTimeout)

	registry := workspace.NewRegistry(
		store,
		rdb,
		catalog,
		deck.RandomShuffler{},
		generator,
		workspace.DefaultOptions(cfg.AccessTokenTTL, cfg.RemoteCallTimeout),
		log,
	)

	tokenService, err := sec.NewTokenService(cfg.SessionSecret, constants.AuthIssuer)
	must(log, err, "initialize token service")

	authService := auth.NewService(
		auth.NewAccountRepository(store, cfg.RemoteCallTimeout),
		auth.NewSessionRepository(rdb),
		tokenService,
		registry,
		cfg.AccessTokenTTL,
	)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDocumentStore: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckCache: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
	}, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, authService, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   promhttp.Handler(),
		Auth:      auth.NewHandler(authService),
		Workspace: workspace.NewHandler(registry, catalog, middleware.OriginAllowed(cfg)),
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))

	shutdownErr := server.Shutdown(constants.ShutdownTimeout)

	// Let running generations and profile fetches land before the pools close.
	registry.Shutdown()

	if shutdownErr != nil {
		log.Error("shutdown_failed", slog.Any("error", shutdownErr))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

// newLogger builds the JSON process logger and makes it the default.
func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(log)
	return log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failed",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
