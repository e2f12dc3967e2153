// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration creates the documents table on startup with
// golang-migrate.
//
// The SQL files are embedded, so the binary migrates itself. MIGRATION_PATH
// points at a directory on disk instead, for trying out a migration without
// a rebuild.
package migration

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Registers the "pgx5" database scheme.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// Registers the "file" source scheme used for MIGRATION_PATH.
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var embedded embed.FS

// RunUp applies every pending migration. An empty path uses the embedded set.
func RunUp(dsn, path string, logger *slog.Logger) error {
	migrator, source, err := open(dsn, path)
	if err != nil {
		return fmt.Errorf("migration_open_failed: %w", err)
	}
	defer func() {
		sourceErr, databaseErr := migrator.Close()
		if err := errors.Join(sourceErr, databaseErr); err != nil {
			logger.Warn("migration_close_failed", slog.Any("error", err))
		}
	}()

	migrator.Log = migrateLogger{logger: logger}

	from, dirty, err := migrator.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		from = 0
	case err != nil:
		return fmt.Errorf("migration_version_failed: %w", err)
	case dirty:
		return fmt.Errorf("migration_dirty_version: version %d needs a manual fix", from)
	}

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migration_up_to_date", slog.Uint64("version", uint64(from)), slog.String("source", source))
			return nil
		}
		return fmt.Errorf("migration_up_failed: %w", err)
	}

	to, _, _ := migrator.Version()
	logger.Info("migration_applied",
		slog.Uint64("from_version", uint64(from)),
		slog.Uint64("to_version", uint64(to)),
		slog.String("source", source),
	)
	return nil
}

func open(dsn, path string) (*migrate.Migrate, string, error) {
	databaseURL := ConvertToPgx5DSN(dsn)

	if path != "" {
		source := "file://" + path
		migrator, err := migrate.New(source, databaseURL)
		return migrator, source, err
	}

	driver, err := iofs.New(embedded, "sql")
	if err != nil {
		return nil, "", err
	}
	migrator, err := migrate.NewWithSourceInstance("iofs", driver, databaseURL)
	return migrator, "embedded", err
}

// Files lists the embedded migration file names.
func Files() ([]string, error) {
	entries, err := embedded.ReadDir("sql")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

// ConvertToPgx5DSN rewrites a postgres:// URL to the pgx5:// scheme the
// migrate driver registers. Other DSNs pass through.
func ConvertToPgx5DSN(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, found := strings.CutPrefix(dsn, prefix); found {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// migrateLogger sends golang-migrate output to slog at debug level.
type migrateLogger struct {
	logger *slog.Logger
}

func (l migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug("migration_progress", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (l migrateLogger) Verbose() bool { return false }
