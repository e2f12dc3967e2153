// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (document store, cache, completion client) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Arcana API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Remote document store (PostgreSQL JSONB)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath overrides the embedded migrations with a directory on disk.
	MigrationPath string `env:"MIGRATION_PATH"`

	// RemoteCallTimeout bounds every fetch/set/update against the document store.
	RemoteCallTimeout time.Duration `env:"REMOTE_CALL_TIMEOUT" envDefault:"10s"`

	// Local cache slots (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Session token signing
	SessionSecret  string        `env:"SESSION_SECRET,required"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"720h"`

	// Completion service (OpenAI-compatible chat completions)
	CompletionAPIKey         string        `env:"COMPLETION_API_KEY,required"`
	CompletionBaseURL        string        `env:"COMPLETION_BASE_URL"         envDefault:"https://api.openai.com/v1"`
	CompletionModel          string        `env:"COMPLETION_MODEL"            envDefault:"gpt-3.5-turbo"`
	CompletionMaxTokens      int           `env:"COMPLETION_MAX_TOKENS"       envDefault:"4000"`
	CompletionDailyMaxTokens int           `env:"COMPLETION_DAILY_MAX_TOKENS" envDefault:"2000"`
	CompletionTemperature    float32       `env:"COMPLETION_TEMPERATURE"      envDefault:"0.7"`
	CompletionTimeout        time.Duration `env:"COMPLETION_TIMEOUT"          envDefault:"60s"`

	// ReadingLanguage is the language the generated readings are written in.
	ReadingLanguage string `env:"READING_LANGUAGE" envDefault:"English"`

	// CardCatalogPath overrides the embedded card catalog when set.
	CardCatalogPath string `env:"CARD_CATALOG_PATH"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.RemoteCallTimeout <= 0 {
		return nil, fmt.Errorf("config: REMOTE_CALL_TIMEOUT must be positive")
	}

	if cfg.CompletionTimeout <= 0 {
		return nil, fmt.Errorf("config: COMPLETION_TIMEOUT must be positive")
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// AllowedOrigins lists the origin suffixes accepted by CORS outside development.
func (c *Config) AllowedOrigins() []string {
	origins := []string{"arcana.app"}
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
