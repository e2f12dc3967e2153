// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuers and header names.
  - Storage: Document collections and cache key taxonomy.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "arcana-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout covers the slowest endpoints: the daily and
	// question readings, which wait for the completion service.
	DefaultWriteTimeout = 90 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 75 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 40

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute

	// CompletionRatePerMinute caps completion requests issued by one workspace.
	CompletionRatePerMinute = 6

	// CompletionBurst is the burst size of the per-workspace completion limiter.
	CompletionBurst = 3
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "arcana.app"

	// AccessTokenQueryParam carries the token for websocket upgrades, where
	// browsers cannot set an Authorization header.
	AccessTokenQueryParam = "access_token"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
)

// # Readiness Payload

const (
	FieldStatus = "status"
	FieldChecks = "checks"
)

// # Document Store

const (
	// CollectionUsers holds one document per user, keyed by username.
	CollectionUsers = "users"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixSession maps a live session id to its username. Deleting
	// the key revokes every token issued for that session.
	RedisPrefixSession = "arcana:session:"

	// RedisPrefixSlot namespaces the local cache slot of one signed-in session.
	RedisPrefixSlot = "arcana:slot:"

	// RedisSuffixProfile is the primary key holding the serialized profile.
	RedisSuffixProfile = ":profile"

	// RedisSuffixUsername is the secondary key holding only the username.
	RedisSuffixUsername = ":username"
)
