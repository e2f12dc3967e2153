// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/taibuivan/arcana/internal/platform/constants"
	"github.com/taibuivan/arcana/internal/platform/docstore"
	"github.com/taibuivan/arcana/internal/platform/metrics"
	"github.com/taibuivan/arcana/internal/tarot/deck"
	"github.com/taibuivan/arcana/internal/tarot/reading"
	"github.com/taibuivan/arcana/internal/tarot/session"
	"github.com/taibuivan/arcana/internal/users/profile"
	"github.com/taibuivan/arcana/internal/users/usersync"
)

// DefaultEventBuffer is the per-subscriber buffer of a session emitter.
const DefaultEventBuffer = 32

// Options tune the workspaces a [Registry] creates.
type Options struct {
	// CacheTTL is how long a cache slot outlives its last write.
	CacheTTL time.Duration

	// RemoteTimeout bounds every document store call.
	RemoteTimeout time.Duration

	EventBuffer     int
	CompletionRate  rate.Limit
	CompletionBurst int
}

// DefaultOptions returns the options used by the API server.
func DefaultOptions(cacheTTL, remoteTimeout time.Duration) Options {
	return Options{
		CacheTTL:        cacheTTL,
		RemoteTimeout:   remoteTimeout,
		EventBuffer:     DefaultEventBuffer,
		CompletionRate:  rate.Every(time.Minute / constants.CompletionRatePerMinute),
		CompletionBurst: constants.CompletionBurst,
	}
}

// Registry holds the workspace of every live session, keyed by session id.
//
// It implements the auth package's SessionOpener.
type Registry struct {
	store     docstore.Store
	client    redis.Cmdable
	catalog   *deck.Catalog
	shuffler  deck.Shuffler
	generator *reading.Generator
	options   Options
	logger    *slog.Logger
	now       func() time.Time

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// NewRegistry creates an empty registry.
func NewRegistry(
	store docstore.Store,
	client redis.Cmdable,
	catalog *deck.Catalog,
	shuffler deck.Shuffler,
	generator *reading.Generator,
	options Options,
	logger *slog.Logger,
) *Registry {
	if options.EventBuffer <= 0 {
		options.EventBuffer = DefaultEventBuffer
	}

	return &Registry{
		store:      store,
		client:     client,
		catalog:    catalog,
		shuffler:   shuffler,
		generator:  generator,
		options:    options,
		logger:     logger,
		now:        time.Now,
		workspaces: make(map[string]*Workspace),
	}
}

// # Session Lifecycle

// Open creates the workspace of a freshly signed-in session and installs p.
// An existing workspace under the same id is replaced once its background
// work has drained, so a late fetch cannot overwrite the new cache slot.
func (registry *Registry) Open(ctx context.Context, sessionID string, p profile.UserProfile) error {
	workspace := registry.build(sessionID)

	registry.mu.Lock()
	previous := registry.workspaces[sessionID]
	registry.workspaces[sessionID] = workspace
	registry.mu.Unlock()

	if previous != nil {
		previous.Wait()
		previous.session.Emitter().Close()
	} else {
		metrics.ActiveWorkspaces.Inc()
	}

	workspace.coordinator.SignIn(ctx, p)
	workspace.logger.InfoContext(ctx, "workspace_opened", slog.String("username", p.Username))
	return nil
}

/*
Acquire returns the workspace of sessionID, creating it when the process has
not seen the session yet (typically after a restart).

A created workspace restores the cached profile synchronously and refreshes
it from the document store in the background; username is the name carried
by the session token.
*/
func (registry *Registry) Acquire(ctx context.Context, sessionID, username string) *Workspace {
	registry.mu.Lock()
	if workspace, ok := registry.workspaces[sessionID]; ok {
		registry.mu.Unlock()
		return workspace
	}

	workspace := registry.build(sessionID)
	registry.workspaces[sessionID] = workspace
	registry.mu.Unlock()

	metrics.ActiveWorkspaces.Inc()

	workspace.session.AwaitProfile()
	workspace.coordinator.Start(ctx, username)
	workspace.logger.InfoContext(ctx, "workspace_resumed", slog.String("username", username))
	return workspace
}

// Close signs the session out, clears its cache slot and drops the workspace.
func (registry *Registry) Close(ctx context.Context, sessionID string) error {
	registry.mu.Lock()
	workspace, ok := registry.workspaces[sessionID]
	delete(registry.workspaces, sessionID)
	registry.mu.Unlock()

	if !ok {
		cache := usersync.NewRedisCache(registry.client, sessionID, registry.options.CacheTTL, registry.logger)
		if err := cache.Clear(ctx); err != nil {
			return fmt.Errorf("workspace_close_failed: %w", err)
		}
		return nil
	}

	metrics.ActiveWorkspaces.Dec()
	defer workspace.session.Emitter().Close()

	if err := workspace.coordinator.SignOut(ctx); err != nil {
		return fmt.Errorf("workspace_close_failed: %w", err)
	}

	workspace.logger.InfoContext(ctx, "workspace_closed")
	return nil
}

// Len returns the number of live workspaces.
func (registry *Registry) Len() int {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return len(registry.workspaces)
}

// Shutdown waits for background work of every workspace and closes their
// event streams. Workspaces stay registered; their cache slots are kept.
func (registry *Registry) Shutdown() {
	registry.mu.Lock()
	workspaces := make([]*Workspace, 0, len(registry.workspaces))
	for _, workspace := range registry.workspaces {
		workspaces = append(workspaces, workspace)
	}
	registry.mu.Unlock()

	for _, workspace := range workspaces {
		workspace.Wait()
		workspace.session.Emitter().Close()
	}
}

// build wires the components of one workspace. The session is the profile
// sink of the coordinator.
func (registry *Registry) build(sessionID string) *Workspace {
	logger := registry.logger.With(slog.String("session_id", sessionID))

	emitter := session.NewEmitter(registry.options.EventBuffer)
	state := session.New(registry.catalog, registry.shuffler, emitter)
	cache := usersync.NewRedisCache(registry.client, sessionID, registry.options.CacheTTL, logger)

	return &Workspace{
		sessionID:   sessionID,
		session:     state,
		coordinator: usersync.NewCoordinator(registry.store, cache, state, registry.options.RemoteTimeout, logger),
		generator:   registry.generator,
		limiter:     rate.NewLimiter(registry.options.CompletionRate, registry.options.CompletionBurst),
		logger:      logger,
		now:         registry.now,
	}
}
