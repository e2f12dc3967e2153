// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package usersync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/taibuivan/arcana/internal/platform/constants"
	"github.com/taibuivan/arcana/internal/platform/docstore"
	"github.com/taibuivan/arcana/internal/platform/metrics"
	"github.com/taibuivan/arcana/internal/users/profile"
)

// ErrNoProfile is returned by mutations attempted before any profile is loaded.
var ErrNoProfile = errors.New("no profile loaded")

// ProfileSink receives every profile change the coordinator makes, so the
// session observers see it.
type ProfileSink interface {
	SetProfile(p profile.UserProfile)
	ClearProfile()
}

// Coordinator owns the in-memory profile of one session and keeps it aligned
// with the remote store and the local cache.
type Coordinator struct {
	store   docstore.Store
	cache   LocalCache
	sink    ProfileSink
	logger  *slog.Logger
	timeout time.Duration

	// fetching is the in-flight guard for FetchUserInfo.
	fetching atomic.Bool
	wg       sync.WaitGroup

	mu       sync.RWMutex
	current  *profile.UserProfile
	revision uint64
	hint     string

	// writeMu serializes the read-modify-write of remote mutations.
	writeMu sync.Mutex
}

// NewCoordinator builds a coordinator. timeout bounds every remote call.
func NewCoordinator(store docstore.Store, cache LocalCache, sink ProfileSink, timeout time.Duration, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		store:   store,
		cache:   cache,
		sink:    sink,
		timeout: timeout,
		logger:  logger,
	}
}

// Profile returns a copy of the in-memory profile, if any.
func (service *Coordinator) Profile() (profile.UserProfile, bool) {
	service.mu.RLock()
	defer service.mu.RUnlock()

	if service.current == nil {
		return profile.UserProfile{}, false
	}
	return service.current.Clone(), true
}

// # Loading

/*
Start restores the cached snapshot synchronously, then fetches the remote
document in the background.

The background result overwrites the restored state and the cache. hint is
the username carried by the session token; it is the last resort when neither
the memory nor the cache knows who is signed in.
*/
func (service *Coordinator) Start(ctx context.Context, hint string) {
	service.mu.Lock()
	service.hint = profile.NormalizeUsername(hint)
	service.mu.Unlock()

	// ── 1. Fast path: local snapshot ──
	cached, err := service.cache.Load(ctx)
	switch {
	case err != nil:
		service.logger.WarnContext(ctx, "profile_cache_restore_failed", slog.Any("error", err))
	case cached != nil && profile.NormalizeUsername(cached.Username) != service.hint:
		service.logger.WarnContext(ctx, "profile_cache_user_mismatch",
			slog.String("cached", cached.Username),
			slog.String("expected", service.hint),
		)
	case cached != nil:
		service.install(*cached)
	}

	// ── 2. Slow path: remote refresh ──
	username := service.resolveUsername(ctx)
	background := context.WithoutCancel(ctx)

	service.wg.Add(1)
	go func() {
		defer service.wg.Done()
		_ = service.FetchUserInfo(background, username)
	}()
}

// Wait blocks until background work started by Start has finished.
func (service *Coordinator) Wait() {
	service.wg.Wait()
}

// Refresh re-fetches the profile of the signed-in user.
func (service *Coordinator) Refresh(ctx context.Context) error {
	return service.FetchUserInfo(ctx, service.resolveUsername(ctx))
}

/*
FetchUserInfo loads the remote document of username and installs it.

Only one fetch runs at a time. A call made while another is in flight returns
nil immediately without touching the remote store. On failure the in-memory
state and the cache are left as they were.
*/
func (service *Coordinator) FetchUserInfo(ctx context.Context, username string) error {
	if !service.fetching.CompareAndSwap(false, true) {
		metrics.FetchDeduplicated.Inc()
		service.logger.DebugContext(ctx, "profile_fetch_deduplicated", slog.String("username", username))
		return nil
	}
	defer service.fetching.Store(false)

	if username == "" {
		return fmt.Errorf("usersync_fetch_failed: %w", ErrNoProfile)
	}

	callCtx, cancel := context.WithTimeout(ctx, service.timeout)
	defer cancel()

	fields, err := service.store.FetchDocument(callCtx, constants.CollectionUsers, username)
	if err != nil {
		service.logger.ErrorContext(ctx, "profile_fetch_failed",
			slog.String("username", username),
			slog.Any("error", err),
		)
		return fmt.Errorf("usersync_fetch_failed: %w", err)
	}

	decoded, err := profile.FromDocument(username, fields, profile.FetchSchema)
	if err != nil {
		service.logger.ErrorContext(ctx, "profile_parse_failed",
			slog.String("username", username),
			slog.Any("error", err),
		)
		return fmt.Errorf("usersync_fetch_failed: %w", err)
	}

	if decoded.DroppedReadings > 0 || decoded.DroppedQuestions > 0 {
		service.logger.WarnContext(ctx, "profile_history_entries_dropped",
			slog.String("username", username),
			slog.Int("readings", decoded.DroppedReadings),
			slog.Int("questions", decoded.DroppedQuestions),
		)
	}

	service.install(decoded.Profile)
	service.saveCache(ctx, decoded.Profile)
	return nil
}

// # Authentication

// SignIn installs a freshly authenticated profile.
func (service *Coordinator) SignIn(ctx context.Context, p profile.UserProfile) {
	service.mu.Lock()
	service.hint = p.Username
	service.mu.Unlock()

	service.install(p)
	service.saveCache(ctx, p)
}

// SignOut forgets the profile locally. The remote document is untouched.
func (service *Coordinator) SignOut(ctx context.Context) error {
	service.mu.Lock()
	service.current = nil
	service.hint = ""
	service.revision++
	service.sink.ClearProfile()
	service.mu.Unlock()

	return service.cache.Clear(ctx)
}

// # Mutations

// UpdateProfile writes the editable fields, then applies them locally.
func (service *Coordinator) UpdateProfile(ctx context.Context, edits profile.Edits) (profile.UserProfile, error) {
	service.writeMu.Lock()
	defer service.writeMu.Unlock()

	current, ok := service.Profile()
	if !ok {
		return profile.UserProfile{}, ErrNoProfile
	}

	callCtx, cancel := context.WithTimeout(ctx, service.timeout)
	defer cancel()

	if err := service.store.UpdateFields(callCtx, constants.CollectionUsers, current.Username, profile.EditFields(edits)); err != nil {
		service.logger.ErrorContext(ctx, "profile_update_failed", slog.Any("error", err))
		return profile.UserProfile{}, fmt.Errorf("usersync_update_profile_failed: %w", err)
	}

	// Apply to whatever is current now, so a fetch that landed meanwhile keeps
	// its histories.
	service.mu.Lock()
	if service.current == nil {
		service.mu.Unlock()
		return profile.UserProfile{}, ErrNoProfile
	}
	next := service.current.WithEdits(edits)
	service.setLocked(next)
	service.mu.Unlock()

	service.saveCache(ctx, next)
	return next.Clone(), nil
}

// AppendReading appends a reading to the tarot history.
func (service *Coordinator) AppendReading(ctx context.Context, reading profile.TarotReading) (profile.UserProfile, error) {
	return service.mutate(ctx, "append_reading", profile.FieldTarotHistory,
		func(p profile.UserProfile) (profile.UserProfile, bool) { return p.WithReading(reading), true },
		func(p profile.UserProfile) any { return profile.ReadingsField(p.TarotHistory) },
	)
}

// AppendQuestion appends a question record to the question history.
func (service *Coordinator) AppendQuestion(ctx context.Context, record profile.QuestionRecord) (profile.UserProfile, error) {
	return service.mutate(ctx, "append_question", profile.FieldQuestionHistory,
		func(p profile.UserProfile) (profile.UserProfile, bool) { return p.WithQuestion(record), true },
		func(p profile.UserProfile) any { return profile.QuestionsField(p.QuestionHistory) },
	)
}

// DeleteReading removes the reading with the given id. Unknown ids are a no-op.
func (service *Coordinator) DeleteReading(ctx context.Context, id string) (profile.UserProfile, error) {
	return service.mutate(ctx, "delete_reading", profile.FieldTarotHistory,
		func(p profile.UserProfile) (profile.UserProfile, bool) { return p.WithoutReading(id) },
		func(p profile.UserProfile) any { return profile.ReadingsField(p.TarotHistory) },
	)
}

// DeleteQuestion removes the question with the given id. Unknown ids are a no-op.
func (service *Coordinator) DeleteQuestion(ctx context.Context, id string) (profile.UserProfile, error) {
	return service.mutate(ctx, "delete_question", profile.FieldQuestionHistory,
		func(p profile.UserProfile) (profile.UserProfile, bool) { return p.WithoutQuestion(id) },
		func(p profile.UserProfile) any { return profile.QuestionsField(p.QuestionHistory) },
	)
}

/*
mutate applies a history change in memory first, then writes the whole
affected array to the remote store.

If the write fails and no later change has replaced this one, the previous
history is restored and pushed to the sink.
*/
func (service *Coordinator) mutate(
	ctx context.Context,
	operation, field string,
	apply func(profile.UserProfile) (profile.UserProfile, bool),
	encode func(profile.UserProfile) any,
) (profile.UserProfile, error) {
	service.writeMu.Lock()
	defer service.writeMu.Unlock()

	// ── 1. Optimistic local apply ──
	service.mu.Lock()
	if service.current == nil {
		service.mu.Unlock()
		return profile.UserProfile{}, ErrNoProfile
	}
	previous := *service.current
	next, changed := apply(previous)
	if !changed {
		service.mu.Unlock()
		return previous.Clone(), nil
	}
	service.setLocked(next)
	applied := service.revision
	service.mu.Unlock()

	// ── 2. Remote write of the whole array ──
	callCtx, cancel := context.WithTimeout(ctx, service.timeout)
	defer cancel()

	err := service.store.UpdateFields(callCtx, constants.CollectionUsers, next.Username, docstore.Fields{field: encode(next)})
	if err != nil {
		service.logger.ErrorContext(ctx, "profile_history_write_failed",
			slog.String("operation", operation),
			slog.Any("error", err),
		)
		service.rollback(ctx, applied, previous, field)
		return profile.UserProfile{}, fmt.Errorf("usersync_%s_failed: %w", operation, err)
	}

	// ── 3. Cache after acknowledgement ──
	service.saveCache(ctx, next)
	return next.Clone(), nil
}

// rollback restores previous if the state is still the one written at revision.
func (service *Coordinator) rollback(ctx context.Context, revision uint64, previous profile.UserProfile, field string) {
	service.mu.Lock()
	defer service.mu.Unlock()

	if service.revision != revision {
		service.logger.WarnContext(ctx, "profile_rollback_superseded", slog.String("history", field))
		return
	}

	service.setLocked(previous)
	metrics.HistoryRollbacks.WithLabelValues(field).Inc()
}

// # Internals

func (service *Coordinator) install(p profile.UserProfile) {
	service.mu.Lock()
	defer service.mu.Unlock()
	service.setLocked(p)
}

// setLocked replaces the current profile and notifies the sink. The caller
// holds mu, which keeps sink updates in the same order as revisions.
func (service *Coordinator) setLocked(p profile.UserProfile) {
	stored := p.Clone()
	service.current = &stored
	service.revision++
	service.sink.SetProfile(p.Clone())
}

func (service *Coordinator) saveCache(ctx context.Context, p profile.UserProfile) {
	if err := service.cache.Save(ctx, p); err != nil {
		service.logger.WarnContext(ctx, "profile_cache_save_failed", slog.Any("error", err))
	}
}

// resolveUsername prefers memory, then the cache's secondary key, then the hint.
func (service *Coordinator) resolveUsername(ctx context.Context) string {
	service.mu.RLock()
	if service.current != nil {
		username := service.current.Username
		service.mu.RUnlock()
		return username
	}
	hint := service.hint
	service.mu.RUnlock()

	username, err := service.cache.LoadUsername(ctx)
	if err != nil {
		service.logger.WarnContext(ctx, "profile_cache_username_failed", slog.Any("error", err))
	}
	if username != "" {
		return profile.NormalizeUsername(username)
	}
	return hint
}
