// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package workspace composes the per-session state of one signed-in device.

# Composition

A [Workspace] owns, for one session id:

  - the card-selection [session.Session] and its event emitter
  - the [usersync.Coordinator] syncing the profile with the document store
  - the Redis cache slot behind that coordinator
  - a completion rate limiter

The [Registry] creates workspaces on login, recreates them lazily after a
restart, and tears them down on logout.
*/
package workspace

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/taibuivan/arcana/internal/platform/apperr"
	"github.com/taibuivan/arcana/internal/platform/validate"
	"github.com/taibuivan/arcana/internal/tarot/reading"
	"github.com/taibuivan/arcana/internal/tarot/session"
	"github.com/taibuivan/arcana/internal/users/profile"
	"github.com/taibuivan/arcana/internal/users/usersync"
)

// MessageRateLimited is the reading text shown when the completion limiter refuses a request.
const MessageRateLimited = "Too many readings requested. Please wait a moment and try again."

var (
	// ErrNothingToSave is returned when the session holds no completed reading.
	ErrNothingToSave = errors.New("no completed reading to save")

	errRateLimited = errors.New("completion rate limit exceeded")
)

// Workspace is the state of one signed-in session.
type Workspace struct {
	sessionID   string
	session     *session.Session
	coordinator *usersync.Coordinator
	generator   *reading.Generator
	limiter     *rate.Limiter
	logger      *slog.Logger
	now         func() time.Time

	generating sync.WaitGroup
}

// SessionID returns the id of the session the workspace belongs to.
func (w *Workspace) SessionID() string {
	return w.sessionID
}

// Session returns the card-selection state.
func (w *Workspace) Session() *session.Session {
	return w.session
}

// Wait blocks until background profile fetches and generations have finished.
func (w *Workspace) Wait() {
	w.coordinator.Wait()
	w.generating.Wait()
}

// # Card Session

/*
SelectCard selects a card and returns the resulting state.

The seventh selection starts the overall reading in the background. The
generation runs on a context detached from ctx, so a client that disconnects
does not leave the session loading forever.
*/
func (w *Workspace) SelectCard(ctx context.Context, cardID string) (session.Snapshot, error) {
	request, err := w.session.SelectCard(cardID)
	if err != nil {
		return session.Snapshot{}, translate(err)
	}

	if request != nil {
		w.generating.Add(1)
		go func() {
			defer w.generating.Done()
			w.generate(context.WithoutCancel(ctx), request)
		}()
	}

	return w.session.Snapshot(), nil
}

// generate runs the overall reading of one cycle and hands the outcome back to the session.
func (w *Workspace) generate(ctx context.Context, request *session.GenerationRequest) {
	var result reading.Result
	if w.limiter.Allow() {
		result = w.generator.Overall(ctx, request.Cards, request.Category, request.Profile)
	} else {
		result = reading.Result{Text: MessageRateLimited, Err: errRateLimited}
	}

	applied := w.session.CompleteGeneration(request.Cycle, session.Outcome{Text: result.Text, Failed: result.Failed()})
	if !applied {
		w.logger.DebugContext(ctx, "reading_result_discarded", slog.Uint64("cycle", request.Cycle))
	}
}

// Reset clears the selection and deals a new deck.
func (w *Workspace) Reset() session.Snapshot {
	w.session.Reset()
	return w.session.Snapshot()
}

// SetCategory changes the category of the next reading.
func (w *Workspace) SetCategory(category profile.Category) session.Snapshot {
	w.session.SetCategory(category)
	return w.session.Snapshot()
}

// # Standalone Readings

// DailyReading draws the reading of the day for one card of the deck.
func (w *Workspace) DailyReading(ctx context.Context, cardID string) (reading.Result, error) {
	cards, err := w.session.Cards([]string{cardID})
	if err != nil {
		return reading.Result{}, translate(err)
	}

	if !w.limiter.Allow() {
		return reading.Result{Text: MessageRateLimited, Err: errRateLimited}, nil
	}
	return w.generator.Daily(ctx, cards[0]), nil
}

// AskQuestion answers question from the given cards. The answer is not saved;
// the client persists it through SaveQuestion.
func (w *Workspace) AskQuestion(ctx context.Context, cardIDs []string, question string) (reading.Result, error) {
	user, ok := w.coordinator.Profile()
	if !ok {
		return reading.Result{}, translate(session.ErrProfileRequired)
	}

	cards, err := w.session.Cards(cardIDs)
	if err != nil {
		return reading.Result{}, translate(err)
	}

	if len(cards) == reading.QuestionCards && !w.limiter.Allow() {
		return reading.Result{Text: MessageRateLimited, Err: errRateLimited}, nil
	}
	return w.generator.Question(ctx, cards, question, user), nil
}

// # Profile

// Profile returns the signed-in user's profile.
func (w *Workspace) Profile() (profile.UserProfile, error) {
	p, ok := w.coordinator.Profile()
	if !ok {
		return profile.UserProfile{}, translate(session.ErrProfileRequired)
	}
	return p, nil
}

// UpdateProfile saves edits and returns the updated profile.
func (w *Workspace) UpdateProfile(ctx context.Context, edits profile.Edits) (profile.UserProfile, error) {
	if !edits.FavoriteCategory.Valid() {
		return profile.UserProfile{}, validate.Field(FieldFavoriteCategory, "must be one of General, Love, Career, Health")
	}

	updated, err := w.coordinator.UpdateProfile(ctx, edits)
	if err != nil {
		return profile.UserProfile{}, translate(err)
	}
	return updated, nil
}

// Refresh re-fetches the profile from the document store.
func (w *Workspace) Refresh(ctx context.Context) (profile.UserProfile, error) {
	if err := w.coordinator.Refresh(ctx); err != nil {
		return profile.UserProfile{}, translate(err)
	}
	return w.Profile()
}

// # History

// SaveReading appends the completed reading of the current cycle to the tarot history.
func (w *Workspace) SaveReading(ctx context.Context) (profile.TarotReading, error) {
	snapshot := w.session.Snapshot()
	if snapshot.Phase != session.PhaseComplete {
		return profile.TarotReading{}, translate(ErrNothingToSave)
	}

	entry := profile.NewReading(snapshot.ReadingText, snapshot.Category, w.now())
	if _, err := w.coordinator.AppendReading(ctx, entry); err != nil {
		return profile.TarotReading{}, translate(err)
	}
	return entry, nil
}

// SaveQuestion appends a question and its answer to the question history.
func (w *Workspace) SaveQuestion(ctx context.Context, question, answer string) (profile.QuestionRecord, error) {
	record := profile.NewQuestion(question, answer, w.now())
	if _, err := w.coordinator.AppendQuestion(ctx, record); err != nil {
		return profile.QuestionRecord{}, translate(err)
	}
	return record, nil
}

// DeleteReading removes a reading from the tarot history.
func (w *Workspace) DeleteReading(ctx context.Context, id string) error {
	current, err := w.Profile()
	if err != nil {
		return err
	}

	id = canonicalID(id)
	if !slices.ContainsFunc(current.TarotHistory, func(r profile.TarotReading) bool { return r.ID == id }) {
		return apperr.NotFound("Reading")
	}

	_, err = w.coordinator.DeleteReading(ctx, id)
	return translate(err)
}

// DeleteQuestion removes a question from the question history.
func (w *Workspace) DeleteQuestion(ctx context.Context, id string) error {
	current, err := w.Profile()
	if err != nil {
		return err
	}

	id = canonicalID(id)
	if !slices.ContainsFunc(current.QuestionHistory, func(q profile.QuestionRecord) bool { return q.ID == id }) {
		return apperr.NotFound("Question")
	}

	_, err = w.coordinator.DeleteQuestion(ctx, id)
	return translate(err)
}

// canonicalID matches the lowercase form history ids are stored in.
func canonicalID(id string) string {
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed.String()
	}
	return id
}

// translate maps domain errors to client errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case apperr.IsAppError(err):
		return err
	case errors.Is(err, session.ErrProfileRequired), errors.Is(err, usersync.ErrNoProfile):
		return apperr.PreconditionRequired("Profile is not loaded yet").WithCause(err)
	case errors.Is(err, session.ErrCardNotFound):
		return apperr.NotFound("Card").WithCause(err)
	case errors.Is(err, ErrNothingToSave):
		return apperr.PreconditionRequired("There is no completed reading to save").WithCause(err)
	default:
		return apperr.Unavailable("The profile service is unavailable. Please try again.", err)
	}
}
