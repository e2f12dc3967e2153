// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package reading turns selected cards into generated tarot readings.

The generator never fails outward: every problem (transport error, empty
answer, wrong number of cards) comes back as a [Result] whose Text is a
message fit to show the user and whose Err holds the cause.
*/
package reading

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/arcana/internal/platform/ctxutil"
	"github.com/taibuivan/arcana/internal/platform/metrics"
	"github.com/taibuivan/arcana/internal/tarot/deck"
	"github.com/taibuivan/arcana/internal/users/profile"
)

// # User-Visible Messages

const (
	MessageUnavailable      = "The reading could not be generated. Please try again."
	MessageSelectThree      = "Please select 3 cards first."
	MessageEmptyQuestion    = "Please enter a question first."
	MessageSpreadIncomplete = "Please select 7 cards first."
)

// ErrEmptyCompletion is returned when the service answers without usable text.
var ErrEmptyCompletion = errors.New("completion returned no content")

// Kind labels a reading variant in logs and metrics.
type Kind string

const (
	KindOverall  Kind = "overall"
	KindDaily    Kind = "daily"
	KindQuestion Kind = "question"
)

// CompletionRequest is one chat completion call: a system and a user message.
// A zero Temperature leaves the service default.
type CompletionRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// Completer performs chat completions.
type Completer interface {
	Complete(ctx context.Context, request CompletionRequest) (string, error)
}

// Result is the outcome of one reading.
type Result struct {
	Text string
	Err  error
}

// Failed reports whether the reading could not be produced.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Options tune the requests the generator sends.
type Options struct {
	MaxTokens      int
	DailyMaxTokens int
	Temperature    float32
	Language       string
	Timeout        time.Duration
}

// Generator builds prompts and calls the completion service.
type Generator struct {
	completer Completer
	options   Options
}

// NewGenerator creates a generator.
func NewGenerator(completer Completer, options Options) *Generator {
	return &Generator{completer: completer, options: options}
}

// # Reading Variants

// Overall produces the seven-card reading for the chosen category.
func (g *Generator) Overall(ctx context.Context, cards []deck.Card, category profile.Category, user profile.UserProfile) Result {
	spread, err := SpreadOf(cards)
	if err != nil {
		return Result{Text: MessageSpreadIncomplete, Err: err}
	}

	return g.run(ctx, KindOverall, CompletionRequest{
		System:      overallSystemMessage,
		User:        OverallPrompt(spread, category, user, g.options.Language),
		MaxTokens:   g.options.MaxTokens,
		Temperature: g.options.Temperature,
	})
}

// Daily produces the single-card reading of the day.
func (g *Generator) Daily(ctx context.Context, card deck.Card) Result {
	return g.run(ctx, KindDaily, CompletionRequest{
		System:    dailySystemMessage,
		User:      DailyPrompt(card, g.options.Language),
		MaxTokens: g.options.DailyMaxTokens,
	})
}

// Question answers a free-form question from exactly three cards.
func (g *Generator) Question(ctx context.Context, cards []deck.Card, question string, user profile.UserProfile) Result {
	if len(cards) != QuestionCards {
		return Result{Text: MessageSelectThree, Err: errors.New("reading_question_needs_three_cards")}
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return Result{Text: MessageEmptyQuestion, Err: errors.New("reading_question_empty")}
	}

	return g.run(ctx, KindQuestion, CompletionRequest{
		System:      overallSystemMessage,
		User:        QuestionPrompt(cards, question, user, g.options.Language),
		MaxTokens:   g.options.MaxTokens,
		Temperature: g.options.Temperature,
	})
}

// run performs one completion under the configured deadline.
func (g *Generator) run(ctx context.Context, kind Kind, request CompletionRequest) Result {
	logger := ctxutil.Logger(ctx)

	if g.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.options.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := g.completer.Complete(ctx, request)
	metrics.CompletionLatency.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyCompletion
	}

	metrics.CompletionRequests.WithLabelValues(string(kind), metrics.Result(err)).Inc()
	if err != nil {
		logger.ErrorContext(ctx, "reading_generation_failed",
			slog.String("kind", string(kind)),
			slog.Any("error", err),
		)
		return Result{Text: MessageUnavailable, Err: err}
	}

	return Result{Text: strings.TrimSpace(text)}
}
