// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reading_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/arcana/internal/tarot/deck"
	"github.com/taibuivan/arcana/internal/tarot/reading"
	"github.com/taibuivan/arcana/internal/users/profile"
)

// # Fixtures

func cards(names ...string) []deck.Card {
	out := make([]deck.Card, len(names))
	for i, name := range names {
		out[i] = deck.Card{ID: name, Name: name, Image: name + ".jpg"}
	}
	return out
}

func user() profile.UserProfile {
	p := profile.New("selin", "hash")
	p.Name = "Selin"
	p.BirthDate = time.Date(1992, time.July, 23, 0, 0, 0, 0, time.UTC)
	p.WorkStatus = "Employed"
	p.RelationshipStatus = "Single"
	return p
}

type scriptedCompleter struct {
	text     string
	err      error
	requests []reading.CompletionRequest
}

func (c *scriptedCompleter) Complete(_ context.Context, request reading.CompletionRequest) (string, error) {
	c.requests = append(c.requests, request)
	return c.text, c.err
}

var options = reading.Options{
	MaxTokens:      4000,
	DailyMaxTokens: 2000,
	Temperature:    0.7,
	Language:       "English",
	Timeout:        time.Second,
}

// # Zodiac

/*
TestZodiacSign checks both sides of every cusp.
*/
func TestZodiacSign(t *testing.T) {
	tests := []struct {
		month time.Month
		day   int
		want  reading.Sign
	}{
		{time.January, 19, reading.Capricorn},
		{time.January, 20, reading.Aquarius},
		{time.February, 18, reading.Aquarius},
		{time.February, 19, reading.Pisces},
		{time.March, 20, reading.Pisces},
		{time.March, 21, reading.Aries},
		{time.April, 19, reading.Aries},
		{time.April, 20, reading.Taurus},
		{time.May, 20, reading.Taurus},
		{time.May, 21, reading.Gemini},
		{time.June, 20, reading.Gemini},
		{time.June, 21, reading.Cancer},
		{time.July, 22, reading.Cancer},
		{time.July, 23, reading.Leo},
		{time.August, 22, reading.Leo},
		{time.August, 23, reading.Virgo},
		{time.September, 22, reading.Virgo},
		{time.September, 23, reading.Libra},
		{time.October, 22, reading.Libra},
		{time.October, 23, reading.Scorpio},
		{time.November, 21, reading.Scorpio},
		{time.November, 22, reading.Sagittarius},
		{time.December, 21, reading.Sagittarius},
		{time.December, 22, reading.Capricorn},
		{time.Month(13), 1, reading.UnknownSign},
	}

	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, reading.ZodiacSign(tt.month, tt.day), "%s %d", tt.month, tt.day)
		})
	}
}

// # Prompts

/*
TestOverallPrompt_Positions maps A..G to present, past and future in selection order.
*/
func TestOverallPrompt_Positions(t *testing.T) {
	spread, err := reading.SpreadOf(cards("A", "B", "C", "D", "E", "F", "G"))
	require.NoError(t, err)

	assert.Equal(t, reading.Spread{Present: "A", Past: "B, C, D", Future: "E, F, G"}, spread)

	prompt := reading.OverallPrompt(spread, profile.CategoryLove, user(), "English")
	assert.Contains(t, prompt, "You are providing a tarot reading for the category: Love.")
	assert.Contains(t, prompt, "- User: Selin\n")
	assert.Contains(t, prompt, "- Zodiac Sign: Leo\n")
	assert.Contains(t, prompt, "- Work Status: Employed\n")
	assert.Contains(t, prompt, "- Relationship Status: Single\n")
	assert.Contains(t, prompt, "- Present: A\n- Past: B, C, D\n- Future: E, F, G\n")
	assert.Contains(t, prompt, "Write the reading in English.")

	_, err = reading.SpreadOf(cards("A", "B"))
	assert.Error(t, err)
}

// # Generator

/*
TestGenerator_Overall sends one request with the configured limits and trims the answer.
*/
func TestGenerator_Overall(t *testing.T) {
	completer := &scriptedCompleter{text: "  The Sun smiles on you.  \n"}
	generator := reading.NewGenerator(completer, options)

	result := generator.Overall(context.Background(), cards("A", "B", "C", "D", "E", "F", "G"), profile.CategoryCareer, user())

	require.False(t, result.Failed())
	assert.Equal(t, "The Sun smiles on you.", result.Text)
	require.Len(t, completer.requests, 1)
	assert.Equal(t, 4000, completer.requests[0].MaxTokens)
	assert.InDelta(t, 0.7, completer.requests[0].Temperature, 0.0001)
	assert.Equal(t, "You are a helpful assistant providing tarot readings.", completer.requests[0].System)
}

/*
TestGenerator_FailuresBecomeMessages never lets an error escape as anything but a Result.
*/
func TestGenerator_FailuresBecomeMessages(t *testing.T) {
	tests := []struct {
		name      string
		completer *scriptedCompleter
	}{
		{"transport_error", &scriptedCompleter{err: errors.New("dial tcp: refused")}},
		{"blank_content", &scriptedCompleter{text: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := reading.NewGenerator(tt.completer, options).Daily(context.Background(), cards("The Star")[0])
			assert.True(t, result.Failed())
			assert.Equal(t, reading.MessageUnavailable, result.Text)
		})
	}
}

/*
TestGenerator_Question requires exactly three cards and a question.
*/
func TestGenerator_Question(t *testing.T) {
	completer := &scriptedCompleter{text: "Yes."}
	generator := reading.NewGenerator(completer, options)

	result := generator.Question(context.Background(), cards("A", "B"), "Will it rain?", user())
	assert.True(t, result.Failed())
	assert.Equal(t, reading.MessageSelectThree, result.Text)
	assert.Empty(t, completer.requests)

	result = generator.Question(context.Background(), cards("A", "B", "C"), "Will it rain?", user())
	require.False(t, result.Failed())
	assert.Equal(t, "Yes.", result.Text)
	assert.Contains(t, completer.requests[0].User, "The user asked this question: Will it rain?")
	assert.Contains(t, completer.requests[0].User, "- A\n- B\n- C\n")
}

/*
TestGenerator_DailyLimits uses the daily token budget and no temperature.
*/
func TestGenerator_DailyLimits(t *testing.T) {
	completer := &scriptedCompleter{text: "A bright day."}
	reading.NewGenerator(completer, options).Daily(context.Background(), cards("The Sun")[0])

	require.Len(t, completer.requests, 1)
	assert.Equal(t, 2000, completer.requests[0].MaxTokens)
	assert.Zero(t, completer.requests[0].Temperature)
	assert.Contains(t, completer.requests[0].User, "The Sun")
}

// # OpenAI Completer

/*
TestOpenAICompleter_RoundTrip talks to a fake chat completions endpoint.
*/
func TestOpenAICompleter_RoundTrip(t *testing.T) {
	var received struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":0,"model":"gpt-3.5-turbo",
			"choices":[{"index":0,"message":{"role":"assistant","content":"The Moon guides you."},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	completer := reading.NewOpenAICompleter("test-key", server.URL+"/v1", "gpt-3.5-turbo", server.Client())
	text, err := completer.Complete(context.Background(), reading.CompletionRequest{System: "sys", User: "usr", MaxTokens: 10})

	require.NoError(t, err)
	assert.Equal(t, "The Moon guides you.", text)
	assert.Equal(t, "gpt-3.5-turbo", received.Model)
	assert.Equal(t, 10, received.MaxTokens)
	require.Len(t, received.Messages, 2)
	assert.Equal(t, "system", received.Messages[0].Role)
	assert.Equal(t, "usr", received.Messages[1].Content)
}

/*
TestOpenAICompleter_Failures maps error statuses and empty choices to errors.
*/
func TestOpenAICompleter_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server_error", http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`},
		{"no_choices", http.StatusOK, `{"id":"c2","object":"chat.completion","choices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			completer := reading.NewOpenAICompleter("k", server.URL+"/v1", "m", server.Client())
			_, err := completer.Complete(context.Background(), reading.CompletionRequest{User: "x"})
			assert.Error(t, err)
		})
	}
}
