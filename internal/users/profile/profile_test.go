// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/arcana/internal/platform/docstore"
	"github.com/taibuivan/arcana/internal/users/profile"
)

func sampleProfile() profile.UserProfile {
	p := profile.New("Selin", "$2a$10$hash")
	p.Name = "Selin Kaya"
	p.BirthDate = time.Date(1992, 7, 14, 0, 0, 0, 0, time.UTC)
	p.FavoriteCategory = profile.CategoryLove
	p.RelationshipStatus = "Married"
	p.WorkStatus = "Employed"
	p = p.WithReading(profile.NewReading("The Star rises.", profile.CategoryCareer, time.Date(2024, 1, 2, 3, 4, 5, 600, time.UTC)))
	p = p.WithReading(profile.NewReading("The Moon wanes.", profile.CategoryHealth, time.Date(2024, 2, 2, 3, 4, 5, 0, time.UTC)))
	p = p.WithQuestion(profile.NewQuestion("Will I move?", "Yes, by spring.", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	return p
}

// # Date Decoding

/*
TestDecodeInstant covers every accepted encoding and the rejected ones.
*/
func TestDecodeInstant(t *testing.T) {
	epoch := time.Unix(1700000000, 0).UTC()

	tests := []struct {
		name     string
		value    any
		valid    bool
		want     time.Time
		encoding profile.Encoding
	}{
		{"native_timestamp", docstore.NewTimestamp(epoch), true, epoch, profile.EncodingTimestamp},
		{"float_seconds", float64(1700000000), true, epoch, profile.EncodingEpochSeconds},
		{"int_seconds", int64(1700000000), true, epoch, profile.EncodingEpochSeconds},
		{"numeric_string", "1700000000", true, epoch, profile.EncodingNumericString},
		{"fractional_string", "1700000000.5", true, epoch.Add(500 * time.Millisecond), profile.EncodingNumericString},
		{"garbage_string", "yesterday", false, time.Time{}, profile.EncodingNone},
		{"nan", math.NaN(), false, time.Time{}, profile.EncodingNone},
		{"infinity", math.Inf(1), false, time.Time{}, profile.EncodingNone},
		{"absent", nil, false, time.Time{}, profile.EncodingNone},
		{"wrong_type", true, false, time.Time{}, profile.EncodingNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instant := profile.DecodeInstant(tt.value)

			assert.Equal(t, tt.valid, instant.Valid)
			assert.Equal(t, tt.encoding, instant.Encoding)
			if tt.valid {
				assert.True(t, tt.want.Equal(instant.Time), "got %v", instant.Time)
			}
		})
	}
}

// # Document Round Trip

/*
TestDocument_RoundTrip encodes a profile, stores it, and decodes it back unchanged.
*/
func TestDocument_RoundTrip(t *testing.T) {
	original := sampleProfile()
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SetDocument(ctx, "users", original.Username, profile.ToDocument(original)))

	fields, err := store.FetchDocument(ctx, "users", original.Username)
	require.NoError(t, err)

	decoded, err := profile.FromDocument(original.Username, fields, profile.FetchSchema)
	require.NoError(t, err)

	assert.True(t, profile.Equal(original, decoded.Profile))
	assert.Zero(t, decoded.DroppedReadings)
	assert.Zero(t, decoded.DroppedQuestions)
}

/*
TestDocument_NumericStringDate parses a history date stored as "1700000000".
*/
func TestDocument_NumericStringDate(t *testing.T) {
	fields := profile.ToDocument(sampleProfile())
	fields[profile.FieldTarotHistory] = []any{
		map[string]any{
			"id":       "3F2504E0-4F89-11D3-9A0C-0305E82C3301",
			"date":     "1700000000",
			"reading":  "legacy",
			"category": "Aşk",
		},
	}

	decoded, err := profile.FromDocument("selin", fields, profile.FetchSchema)
	require.NoError(t, err)

	require.Len(t, decoded.Profile.TarotHistory, 1)
	entry := decoded.Profile.TarotHistory[0]
	assert.True(t, time.Unix(1700000000, 0).Equal(entry.Date))
	assert.Equal(t, "3f2504e0-4f89-11d3-9a0c-0305e82c3301", entry.ID)
	assert.Equal(t, profile.CategoryLove, entry.Category)
}

/*
TestDocument_DropsMalformedElements keeps good history entries and skips bad ones.
*/
func TestDocument_DropsMalformedElements(t *testing.T) {
	good := "8a1f6c2e-0d0b-4c5e-9a57-3f1d2b7c9e10"
	fields := profile.ToDocument(sampleProfile())
	fields[profile.FieldTarotHistory] = []any{
		map[string]any{"id": good, "date": 1700000000.0, "reading": "kept", "category": "General"},
		map[string]any{"id": good, "date": "not a date", "reading": "bad date", "category": "General"},
		map[string]any{"id": "not-a-uuid", "date": 1700000000.0, "reading": "bad id", "category": "General"},
		map[string]any{"id": good, "date": 1700000000.0, "reading": "bad category", "category": "Money"},
		"not an object",
	}
	fields[profile.FieldQuestionHistory] = []any{
		map[string]any{"id": good, "question": "q", "reading": "a"},
	}

	decoded, err := profile.FromDocument("selin", fields, profile.FetchSchema)
	require.NoError(t, err)

	require.Len(t, decoded.Profile.TarotHistory, 1)
	assert.Equal(t, "kept", decoded.Profile.TarotHistory[0].Reading)
	assert.Equal(t, 4, decoded.DroppedReadings)
	assert.Empty(t, decoded.Profile.QuestionHistory)
	assert.Equal(t, 1, decoded.DroppedQuestions)
}

/*
TestDocument_SchemaPolicy checks required versus defaulted top-level fields.
*/
func TestDocument_SchemaPolicy(t *testing.T) {
	t.Run("fetch_rejects_missing_birth_date", func(t *testing.T) {
		fields := profile.ToDocument(sampleProfile())
		delete(fields, profile.FieldBirthDate)

		_, err := profile.FromDocument("selin", fields, profile.FetchSchema)

		var parseErr *profile.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, profile.FieldBirthDate, parseErr.Field)
	})

	t.Run("fetch_rejects_wrong_typed_name", func(t *testing.T) {
		fields := profile.ToDocument(sampleProfile())
		fields[profile.FieldName] = 42.0

		_, err := profile.FromDocument("selin", fields, profile.FetchSchema)

		var parseErr *profile.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, profile.FieldName, parseErr.Field)
	})

	t.Run("fetch_defaults_missing_password", func(t *testing.T) {
		fields := profile.ToDocument(sampleProfile())
		delete(fields, profile.FieldPassword)

		decoded, err := profile.FromDocument("selin", fields, profile.FetchSchema)
		require.NoError(t, err)
		assert.Empty(t, decoded.Profile.Password)
	})

	t.Run("login_defaults_everything", func(t *testing.T) {
		decoded, err := profile.FromDocument("Selin", docstore.Fields{profile.FieldPassword: "hash"}, profile.LoginSchema)
		require.NoError(t, err)

		p := decoded.Profile
		assert.Equal(t, "selin", p.Username)
		assert.Equal(t, "hash", p.Password)
		assert.Equal(t, profile.DefaultName, p.Name)
		assert.True(t, time.Unix(0, 0).Equal(p.BirthDate))
		assert.Equal(t, profile.CategoryGeneral, p.FavoriteCategory)
		assert.Equal(t, profile.DefaultStatus, p.WorkStatus)
		assert.True(t, p.NeedsOnboarding())
	})
}

// # History Operations

/*
TestHistory_DeleteByID removes exactly one matching entry and ignores unknown ids.
*/
func TestHistory_DeleteByID(t *testing.T) {
	p := sampleProfile()
	target := p.TarotHistory[0].ID

	next, removed := p.WithoutReading(target)
	assert.True(t, removed)
	assert.Len(t, next.TarotHistory, 1)
	assert.NotEqual(t, target, next.TarotHistory[0].ID)

	// The original value is untouched.
	assert.Len(t, p.TarotHistory, 2)

	same, removed := next.WithoutReading("00000000-0000-0000-0000-000000000000")
	assert.False(t, removed)
	assert.True(t, profile.Equal(next, same))

	q, removed := p.WithoutQuestion(p.QuestionHistory[0].ID)
	assert.True(t, removed)
	assert.Empty(t, q.QuestionHistory)
}

/*
TestEqual_DetectsDifferences compares instants by value and histories by order.
*/
func TestEqual_DetectsDifferences(t *testing.T) {
	p := sampleProfile()

	shifted := p.Clone()
	shifted.BirthDate = p.BirthDate.In(time.FixedZone("UTC+3", 3*3600))
	assert.True(t, profile.Equal(p, shifted))

	reordered := p.Clone()
	reordered.TarotHistory[0], reordered.TarotHistory[1] = reordered.TarotHistory[1], reordered.TarotHistory[0]
	assert.False(t, profile.Equal(p, reordered))
}

// # Categories

/*
TestParseCategory accepts any casing and the legacy labels.
*/
func TestParseCategory(t *testing.T) {
	tests := []struct {
		label string
		want  profile.Category
		ok    bool
	}{
		{"Love", profile.CategoryLove, true},
		{" career ", profile.CategoryCareer, true},
		{"HEALTH", profile.CategoryHealth, true},
		{"Genel", profile.CategoryGeneral, true},
		{"sağlık", profile.CategoryHealth, true},
		{"Money", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := profile.ParseCategory(tt.label)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

/*
TestNormalizeUsername folds case and composes Unicode.
*/
func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "selin", profile.NormalizeUsername("  Selin "))
	// "E" followed by a combining acute accent composes to a single "é".
	assert.Equal(t, "josé", profile.NormalizeUsername("JOSÉ"))
}
