// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taibuivan/arcana/internal/platform/docstore"
	"github.com/taibuivan/arcana/pkg/slice"
)

// # Document Fields

const (
	FieldUsername           = "username"
	FieldPassword           = "password"
	FieldName               = "name"
	FieldBirthDate          = "birthDate"
	FieldFavoriteCategory   = "favoriteCategory"
	FieldRelationshipStatus = "relationshipStatus"
	FieldWorkStatus         = "workStatus"
	FieldTarotHistory       = "tarotHistory"
	FieldQuestionHistory    = "questionHistory"
)

// ParseError reports the first top-level field that failed its schema rule.
type ParseError struct {
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("profile field %q: %s", e.Field, e.Reason)
}

// # Schemas

// Schema decides, per top-level scalar field, whether a missing or
// wrong-typed value rejects the document or is replaced by a default.
// Fields absent from Defaults are required.
type Schema struct {
	Name     string
	Defaults map[string]any
}

// FetchSchema is applied when refreshing a signed-in profile. Every scalar is
// required except the password, which older documents may lack.
var FetchSchema = Schema{
	Name: "fetch",
	Defaults: map[string]any{
		FieldPassword: "",
	},
}

// LoginSchema is applied at login, where a partially filled document must
// still let the user in. Missing values fall back to the registration defaults.
var LoginSchema = Schema{
	Name: "login",
	Defaults: map[string]any{
		FieldPassword:           "",
		FieldName:               DefaultName,
		FieldBirthDate:          time.Unix(0, 0).UTC(),
		FieldFavoriteCategory:   CategoryGeneral,
		FieldRelationshipStatus: DefaultStatus,
		FieldWorkStatus:         DefaultStatus,
	},
}

// # Encoding

// ToDocument converts a profile into its remote document shape.
func ToDocument(p UserProfile) docstore.Fields {
	return docstore.Fields{
		FieldUsername:           p.Username,
		FieldPassword:           p.Password,
		FieldName:               p.Name,
		FieldBirthDate:          docstore.NewTimestamp(p.BirthDate),
		FieldFavoriteCategory:   string(p.FavoriteCategory),
		FieldRelationshipStatus: p.RelationshipStatus,
		FieldWorkStatus:         p.WorkStatus,
		FieldTarotHistory:       ReadingsField(p.TarotHistory),
		FieldQuestionHistory:    QuestionsField(p.QuestionHistory),
	}
}

// EditFields returns the partial update written by a profile edit.
func EditFields(edits Edits) docstore.Fields {
	return docstore.Fields{
		FieldName:               edits.Name,
		FieldBirthDate:          docstore.NewTimestamp(edits.BirthDate),
		FieldFavoriteCategory:   string(edits.FavoriteCategory),
		FieldRelationshipStatus: edits.RelationshipStatus,
		FieldWorkStatus:         edits.WorkStatus,
	}
}

// ReadingsField encodes the whole tarot history array.
func ReadingsField(history []TarotReading) []any {
	encoded := slice.Map(history, func(r TarotReading) any {
		return map[string]any{
			"id":       r.ID,
			"date":     docstore.NewTimestamp(r.Date),
			"reading":  r.Reading,
			"category": string(r.Category),
		}
	})
	if encoded == nil {
		return []any{}
	}
	return encoded
}

// QuestionsField encodes the whole question history array.
func QuestionsField(history []QuestionRecord) []any {
	encoded := slice.Map(history, func(q QuestionRecord) any {
		return map[string]any{
			"id":       q.ID,
			"question": q.Question,
			"reading":  q.Reading,
			"date":     docstore.NewTimestamp(q.Date),
		}
	})
	if encoded == nil {
		return []any{}
	}
	return encoded
}

// # Decoding

// Decoded carries the parsed profile plus the count of history elements
// that were dropped as malformed.
type Decoded struct {
	Profile          UserProfile
	DroppedReadings  int
	DroppedQuestions int
}

// FromDocument parses a remote document under the given schema.
//
// The username always comes from the document key. Top-level scalars are
// all-or-nothing: the first field that fails a required rule aborts the parse
// with a [*ParseError]. History arrays are permissive and drop only the
// malformed elements.
func FromDocument(key string, fields docstore.Fields, schema Schema) (Decoded, error) {
	var decoded Decoded
	p := &decoded.Profile
	p.Username = NormalizeUsername(key)

	var err error
	if p.Password, err = stringField(fields, FieldPassword, schema); err != nil {
		return Decoded{}, err
	}
	if p.Name, err = stringField(fields, FieldName, schema); err != nil {
		return Decoded{}, err
	}
	if p.BirthDate, err = instantField(fields, FieldBirthDate, schema); err != nil {
		return Decoded{}, err
	}
	if p.FavoriteCategory, err = categoryField(fields, FieldFavoriteCategory, schema); err != nil {
		return Decoded{}, err
	}
	if p.RelationshipStatus, err = stringField(fields, FieldRelationshipStatus, schema); err != nil {
		return Decoded{}, err
	}
	if p.WorkStatus, err = stringField(fields, FieldWorkStatus, schema); err != nil {
		return Decoded{}, err
	}

	p.TarotHistory, decoded.DroppedReadings = parseReadings(fields[FieldTarotHistory])
	p.QuestionHistory, decoded.DroppedQuestions = parseQuestions(fields[FieldQuestionHistory])

	return decoded, nil
}

func missing(field string, schema Schema, reason string) (any, error) {
	if fallback, hasDefault := schema.Defaults[field]; hasDefault {
		return fallback, nil
	}
	return nil, &ParseError{Field: field, Reason: reason}
}

func stringField(fields docstore.Fields, field string, schema Schema) (string, error) {
	raw, present := fields[field]
	if !present {
		fallback, err := missing(field, schema, "missing")
		if err != nil {
			return "", err
		}
		return fallback.(string), nil
	}

	value, ok := raw.(string)
	if !ok {
		fallback, err := missing(field, schema, fmt.Sprintf("expected string, got %T", raw))
		if err != nil {
			return "", err
		}
		return fallback.(string), nil
	}
	return value, nil
}

func instantField(fields docstore.Fields, field string, schema Schema) (time.Time, error) {
	instant := DecodeInstant(fields[field])
	if instant.Valid {
		return instant.Time, nil
	}

	fallback, err := missing(field, schema, "missing or unreadable date")
	if err != nil {
		return time.Time{}, err
	}
	return fallback.(time.Time), nil
}

func categoryField(fields docstore.Fields, field string, schema Schema) (Category, error) {
	if label, ok := fields[field].(string); ok {
		if category, err := ParseCategory(label); err == nil {
			return category, nil
		}
	}

	fallback, err := missing(field, schema, "missing or unknown category")
	if err != nil {
		return "", err
	}
	return fallback.(Category), nil
}

// parseReadings keeps every well-formed element and counts the rest.
func parseReadings(raw any) ([]TarotReading, int) {
	elements, _ := raw.([]any)
	history := make([]TarotReading, 0, len(elements))

	for _, element := range elements {
		entry, ok := element.(map[string]any)
		if !ok {
			continue
		}

		id, idOK := historyID(entry)
		text, textOK := entry["reading"].(string)
		label, labelOK := entry["category"].(string)
		instant := DecodeInstant(entry["date"])
		if !idOK || !textOK || !labelOK || !instant.Valid {
			continue
		}

		category, err := ParseCategory(label)
		if err != nil {
			continue
		}

		history = append(history, TarotReading{ID: id, Date: instant.Time, Reading: text, Category: category})
	}

	return history, len(elements) - len(history)
}

// parseQuestions keeps every well-formed element and counts the rest.
func parseQuestions(raw any) ([]QuestionRecord, int) {
	elements, _ := raw.([]any)
	history := make([]QuestionRecord, 0, len(elements))

	for _, element := range elements {
		entry, ok := element.(map[string]any)
		if !ok {
			continue
		}

		id, idOK := historyID(entry)
		question, questionOK := entry["question"].(string)
		answer, answerOK := entry["reading"].(string)
		instant := DecodeInstant(entry["date"])
		if !idOK || !questionOK || !answerOK || !instant.Valid {
			continue
		}

		history = append(history, QuestionRecord{ID: id, Question: question, Reading: answer, Date: instant.Time})
	}

	return history, len(elements) - len(history)
}

// historyID accepts any UUID spelling and returns the canonical lowercase form.
func historyID(entry map[string]any) (string, bool) {
	raw, ok := entry["id"].(string)
	if !ok {
		return "", false
	}

	parsed, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
