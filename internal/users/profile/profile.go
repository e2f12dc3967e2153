// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package profile defines the user profile domain model and its document form.

A [UserProfile] is identified by its username, which is also the key of its
document in the "users" collection. The two history logs are append-only
apart from delete-by-id.

Every value here is plain data. Methods that change a profile return a new
value and never modify the receiver's slices, so copies handed to other
components stay stable.
*/
package profile

import (
	"slices"
	"time"

	"github.com/taibuivan/arcana/pkg/slice"
	"github.com/taibuivan/arcana/pkg/uuidv7"
)

// # Defaults

const (
	// DefaultName is the placeholder display name given at registration.
	DefaultName = "New User"

	// DefaultStatus is the placeholder for relationship and work status.
	DefaultStatus = "Unspecified"
)

// # Entities

// TarotReading is one completed multi-card reading.
type TarotReading struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"date"`
	Reading  string    `json:"reading"`
	Category Category  `json:"category"`
}

// QuestionRecord is one free-form question and its generated answer.
type QuestionRecord struct {
	ID       string    `json:"id"`
	Question string    `json:"question"`
	Reading  string    `json:"reading"`
	Date     time.Time `json:"date"`
}

// UserProfile is the full user document.
//
// Password holds the bcrypt hash, never the plain text.
type UserProfile struct {
	Username           string           `json:"username"`
	Password           string           `json:"password"`
	Name               string           `json:"name"`
	BirthDate          time.Time        `json:"birthDate"`
	FavoriteCategory   Category         `json:"favoriteCategory"`
	RelationshipStatus string           `json:"relationshipStatus"`
	WorkStatus         string           `json:"workStatus"`
	TarotHistory       []TarotReading   `json:"tarotHistory"`
	QuestionHistory    []QuestionRecord `json:"questionHistory"`
}

// New returns a freshly registered profile carrying the registration defaults.
func New(username, passwordHash string) UserProfile {
	return UserProfile{
		Username:           NormalizeUsername(username),
		Password:           passwordHash,
		Name:               DefaultName,
		BirthDate:          time.Unix(0, 0).UTC(),
		FavoriteCategory:   CategoryGeneral,
		RelationshipStatus: DefaultStatus,
		WorkStatus:         DefaultStatus,
		TarotHistory:       []TarotReading{},
		QuestionHistory:    []QuestionRecord{},
	}
}

// NewReading stamps a reading with a fresh id at the given instant.
func NewReading(text string, category Category, at time.Time) TarotReading {
	return TarotReading{ID: uuidv7.New(), Date: at.UTC(), Reading: text, Category: category}
}

// NewQuestion stamps a question record with a fresh id at the given instant.
func NewQuestion(question, answer string, at time.Time) QuestionRecord {
	return QuestionRecord{ID: uuidv7.New(), Question: question, Reading: answer, Date: at.UTC()}
}

// NeedsOnboarding reports whether the user still carries the registration placeholder name.
func (p UserProfile) NeedsOnboarding() bool {
	return p.Name == DefaultName
}

// Clone returns a deep copy whose slices share nothing with p.
func (p UserProfile) Clone() UserProfile {
	clone := p
	clone.TarotHistory = slices.Clone(p.TarotHistory)
	clone.QuestionHistory = slices.Clone(p.QuestionHistory)
	return clone
}

// # History Operations

// WithReading returns a copy of p with reading appended to the tarot history.
func (p UserProfile) WithReading(reading TarotReading) UserProfile {
	next := p
	next.TarotHistory = slice.Append(p.TarotHistory, reading)
	return next
}

// WithQuestion returns a copy of p with record appended to the question history.
func (p UserProfile) WithQuestion(record QuestionRecord) UserProfile {
	next := p
	next.QuestionHistory = slice.Append(p.QuestionHistory, record)
	return next
}

// WithoutReading returns a copy of p without the reading whose id matches,
// and whether one was removed. At most one entry is removed.
func (p UserProfile) WithoutReading(id string) (UserProfile, bool) {
	history, removed := slice.RemoveFirst(p.TarotHistory, func(r TarotReading) bool { return r.ID == id })
	next := p
	next.TarotHistory = history
	return next, removed
}

// WithoutQuestion returns a copy of p without the question whose id matches,
// and whether one was removed. At most one entry is removed.
func (p UserProfile) WithoutQuestion(id string) (UserProfile, bool) {
	history, removed := slice.RemoveFirst(p.QuestionHistory, func(q QuestionRecord) bool { return q.ID == id })
	next := p
	next.QuestionHistory = history
	return next, removed
}

// # Profile Edits

// Edits is the set of user-editable profile fields.
type Edits struct {
	Name               string
	BirthDate          time.Time
	FavoriteCategory   Category
	RelationshipStatus string
	WorkStatus         string
}

// WithEdits returns a copy of p with the editable fields replaced.
func (p UserProfile) WithEdits(edits Edits) UserProfile {
	next := p
	next.Name = edits.Name
	next.BirthDate = edits.BirthDate.UTC()
	next.FavoriteCategory = edits.FavoriteCategory
	next.RelationshipStatus = edits.RelationshipStatus
	next.WorkStatus = edits.WorkStatus
	return next
}

// # Equality

// Equal reports structural equality over every field, including both
// histories in order. Instants compare with [time.Time.Equal].
func Equal(a, b UserProfile) bool {
	return a.Username == b.Username &&
		a.Password == b.Password &&
		a.Name == b.Name &&
		a.BirthDate.Equal(b.BirthDate) &&
		a.FavoriteCategory == b.FavoriteCategory &&
		a.RelationshipStatus == b.RelationshipStatus &&
		a.WorkStatus == b.WorkStatus &&
		slices.EqualFunc(a.TarotHistory, b.TarotHistory, func(x, y TarotReading) bool {
			return x.ID == y.ID && x.Date.Equal(y.Date) && x.Reading == y.Reading && x.Category == y.Category
		}) &&
		slices.EqualFunc(a.QuestionHistory, b.QuestionHistory, func(x, y QuestionRecord) bool {
			return x.ID == y.ID && x.Date.Equal(y.Date) && x.Question == y.Question && x.Reading == y.Reading
		})
}
