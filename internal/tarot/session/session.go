// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session holds the card-selection state of one signed-in session.

# Phases

	NoCardsSelected -> Selecting (1..6) -> ReadyToGenerate (7) -> Generating -> Complete
	                                                                         \-> Failed

Reset returns to NoCardsSelected from any phase. Independently of the phase,
a gate keeps card interaction closed until a profile is present:

	Idle -> AwaitingProfile -> Ready

Selecting the seventh card hands out exactly one [GenerationRequest] per reset
cycle. Its result comes back through CompleteGeneration; a result for a cycle
that has since been reset is discarded.

Every transition is published through the session's [Emitter].
*/
package session

import (
	"errors"
	"slices"
	"sync"

	"github.com/taibuivan/arcana/internal/tarot/deck"
	"github.com/taibuivan/arcana/internal/users/profile"
)

// MaxSelected is the size of a full reading spread.
const MaxSelected = 7

var (
	// ErrProfileRequired is returned for card interaction before a profile is loaded.
	ErrProfileRequired = errors.New("session has no profile")

	// ErrCardNotFound is returned for card ids that are not in the current deck.
	ErrCardNotFound = errors.New("card not in deck")
)

// # States

// Phase is the position in the selection workflow.
type Phase string

const (
	PhaseNoCardsSelected Phase = "no_cards_selected"
	PhaseSelecting       Phase = "selecting"
	PhaseReadyToGenerate Phase = "ready_to_generate"
	PhaseGenerating      Phase = "generating"
	PhaseComplete        Phase = "complete"
	PhaseFailed          Phase = "failed"
)

// Gate tells whether card interaction is open.
type Gate string

const (
	GateIdle            Gate = "idle"
	GateAwaitingProfile Gate = "awaiting_profile"
	GateReady           Gate = "ready"
)

// GenerationRequest is handed out once, when the seventh card is selected.
type GenerationRequest struct {
	Cycle    uint64
	Cards    []deck.Card
	Category profile.Category
	Profile  profile.UserProfile
}

// Outcome is the result of a generation. A failed outcome carries the
// message shown to the user in Text.
type Outcome struct {
	Text   string
	Failed bool
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	Phase       Phase            `json:"phase"`
	Gate        Gate             `json:"gate"`
	Deck        []deck.Card      `json:"deck"`
	Selected    []deck.Card      `json:"selected"`
	ReadingText string           `json:"reading_text"`
	IsLoading   bool             `json:"is_loading"`
	Category    profile.Category `json:"category"`
	Cycle       uint64           `json:"cycle"`
	Profile     *profile.View    `json:"profile,omitempty"`
}

// # Session

// Session is a mutex-guarded state container. Results of I/O re-enter it
// only through its methods.
type Session struct {
	mu       sync.Mutex
	catalog  *deck.Catalog
	shuffler deck.Shuffler
	emitter  *Emitter

	deck        []deck.Card
	selected    []deck.Card
	readingText string
	isLoading   bool
	phase       Phase
	category    profile.Category
	cycle       uint64

	profile  *profile.UserProfile
	awaiting bool
}

// New creates a session with a freshly shuffled deck.
func New(catalog *deck.Catalog, shuffler deck.Shuffler, emitter *Emitter) *Session {
	return &Session{
		catalog:  catalog,
		shuffler: shuffler,
		emitter:  emitter,
		deck:     catalog.Deal(shuffler),
		phase:    PhaseNoCardsSelected,
		category: profile.CategoryGeneral,
	}
}

// Emitter returns the emitter the session publishes to.
func (s *Session) Emitter() *Emitter {
	return s.emitter
}

// # Card Selection

/*
SelectCard moves a card from the deck to the end of the selection.

Selecting a card that is already selected, or selecting once seven cards are
chosen, changes nothing. The seventh selection moves the session into
Generating and returns the one request for this cycle; every other call
returns nil.
*/
func (s *Session) SelectCard(cardID string) (*GenerationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile == nil {
		return nil, ErrProfileRequired
	}

	if len(s.selected) >= MaxSelected || containsCard(s.selected, cardID) {
		return nil, nil
	}

	index := slices.IndexFunc(s.deck, func(c deck.Card) bool { return c.ID == cardID })
	if index < 0 {
		return nil, ErrCardNotFound
	}

	card := s.deck[index]
	s.deck = slices.Delete(s.deck, index, index+1)
	s.selected = append(s.selected, card)
	s.phase = PhaseSelecting
	s.emitLocked(EventCardSelected)

	if len(s.selected) < MaxSelected {
		return nil, nil
	}

	s.phase = PhaseReadyToGenerate
	s.emitLocked(EventSpreadComplete)

	s.phase = PhaseGenerating
	s.isLoading = true
	s.emitLocked(EventGenerationStarted)

	return &GenerationRequest{
		Cycle:    s.cycle,
		Cards:    slices.Clone(s.selected),
		Category: s.category,
		Profile:  s.profile.Clone(),
	}, nil
}

// CompleteGeneration records the result of the request issued for cycle. It
// reports false when the cycle was reset in the meantime and the result is
// dropped.
func (s *Session) CompleteGeneration(cycle uint64, outcome Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cycle != s.cycle || s.phase != PhaseGenerating {
		return false
	}

	s.isLoading = false
	s.readingText = outcome.Text
	if outcome.Failed {
		s.phase = PhaseFailed
		s.emitLocked(EventReadingFailed)
	} else {
		s.phase = PhaseComplete
		s.emitLocked(EventReadingCompleted)
	}
	return true
}

// Reset clears the selection and the reading, and deals a new deck.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = nil
	s.readingText = ""
	s.isLoading = false
	s.deck = s.catalog.Deal(s.shuffler)
	s.cycle++
	s.phase = PhaseNoCardsSelected
	s.emitLocked(EventReset)
}

// Cards resolves ids against the deck and the selection, in the given order.
// Cards are not moved.
func (s *Session) Cards(ids []string) ([]deck.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile == nil {
		return nil, ErrProfileRequired
	}

	cards := make([]deck.Card, 0, len(ids))
	for _, id := range ids {
		match := func(c deck.Card) bool { return c.ID == id }
		if i := slices.IndexFunc(s.deck, match); i >= 0 {
			cards = append(cards, s.deck[i])
			continue
		}
		if i := slices.IndexFunc(s.selected, match); i >= 0 {
			cards = append(cards, s.selected[i])
			continue
		}
		return nil, ErrCardNotFound
	}
	return cards, nil
}

// # Category & Profile

// SetCategory changes the category used by the next reading.
func (s *Session) SetCategory(category profile.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.category = category
	s.emitLocked(EventCategoryChanged)
}

// AwaitProfile moves the gate from Idle to AwaitingProfile when no profile is present yet.
func (s *Session) AwaitProfile() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile != nil || s.awaiting {
		return
	}
	s.awaiting = true
	s.emitLocked(EventAwaitingProfile)
}

// SetProfile installs p and opens the gate.
func (s *Session) SetProfile(p profile.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := p.Clone()
	s.profile = &stored
	s.emitLocked(EventProfileChanged)
}

// ClearProfile removes the profile and closes the gate.
func (s *Session) ClearProfile() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile = nil
	s.awaiting = false
	s.emitLocked(EventProfileCleared)
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// # Internals

func (s *Session) gateLocked() Gate {
	switch {
	case s.profile != nil:
		return GateReady
	case s.awaiting:
		return GateAwaitingProfile
	default:
		return GateIdle
	}
}

func (s *Session) snapshotLocked() Snapshot {
	snapshot := Snapshot{
		Phase:       s.phase,
		Gate:        s.gateLocked(),
		Deck:        slices.Clone(s.deck),
		Selected:    slices.Clone(s.selected),
		ReadingText: s.readingText,
		IsLoading:   s.isLoading,
		Category:    s.category,
		Cycle:       s.cycle,
	}
	if snapshot.Selected == nil {
		snapshot.Selected = []deck.Card{}
	}
	if s.profile != nil {
		view := s.profile.ToView()
		snapshot.Profile = &view
	}
	return snapshot
}

func (s *Session) emitLocked(eventType EventType) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(Event{Type: eventType, State: s.snapshotLocked()})
}

func containsCard(cards []deck.Card, id string) bool {
	return slices.ContainsFunc(cards, func(c deck.Card) bool { return c.ID == id })
}
