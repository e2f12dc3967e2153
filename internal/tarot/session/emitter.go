// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"sync"

	"github.com/taibuivan/arcana/internal/platform/metrics"
)

// EventType names a session transition.
type EventType string

const (
	EventCardSelected      EventType = "card_selected"
	EventSpreadComplete    EventType = "spread_complete"
	EventGenerationStarted EventType = "generation_started"
	EventReadingCompleted  EventType = "reading_completed"
	EventReadingFailed     EventType = "reading_failed"
	EventReset             EventType = "reset"
	EventCategoryChanged   EventType = "category_changed"
	EventProfileChanged    EventType = "profile_changed"
	EventProfileCleared    EventType = "profile_cleared"
	EventAwaitingProfile   EventType = "awaiting_profile"
)

// Event is one transition together with the state it produced.
type Event struct {
	Type  EventType `json:"type"`
	State Snapshot  `json:"state"`
}

// Emitter fans events out to subscribers without ever blocking the sender.
// A subscriber whose buffer is full misses the event.
type Emitter struct {
	mu          sync.Mutex
	subscribers map[uint64]chan Event
	nextID      uint64
	buffer      int
	closed      bool
}

// NewEmitter creates an emitter whose subscriber channels hold buffer events.
func NewEmitter(buffer int) *Emitter {
	return &Emitter{
		subscribers: make(map[uint64]chan Event),
		buffer:      buffer,
	}
}

// Subscribe registers a new observer. The returned function unsubscribes and
// closes the channel; calling it more than once is safe.
func (e *Emitter) Subscribe() (<-chan Event, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	channel := make(chan Event, e.buffer)
	if e.closed {
		close(channel)
		return channel, func() {}
	}

	id := e.nextID
	e.nextID++
	e.subscribers[id] = channel
	metrics.EventStreams.Inc()

	return channel, func() { e.remove(id) }
}

// Emit delivers ev to every subscriber that has room for it.
func (e *Emitter) Emit(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, channel := range e.subscribers {
		e.trySend(channel, ev)
	}
}

// Close unsubscribes everyone. Later subscriptions receive a closed channel.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, channel := range e.subscribers {
		close(channel)
		delete(e.subscribers, id)
		metrics.EventStreams.Dec()
	}
	e.closed = true
}

func (e *Emitter) remove(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if channel, ok := e.subscribers[id]; ok {
		close(channel)
		delete(e.subscribers, id)
		metrics.EventStreams.Dec()
	}
}

// trySend never blocks. The caller holds mu, so channel cannot be closed
// concurrently.
func (e *Emitter) trySend(channel chan Event, ev Event) {
	select {
	case channel <- ev:
	default:
		metrics.SessionEventsDropped.Inc()
	}
}
