// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package deck loads the tarot card catalog and deals shuffled decks from it.

The catalog is a JSON document of the form {"cards": [{"name", "img"}, ...]}.
It is embedded in the binary and can be replaced by a file at startup.
Elements without a string name and a string img are skipped.

Every dealt card gets a fresh id, so the same catalog entry has a different
id in each deal.
*/
package deck

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/google/uuid"
)

//go:embed cards.json
var embeddedCatalog []byte

// ErrEmptyCatalog is returned when a catalog holds no usable card.
var ErrEmptyCatalog = errors.New("card catalog has no usable cards")

// Card is one dealt tarot card.
type Card struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"img"`
}

type entry struct {
	name  string
	image string
}

// Catalog is the immutable list of catalog entries. It is safe for
// concurrent use.
type Catalog struct {
	entries []entry
}

// Shuffler permutes n elements through swap.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// RandomShuffler shuffles with the runtime's random source.
type RandomShuffler struct{}

// Shuffle implements [Shuffler].
func (RandomShuffler) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// # Loading

// Load reads the catalog at path, or the embedded catalog when path is empty.
func Load(path string, logger *slog.Logger) (*Catalog, error) {
	data := embeddedCatalog
	source := "embedded"

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("deck_catalog_read_failed: %w", err)
		}
		data = raw
		source = path
	}

	catalog, skipped, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if skipped > 0 {
		logger.Warn("card_catalog_entries_skipped", slog.String("source", source), slog.Int("skipped", skipped))
	}
	logger.Info("card_catalog_loaded", slog.String("source", source), slog.Int("cards", catalog.Len()))

	return catalog, nil
}

// Parse decodes a catalog document and reports how many elements were skipped.
func Parse(data []byte) (*Catalog, int, error) {
	var document struct {
		Cards []any `json:"cards"`
	}
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, 0, fmt.Errorf("deck_catalog_decode_failed: %w", err)
	}

	entries := make([]entry, 0, len(document.Cards))
	for _, element := range document.Cards {
		fields, ok := element.(map[string]any)
		if !ok {
			continue
		}

		name, nameOK := fields["name"].(string)
		image, imageOK := fields["img"].(string)
		if !nameOK || !imageOK {
			continue
		}

		entries = append(entries, entry{name: name, image: image})
	}

	if len(entries) == 0 {
		return nil, len(document.Cards), ErrEmptyCatalog
	}

	return &Catalog{entries: entries}, len(document.Cards) - len(entries), nil
}

// # Dealing

// Len returns the number of cards in the catalog.
func (catalog *Catalog) Len() int {
	return len(catalog.entries)
}

// Cards returns the catalog in file order with fresh ids.
func (catalog *Catalog) Cards() []Card {
	cards := make([]Card, len(catalog.entries))
	for i, e := range catalog.entries {
		cards[i] = Card{ID: uuid.NewString(), Name: e.name, Image: e.image}
	}
	return cards
}

// Deal returns the full catalog with fresh ids, shuffled.
func (catalog *Catalog) Deal(shuffler Shuffler) []Card {
	cards := catalog.Cards()
	shuffler.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return cards
}
