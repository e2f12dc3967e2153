// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reading

import (
	"fmt"
	"strings"

	"github.com/taibuivan/arcana/internal/tarot/deck"
	"github.com/taibuivan/arcana/internal/users/profile"
	"github.com/taibuivan/arcana/pkg/slice"
)

// # Spread Sizes

const (
	OverallCards  = 7
	QuestionCards = 3
)

const (
	overallSystemMessage = "You are a helpful assistant providing tarot readings."
	dailySystemMessage   = "You are a helpful tarot card reader."
)

// Spread is the positional reading of a seven-card selection.
type Spread struct {
	Present string
	Past    string
	Future  string
}

// SpreadOf maps seven cards, in selection order, to their positions: the
// first is the present, the next three the past and the last three the future.
func SpreadOf(cards []deck.Card) (Spread, error) {
	if len(cards) != OverallCards {
		return Spread{}, fmt.Errorf("reading_spread_invalid: need %d cards, got %d", OverallCards, len(cards))
	}

	names := slice.Map(cards, func(c deck.Card) string { return c.Name })
	return Spread{
		Present: names[0],
		Past:    strings.Join(names[1:4], ", "),
		Future:  strings.Join(names[4:7], ", "),
	}, nil
}

// OverallPrompt builds the user message for a seven-card reading.
func OverallPrompt(spread Spread, category profile.Category, user profile.UserProfile, language string) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "You are providing a tarot reading for the category: %s.\n\n", category)
	fmt.Fprintf(&builder, "- User: %s\n", user.Name)
	fmt.Fprintf(&builder, "- Zodiac Sign: %s\n", SignOf(user.BirthDate))
	fmt.Fprintf(&builder, "- Work Status: %s\n", user.WorkStatus)
	fmt.Fprintf(&builder, "- Relationship Status: %s\n\n", user.RelationshipStatus)
	fmt.Fprintf(&builder, "- Present: %s\n", spread.Present)
	fmt.Fprintf(&builder, "- Past: %s\n", spread.Past)
	fmt.Fprintf(&builder, "- Future: %s\n\n", spread.Future)
	builder.WriteString("Interpret the selected cards for the chosen category, taking into account the person's zodiac sign ")
	builder.WriteString("from their birth date as well as their work and relationship status. ")
	builder.WriteString("Give a mystical, playful reading with plenty of emojis. ")
	fmt.Fprintf(&builder, "Write the reading in %s.", language)

	return builder.String()
}

// DailyPrompt builds the user message for a single-card daily reading.
func DailyPrompt(card deck.Card, language string) string {
	return fmt.Sprintf(
		"A tarot card was drawn for today: %s. This is a daily single-card reading. "+
			"Explain the meaning of this card to the user in a positive, guiding and motivating way. "+
			"Support it with plenty of emojis. Keep it to at most 3 sentences. Write the reading in %s.",
		card.Name, language,
	)
}

// QuestionPrompt builds the user message for a three-card answer to a question.
func QuestionPrompt(cards []deck.Card, question string, user profile.UserProfile, language string) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "Hello %s! 🔮\n", user.Username)
	fmt.Fprintf(&builder, "The user asked this question: %s\n", question)
	builder.WriteString("Selected tarot cards:\n")
	for _, card := range cards {
		fmt.Fprintf(&builder, "- %s\n", card.Name)
	}
	builder.WriteString("\nPlease try to answer the user's question based on these cards.\n")
	fmt.Fprintf(&builder, "Use at most 10 sentences and support them with emojis! 🌟✨ Write the answer in %s.", language)

	return builder.String()
}
