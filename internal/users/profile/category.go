// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Category is the focus area a reading is generated for.
type Category string

const (
	CategoryGeneral Category = "General"
	CategoryLove    Category = "Love"
	CategoryCareer  Category = "Career"
	CategoryHealth  Category = "Health"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryGeneral, CategoryLove, CategoryCareer, CategoryHealth}

// categoryLookup maps case-folded labels to their category. Documents written
// by the first mobile release carry Turkish labels, which stay readable.
var categoryLookup = buildCategoryLookup(map[string]Category{
	"General": CategoryGeneral,
	"Love":    CategoryLove,
	"Career":  CategoryCareer,
	"Health":  CategoryHealth,
	"Genel":   CategoryGeneral,
	"Aşk":     CategoryLove,
	"Kariyer": CategoryCareer,
	"Sağlık":  CategoryHealth,
})

func buildCategoryLookup(labels map[string]Category) map[string]Category {
	lookup := make(map[string]Category, len(labels))
	for label, category := range labels {
		lookup[foldLabel(label)] = category
	}
	return lookup
}

// foldLabel produces the caseless, NFC-normalized form used for matching.
func foldLabel(label string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(label)))
}

// ParseCategory resolves a label to its [Category], ignoring case.
func ParseCategory(label string) (Category, error) {
	if category, found := categoryLookup[foldLabel(label)]; found {
		return category, nil
	}
	return "", fmt.Errorf("unknown category %q", label)
}

// Valid reports whether c is one of [Categories].
func (c Category) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryLove, CategoryCareer, CategoryHealth:
		return true
	}
	return false
}

// String implements [fmt.Stringer].
func (c Category) String() string { return string(c) }

// NormalizeUsername returns the canonical document key for a username:
// trimmed, NFC-normalized and case-folded.
func NormalizeUsername(username string) string {
	return foldLabel(username)
}
