// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination pages history lists for the API.
//
// # Overview
//
// Reading and question histories live inside a single profile document, so
// paging happens over an in-memory slice rather than in SQL. [Window] cuts
// one page out of a slice and [Meta] travels in the response envelope.
package pagination

import (
	"net/http"
	"slices"
	"strconv"
)

const (
	// DefaultLimit is the page size when the query omits one.
	DefaultLimit = 20
	// MaxLimit caps the page size; larger values fall back to [DefaultLimit].
	MaxLimit = 100
	// DefaultPage is the first page (1-indexed).
	DefaultPage = 1
)

// Params is the requested page.
type Params struct {
	Page  int
	Limit int
}

// start is the index of the first element of the page.
func (p Params) start() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta describes the returned page.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta builds the metadata for a page of a list holding total items.
func NewMeta(page, limit, total int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// FromRequest reads "page" and "limit" from the query string.
//
// Unparsable or out of range values fall back to the defaults.
func FromRequest(r *http.Request) Params {
	query := r.URL.Query()

	page := atoiOr(query.Get("page"), DefaultPage)
	if page < 1 {
		page = DefaultPage
	}

	limit := atoiOr(query.Get("limit"), DefaultLimit)
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	return Params{Page: page, Limit: limit}
}

/*
Window returns one page of items, newest first.

History arrays are append-ordered, so the slice is reversed before cutting.
The input is never modified. A page past the end is empty, not nil, so it
encodes as [] rather than null.
*/
func Window[T any](items []T, params Params) ([]T, Meta) {
	meta := NewMeta(params.Page, params.Limit, len(items))

	// Out of range pages return before start() multiplies, which could overflow.
	if params.Limit < 1 || params.Page-1 >= meta.TotalPages {
		return []T{}, meta
	}

	ordered := slices.Clone(items)
	slices.Reverse(ordered)

	from := params.start()
	to := min(from+params.Limit, len(ordered))

	page := ordered[from:to]
	if page == nil {
		page = []T{}
	}
	return page, meta
}

func atoiOr(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
