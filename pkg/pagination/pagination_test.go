// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/arcana/pkg/pagination"
)

/*
TestFromRequest falls back to defaults for missing or out of range values.
*/
func TestFromRequest(t *testing.T) {
	tests := []struct {
		query string
		want  pagination.Params
	}{
		{"", pagination.Params{Page: 1, Limit: 20}},
		{"?page=3&limit=5", pagination.Params{Page: 3, Limit: 5}},
		{"?page=0&limit=500", pagination.Params{Page: 1, Limit: 20}},
		{"?page=abc&limit=-1", pagination.Params{Page: 1, Limit: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := pagination.FromRequest(httptest.NewRequest("GET", "/history"+tt.query, nil))
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestWindow pages newest first without touching the input.
*/
func TestWindow(t *testing.T) {
	history := []string{"a", "b", "c", "d", "e"}

	page, meta := pagination.Window(history, pagination.Params{Page: 1, Limit: 2})
	assert.Equal(t, []string{"e", "d"}, page)
	assert.Equal(t, pagination.Meta{Page: 1, Limit: 2, Total: 5, TotalPages: 3}, meta)

	page, _ = pagination.Window(history, pagination.Params{Page: 3, Limit: 2})
	assert.Equal(t, []string{"a"}, page)

	page, _ = pagination.Window(history, pagination.Params{Page: 9, Limit: 2})
	assert.NotNil(t, page)
	assert.Empty(t, page)

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, history)
}

/*
TestWindow_HugePage returns an empty page when page times limit overflows int.
*/
func TestWindow_HugePage(t *testing.T) {
	params := pagination.FromRequest(httptest.NewRequest("GET", "/history?page=461168601842738792&limit=20", nil))

	assert.NotPanics(t, func() {
		page, meta := pagination.Window([]int{1, 2, 3}, params)
		assert.NotNil(t, page)
		assert.Empty(t, page)
		assert.Equal(t, 3, meta.Total)
		assert.Equal(t, 1, meta.TotalPages)
	})
}
