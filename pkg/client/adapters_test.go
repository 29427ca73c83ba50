package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type row struct {
	ID uint `json:"id"`
}

func TestDecodeListShapes(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		keys    []string
		ids     []uint
		page    int
		total   int64
		pages   int
	}{
		{
			name:    "resource key with pagination",
			payload: `{"banks":[{"id":1},{"id":2}],"pagination":{"currentPage":2,"totalItems":12,"itemsPerPage":10,"totalPages":2}}`,
			keys:    []string{"banks"},
			ids:     []uint{1, 2}, page: 2, total: 12, pages: 2,
		},
		{
			name:    "items with legacy pagination names",
			payload: `{"items":[{"id":3}],"pagination":{"page":3,"total":23,"limit":10}}`,
			ids:     []uint{3}, page: 3, total: 23, pages: 3,
		},
		{
			name:    "items with total only",
			payload: `{"items":[{"id":4},{"id":5}],"total":2}`,
			ids:     []uint{4, 5}, page: 1, total: 2, pages: 1,
		},
		{
			name:    "bare array",
			payload: `[{"id":6}]`,
			ids:     []uint{6}, page: 1, total: 1, pages: 1,
		},
		{
			name:    "data fallback key",
			payload: `{"data":[{"id":7}]}`,
			ids:     []uint{7}, page: 1, total: 1, pages: 1,
		},
		{
			name:    "page past the end",
			payload: `{"roles":[],"pagination":{"currentPage":4,"totalItems":23,"itemsPerPage":10,"totalPages":3}}`,
			keys:    []string{"roles"},
			ids:     []uint{}, page: 4, total: 23, pages: 3,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := DecodeList[row](json.RawMessage(tc.payload), tc.keys...)
			require.NoError(t, err)

			ids := make([]uint, 0, len(page.Items))
			for _, item := range page.Items {
				ids = append(ids, item.ID)
			}
			require.Equal(t, tc.ids, ids)
			require.Equal(t, tc.page, page.Pagination.CurrentPage)
			require.Equal(t, tc.total, page.Pagination.TotalItems)
			require.Equal(t, tc.pages, page.Pagination.TotalPages)
		})
	}
}

func TestDecodeListMissingKey(t *testing.T) {
	_, err := DecodeList[row](json.RawMessage(`{"other":[]}`), "banks")
	require.Error(t, err)
}

func TestDecodeListNull(t *testing.T) {
	page, err := DecodeList[row](json.RawMessage(`null`))
	require.NoError(t, err)
	require.NotNil(t, page.Items)
	require.Empty(t, page.Items)
}

func TestTotalPages(t *testing.T) {
	require.Equal(t, 3, TotalPages(23, 10))
	require.Equal(t, 1, TotalPages(10, 10))
	require.Equal(t, 0, TotalPages(0, 10))
	require.Equal(t, 0, TotalPages(5, 0))
}

func TestListQueryValues(t *testing.T) {
	q := ListQuery{Page: 2, Filters: map[string]string{"category_id": "3", "status": ""}}
	require.Equal(t, "category_id=3&page=2", q.Values().Encode())
	require.Equal(t, q.Key(), ListQuery{Page: 2, Filters: map[string]string{"category_id": "3"}}.Key())
}

func TestDecodeListIgnoresNonNumericPaginationMembers(t *testing.T) {
	raw := json.RawMessage(`{"villages":[{"id":1}],"pagination":{"page":1,"total":23,"limit":10,"hasNextPage":true,"sort":"name"}}`)

	page, err := DecodeList[json.RawMessage](raw, "villages")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, Pagination{CurrentPage: 1, TotalItems: 23, ItemsPerPage: 10, TotalPages: 3}, page.Pagination)
}
