package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Pagination is the normalized paging block. The server emits
// currentPage/totalItems/itemsPerPage/totalPages; older endpoints use
// page/total/limit, which decode into the same fields.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	TotalPages   int   `json:"totalPages"`
}

// UnmarshalJSON accepts every pagination spelling the API has used.
func (p *Pagination) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}

	// Members that are not numbers (flags, sort hints) are ignored.
	pick := func(keys ...string) int64 {
		for _, key := range keys {
			member, ok := raw[key]
			if !ok {
				continue
			}
			var n json.Number
			dec := json.NewDecoder(bytes.NewReader(member))
			dec.UseNumber()
			if err := dec.Decode(&n); err != nil {
				continue
			}
			if v, err := n.Int64(); err == nil {
				return v
			}
			if f, err := n.Float64(); err == nil {
				return int64(f)
			}
		}
		return 0
	}

	*p = Pagination{
		CurrentPage:  int(pick("currentPage", "current_page", "page")),
		TotalItems:   pick("totalItems", "total_items", "total"),
		ItemsPerPage: int(pick("itemsPerPage", "items_per_page", "limit", "per_page")),
		TotalPages:   int(pick("totalPages", "total_pages", "pages")),
	}
	p.fill(0)
	return nil
}

// fill derives missing fields. rows is the number of items on the page.
func (p *Pagination) fill(rows int) {
	if p.CurrentPage <= 0 {
		p.CurrentPage = 1
	}
	if p.ItemsPerPage <= 0 && rows > 0 {
		p.ItemsPerPage = rows
	}
	if p.TotalItems < int64(rows) && p.CurrentPage == 1 {
		p.TotalItems = int64(rows)
	}
	if p.TotalPages <= 0 && p.ItemsPerPage > 0 {
		p.TotalPages = TotalPages(p.TotalItems, p.ItemsPerPage)
	}
}

// TotalPages is ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// Page is one normalized page of a list endpoint.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// defaultItemKeys are tried after the resource-specific keys.
var defaultItemKeys = []string{"items", "data", "rows", "results"}

// DecodeList normalizes a list payload into a Page. The payload may be a
// bare array, or an object carrying the rows under one of keys (or a
// common fallback key) with an optional pagination block or total count.
func DecodeList[T any](data json.RawMessage, keys ...string) (Page[T], error) {
	var page Page[T]
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		page.Items = []T{}
		page.Pagination.fill(0)
		return page, nil
	}

	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &page.Items); err != nil {
			return page, fmt.Errorf("decode list: %w", err)
		}
		page.Pagination.fill(len(page.Items))
		return page, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return page, fmt.Errorf("decode list: %w", err)
	}

	found := false
	for _, key := range append(append([]string(nil), keys...), defaultItemKeys...) {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &page.Items); err != nil {
			return page, fmt.Errorf("decode list %q: %w", key, err)
		}
		found = true
		break
	}
	if !found {
		return page, fmt.Errorf("decode list: none of %v present", append(keys, defaultItemKeys...))
	}
	if page.Items == nil {
		page.Items = []T{}
	}

	switch {
	case obj["pagination"] != nil:
		if err := json.Unmarshal(obj["pagination"], &page.Pagination); err != nil {
			return page, err
		}
	case obj["meta"] != nil:
		if err := json.Unmarshal(obj["meta"], &page.Pagination); err != nil {
			return page, err
		}
	case obj["total"] != nil:
		var total int64
		if err := json.Unmarshal(obj["total"], &total); err == nil {
			page.Pagination.TotalItems = total
		}
	}
	page.Pagination.fill(len(page.Items))
	return page, nil
}

// ListQuery carries the common list parameters.
type ListQuery struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	Sort    string
	Filters map[string]string
}

// Values encodes q as query parameters, omitting zero values.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if q.SortBy != "" {
		v.Set("sort_by", q.SortBy)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	for key, value := range q.Filters {
		if value != "" {
			v.Set(key, value)
		}
	}
	return v
}

// Key renders q deterministically, for use as a cache or dedupe key.
func (q ListQuery) Key() string {
	return q.Values().Encode()
}
