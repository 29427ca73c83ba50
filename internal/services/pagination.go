package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Paging defaults.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest carries list parameters common to every paginated resource.
type PageRequest struct {
	Page     int
	PageSize int
	// MaxPageSize overrides the package limit when positive.
	MaxPageSize int
	Search      string
	SortBy      string
	SortDir     string
}

// PageResult is one page of items with its totals.
type PageResult[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

func normalizePageRequest(in PageRequest) PageRequest {
	out := in
	if out.Page < 1 {
		out.Page = DefaultPage
	}
	limit := out.MaxPageSize
	if limit < 1 {
		limit = MaxPageSize
	}
	if out.PageSize < 1 {
		out.PageSize = DefaultPageSize
	}
	if out.PageSize > limit {
		out.PageSize = limit
	}
	out.Search = strings.TrimSpace(out.Search)
	out.SortBy = strings.ToLower(strings.TrimSpace(out.SortBy))
	out.SortDir = strings.ToLower(strings.TrimSpace(out.SortDir))
	return out
}

func calcTotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	ps := int64(pageSize)
	pages := total / ps
	if total%ps != 0 {
		pages++
	}
	maxInt := int64(^uint(0) >> 1)
	if pages > maxInt {
		return int(maxInt)
	}
	return int(pages)
}

// orderClause resolves a user supplied sort column against the allow list,
// falling back to fallback when the column is unknown.
func orderClause(req PageRequest, sortable map[string]string, fallback string) string {
	column, ok := sortable[req.SortBy]
	if !ok {
		return fallback
	}
	dir := "ASC"
	if req.SortDir == "desc" {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s", column, dir)
}

// likePattern builds a case-insensitive LIKE pattern for search.
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// paginate counts query, then loads the requested page with the given
// associations preloaded. Pages past the last one return no items and no error.
func paginate[T any](query *gorm.DB, req PageRequest, order string, preloads ...string) (PageResult[T], error) {
	req = normalizePageRequest(req)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return PageResult[T]{}, err
	}

	items := make([]T, 0)
	if total > 0 && int64((req.Page-1)*req.PageSize) < total {
		find := query.Session(&gorm.Session{})
		for _, assoc := range preloads {
			find = find.Preload(assoc)
		}
		if err := find.
			Order(order).
			Offset((req.Page - 1) * req.PageSize).
			Limit(req.PageSize).
			Find(&items).Error; err != nil {
			return PageResult[T]{}, err
		}
	}

	return PageResult[T]{
		Items:      items,
		Page:       req.Page,
		PageSize:   req.PageSize,
		Total:      total,
		TotalPages: calcTotalPages(total, req.PageSize),
	}, nil
}
