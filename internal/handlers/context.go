package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/middleware"
	"github.com/charlesng35/dairyadmin/internal/services"
	"github.com/charlesng35/dairyadmin/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// Pager turns list query parameters into service page requests.
type Pager struct {
	DefaultLimit int
	MaxLimit     int
}

// Request reads page, limit, search, sort_by and sort. per_page is accepted as an alias for limit.
func (p Pager) Request(c *gin.Context) services.PageRequest {
	limit := p.DefaultLimit
	if limit <= 0 {
		limit = services.DefaultPageSize
	}
	limit = parseIntQuery(c, "per_page", limit)
	limit = parseIntQuery(c, "limit", limit)

	return services.PageRequest{
		Page:        parseIntQuery(c, "page", services.DefaultPage),
		PageSize:    limit,
		MaxPageSize: p.MaxLimit,
		Search:      c.Query("search"),
		SortBy:      c.Query("sort_by"),
		SortDir:     c.Query("sort"),
	}
}

// writePage renders a page under itemsKey with the standard pagination block.
func writePage[T any](c *gin.Context, itemsKey string, page services.PageResult[T]) {
	response.List(c, itemsKey, page.Items, response.Pagination{
		CurrentPage:  page.Page,
		TotalItems:   page.Total,
		ItemsPerPage: page.PageSize,
		TotalPages:   page.TotalPages,
	})
}

func currentUserID(c *gin.Context) (uint, bool) {
	return middleware.UserID(c)
}
