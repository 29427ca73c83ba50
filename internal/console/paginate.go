package console

import (
	"strings"

	"github.com/charlesng35/dairyadmin/pkg/client"
)

// PaginateLocal slices rows for endpoints that return everything at once.
// A page past the end yields no rows and no error.
func PaginateLocal[T any](rows []T, page, limit int) ([]T, client.Pagination) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	total := len(rows)
	p := client.Pagination{
		CurrentPage:  page,
		TotalItems:   int64(total),
		ItemsPerPage: limit,
		TotalPages:   client.TotalPages(int64(total), limit),
	}

	start := (page - 1) * limit
	if start >= total {
		return []T{}, p
	}
	end := start + limit
	if end > total {
		end = total
	}
	return rows[start:end], p
}

// FilterAssignments keeps allocations matching search (user, role, MCC or
// MPP, case-insensitive) and roleID when non-zero.
func FilterAssignments(rows []client.Assignment, search string, roleID uint) []client.Assignment {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]client.Assignment, 0, len(rows))
	for _, row := range rows {
		if roleID != 0 && row.RoleID != roleID {
			continue
		}
		if search != "" && !containsFold(search, row.UserName, row.RoleName, row.AssignedMCC, row.AssignedMPP) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func containsFold(needle string, fields ...string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
