package hierarchy

import "strings"

// RoleOption is a role as offered in a level's role select.
type RoleOption struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	CategoryID   uint   `json:"category_id"`
	CategoryName string `json:"category_name"`
	Status       bool   `json:"status"`
}

// FilterApprovalRoles keeps roles belonging to the approval category, matched
// by category id when known or by case-insensitive category name.
func FilterApprovalRoles(roles []RoleOption, categoryID uint, categoryName string) []RoleOption {
	categoryName = strings.TrimSpace(categoryName)
	out := make([]RoleOption, 0, len(roles))
	for _, role := range roles {
		switch {
		case categoryID != 0 && role.CategoryID == categoryID:
			out = append(out, role)
		case categoryName != "" && strings.EqualFold(strings.TrimSpace(role.CategoryName), categoryName):
			out = append(out, role)
		}
	}
	return out
}

// AvailableRoles returns the roles still selectable at forLevel: every role
// except those already chosen at another level.
func AvailableRoles(all []RoleOption, levels []Level, forLevel int) []RoleOption {
	taken := make(map[uint]struct{}, len(levels))
	for _, entry := range levels {
		if entry.Level == forLevel || entry.RoleID == 0 {
			continue
		}
		taken[entry.RoleID] = struct{}{}
	}

	out := make([]RoleOption, 0, len(all))
	for _, role := range all {
		if _, ok := taken[role.ID]; ok {
			continue
		}
		out = append(out, role)
	}
	return out
}
