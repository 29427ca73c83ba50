package permissions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/dairyadmin/internal/models"
)

// Checker evaluates whether a user's role has been granted a console module.
type Checker struct {
	db *gorm.DB
}

// NewChecker constructs a permission checker backed by the provided database.
func NewChecker(db *gorm.DB) (*Checker, error) {
	if db == nil {
		return nil, errors.New("permission checker: db is required")
	}
	return &Checker{db: db}, nil
}

// Check determines whether the user may use the module at route, considering
// the module's parent and dependencies. Super admins bypass all checks.
func (c *Checker) Check(ctx context.Context, userID uint, route string) (bool, error) {
	ctx = ensureContext(ctx)

	if userID == 0 {
		return false, errors.New("permission checker: user id is required")
	}
	route = strings.TrimSpace(route)
	if route == "" {
		return false, errors.New("permission checker: route is required")
	}

	user, err := c.loadUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.IsSuperAdmin {
		return true, nil
	}
	if !user.Status {
		return false, nil
	}

	if _, ok := Get(route); !ok {
		return false, fmt.Errorf("%w %q", ErrUnknownModule, route)
	}

	granted, err := c.grantedRoutes(ctx, user)
	if err != nil {
		return false, err
	}

	if _, ok := granted[route]; !ok {
		return false, nil
	}

	dependencies, err := ResolveDependencies(route)
	if err != nil {
		return false, err
	}
	for _, dep := range dependencies {
		if _, ok := granted[dep]; !ok {
			return false, nil
		}
	}
	return true, nil
}

// GetUserModules returns the distinct module routes granted to the user.
func (c *Checker) GetUserModules(ctx context.Context, userID uint) ([]string, error) {
	ctx = ensureContext(ctx)

	if userID == 0 {
		return nil, errors.New("permission checker: user id is required")
	}

	user, err := c.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var routes []string
	if user.IsSuperAdmin {
		if err := c.db.WithContext(ctx).Model(&models.Module{}).
			Where("status = ?", true).
			Pluck("route", &routes).Error; err != nil {
			return nil, fmt.Errorf("permission checker: load modules: %w", err)
		}
		sort.Strings(routes)
		return routes, nil
	}

	granted, err := c.grantedRoutes(ctx, user)
	if err != nil {
		return nil, err
	}
	routes = make([]string, 0, len(granted))
	for route := range granted {
		routes = append(routes, route)
	}
	sort.Strings(routes)
	return routes, nil
}

func (c *Checker) loadUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := c.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("permission checker: load user: %w", err)
	}
	return &user, nil
}

func (c *Checker) grantedRoutes(ctx context.Context, user *models.User) (map[string]struct{}, error) {
	granted := make(map[string]struct{})
	if user.RoleID == nil {
		return granted, nil
	}

	var routes []string
	if err := c.db.WithContext(ctx).
		Table("role_permissions").
		Joins("JOIN modules ON modules.id = role_permissions.module_id").
		Joins("JOIN roles ON roles.id = role_permissions.role_id").
		Where("role_permissions.role_id = ? AND role_permissions.status = ? AND modules.status = ? AND roles.status = ?",
			*user.RoleID, true, true, true).
		Pluck("modules.route", &routes).Error; err != nil {
		return nil, fmt.Errorf("permission checker: load grants: %w", err)
	}

	for _, route := range routes {
		granted[route] = struct{}{}
	}
	return granted, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
