package console

import (
	"context"

	"github.com/charlesng35/dairyadmin/internal/hierarchy"
	"github.com/charlesng35/dairyadmin/internal/invalidation"
	"github.com/charlesng35/dairyadmin/pkg/client"
)

// HierarchyAPI is the slice of the client the hierarchy editors need.
type HierarchyAPI interface {
	ApprovalRoles(ctx context.Context) ([]client.Role, error)
	GetHierarchy(ctx context.Context, id uint) (*client.Hierarchy, error)
	CreateHierarchy(ctx context.Context, p client.HierarchyPayload) (*client.Hierarchy, error)
	UpdateHierarchy(ctx context.Context, id uint, p client.HierarchyPayload) (*client.Hierarchy, error)
}

// HierarchyEditor backs the Add and Edit hierarchy forms. Both validate with
// hierarchy.Validate before anything is sent.
type HierarchyEditor struct {
	api   HierarchyAPI
	store *Store
	guard *SubmitGuard

	AddBounds  hierarchy.Bounds
	EditBounds hierarchy.Bounds
}

// NewHierarchyEditor builds an editor. store and guard may be shared with
// other forms; a nil guard gets a private one.
func NewHierarchyEditor(api HierarchyAPI, store *Store, guard *SubmitGuard) *HierarchyEditor {
	if guard == nil {
		guard = &SubmitGuard{}
	}
	return &HierarchyEditor{
		api:        api,
		store:      store,
		guard:      guard,
		AddBounds:  hierarchy.AddBounds,
		EditBounds: hierarchy.EditBounds,
	}
}

// Add creates a hierarchy from roleIDs in level order.
func (e *HierarchyEditor) Add(ctx context.Context, levelCount int, roleIDs []uint) (*client.Hierarchy, error) {
	levels := hierarchy.Build(roleIDs)
	if err := hierarchy.Validate(levelCount, levels, e.AddBounds); err != nil {
		return nil, err
	}

	var created *client.Hierarchy
	err := e.guard.Run("hierarchy.add", func() error {
		return e.mutate(ctx, invalidation.HierarchyCreate, func(ctx context.Context) error {
			var err error
			created, err = e.api.CreateHierarchy(ctx, client.HierarchyPayload{
				Level:  levelCount,
				Levels: toClientLevels(levels),
			})
			return err
		})
	})
	return created, err
}

// Edit replaces the levels of hierarchy id, keeping its status.
func (e *HierarchyEditor) Edit(ctx context.Context, id uint, levels []hierarchy.Level) (*client.Hierarchy, error) {
	current, err := e.api.GetHierarchy(ctx, id)
	if err != nil {
		return nil, err
	}

	levels = hierarchy.Normalize(levels)
	if err := hierarchy.Validate(len(levels), levels, e.EditBounds); err != nil {
		return nil, err
	}

	status := current.Status
	var updated *client.Hierarchy
	err = e.guard.Run("hierarchy.edit", func() error {
		return e.mutate(ctx, invalidation.HierarchyUpdate, func(ctx context.Context) error {
			var err error
			updated, err = e.api.UpdateHierarchy(ctx, id, client.HierarchyPayload{
				Level:  len(levels),
				Levels: toClientLevels(levels),
				Status: &status,
			})
			return err
		})
	})
	return updated, err
}

func (e *HierarchyEditor) mutate(ctx context.Context, action string, run func(context.Context) error) error {
	if e.store == nil {
		return run(ctx)
	}
	return e.store.Mutate(ctx, action, run)
}

// RoleOptions lists the approval roles still selectable at forLevel given
// the roles picked for the other levels.
func (e *HierarchyEditor) RoleOptions(ctx context.Context, levels []hierarchy.Level, forLevel int) ([]hierarchy.RoleOption, error) {
	roles, err := e.api.ApprovalRoles(ctx)
	if err != nil {
		return nil, err
	}
	return hierarchy.AvailableRoles(RoleOptions(roles), levels, forLevel), nil
}

// RoleOptions converts client roles into select options.
func RoleOptions(roles []client.Role) []hierarchy.RoleOption {
	out := make([]hierarchy.RoleOption, len(roles))
	for i, role := range roles {
		out[i] = hierarchy.RoleOption{
			ID:           role.ID,
			Name:         role.Name,
			CategoryID:   role.CategoryID,
			CategoryName: role.CategoryName(),
			Status:       role.Status,
		}
	}
	return out
}

// HierarchyTable lays out fetched hierarchies, resolving role names from
// the preloaded roles and then from extra.
func HierarchyTable(rows []client.Hierarchy, extra []client.Role) hierarchy.TableView {
	names := make(map[uint]string)
	for _, role := range extra {
		names[role.ID] = role.Name
	}
	tableRows := make([]hierarchy.Row, len(rows))
	for i, row := range rows {
		levels := make([]hierarchy.Level, len(row.Levels))
		for j, entry := range row.Levels {
			levels[j] = hierarchy.Level{Level: entry.Level, RoleID: entry.RoleID}
			if entry.Role != nil && entry.Role.Name != "" {
				names[entry.RoleID] = entry.Role.Name
			}
		}
		tableRows[i] = hierarchy.Row{ID: row.ID, Levels: levels, Status: row.Status}
	}
	return hierarchy.Table(tableRows, names)
}

func toClientLevels(levels []hierarchy.Level) []client.HierarchyLevel {
	out := make([]client.HierarchyLevel, len(levels))
	for i, entry := range levels {
		out[i] = client.HierarchyLevel{Level: entry.Level, RoleID: entry.RoleID}
	}
	return out
}

// LevelsFrom converts a fetched hierarchy into editable levels.
func LevelsFrom(h *client.Hierarchy) []hierarchy.Level {
	if h == nil {
		return nil
	}
	out := make([]hierarchy.Level, len(h.Levels))
	for i, entry := range h.Levels {
		out[i] = hierarchy.Level{Level: entry.Level, RoleID: entry.RoleID}
	}
	return hierarchy.Normalize(out)
}
