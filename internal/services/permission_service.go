package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/dairyadmin/internal/invalidation"
	"github.com/charlesng35/dairyadmin/internal/models"
	"github.com/charlesng35/dairyadmin/internal/permissions"
	apperrors "github.com/charlesng35/dairyadmin/pkg/errors"
)

// ErrUnknownModuleGrant is returned when a grant references a missing module.
var ErrUnknownModuleGrant = apperrors.New("PERMISSION_UNKNOWN_MODULE", "Permission references an unknown module", http.StatusUnprocessableEntity)

// ModuleGrant toggles a single module for a role.
type ModuleGrant struct {
	ModuleID uint
	Status   bool
}

// RolePermissions lists the modules granted to a role.
type RolePermissions struct {
	RoleID    uint   `json:"role_id"`
	ModuleIDs []uint `json:"module_ids"`
}

// PermissionService reads and writes role to module grants.
type PermissionService struct {
	db           *gorm.DB
	auditService *AuditService
	notifier     Notifier
}

// NewPermissionService constructs a PermissionService using the provided database handle.
func NewPermissionService(db *gorm.DB, audit *AuditService, opts ...Option) (*PermissionService, error) {
	if db == nil {
		return nil, errors.New("permission service: db is required")
	}
	cfg := applyOptions(opts)
	return &PermissionService{
		db:           db,
		auditService: audit,
		notifier:     cfg.notifier,
	}, nil
}

// Get returns the granted module ids for roleID in ascending order.
func (s *PermissionService) Get(ctx context.Context, roleID uint) (RolePermissions, error) {
	ctx = ensureContext(ctx)

	if err := s.ensureRole(ctx, roleID); err != nil {
		return RolePermissions{}, err
	}

	var ids []uint
	err := s.db.WithContext(ctx).
		Model(&models.Permission{}).
		Where("role_id = ? AND status = ?", roleID, true).
		Order("module_id ASC").
		Pluck("module_id", &ids).Error
	if err != nil {
		return RolePermissions{}, fmt.Errorf("permission service: load grants: %w", err)
	}
	if ids == nil {
		ids = []uint{}
	}
	return RolePermissions{RoleID: roleID, ModuleIDs: ids}, nil
}

// Update upserts every supplied grant. Granting a module also grants its
// parent and the modules it depends on; revocations only touch the listed module.
func (s *PermissionService) Update(ctx context.Context, roleID uint, grants []ModuleGrant) (RolePermissions, error) {
	ctx = ensureContext(ctx)

	if err := s.ensureRole(ctx, roleID); err != nil {
		return RolePermissions{}, err
	}

	var modules []models.Module
	if err := s.db.WithContext(ctx).Find(&modules).Error; err != nil {
		return RolePermissions{}, fmt.Errorf("permission service: load modules: %w", err)
	}
	byID := make(map[uint]models.Module, len(modules))
	byRoute := make(map[string]uint, len(modules))
	for _, mod := range modules {
		byID[mod.ID] = mod
		byRoute[mod.Route] = mod.ID
	}

	desired := make(map[uint]bool, len(grants))
	for _, grant := range grants {
		if _, ok := byID[grant.ModuleID]; !ok {
			return RolePermissions{}, ErrUnknownModuleGrant.WithFields(map[string]string{
				"module_id": strconv.FormatUint(uint64(grant.ModuleID), 10),
			})
		}
		desired[grant.ModuleID] = grant.Status
	}
	for id, granted := range desired {
		if !granted {
			continue
		}
		for _, dep := range requiredModules(byID[id], byID, byRoute) {
			desired[dep] = true
		}
	}
	if len(desired) == 0 {
		return s.Get(ctx, roleID)
	}

	ids := make([]uint, 0, len(desired))
	for id := range desired {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := make([]models.Permission, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.Permission{RoleID: roleID, ModuleID: id, Status: desired[id]})
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "role_id"}, {Name: "module_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return RolePermissions{}, fmt.Errorf("permission service: upsert grants: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.PermissionUpdate,
		Resource: strconv.FormatUint(uint64(roleID), 10),
		Metadata: map[string]any{"modules": ids},
	})
	return s.Get(ctx, roleID)
}

// requiredModules resolves the parent and declared dependencies of mod.
// Modules unknown to the registry fall back to their stored parent.
func requiredModules(mod models.Module, byID map[uint]models.Module, byRoute map[string]uint) []uint {
	var out []uint
	routes, err := permissions.ResolveDependencies(mod.Route)
	if err == nil {
		for _, route := range routes {
			if id, ok := byRoute[route]; ok {
				out = append(out, id)
			}
		}
	}
	if !mod.IsRoot() {
		if _, ok := byID[*mod.ParentID]; ok {
			out = append(out, *mod.ParentID)
		}
	}
	return normaliseIDs(out)
}

func (s *PermissionService) ensureRole(ctx context.Context, roleID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Role{}).Where("id = ?", roleID).Count(&count).Error; err != nil {
		return fmt.Errorf("permission service: load role: %w", err)
	}
	if count == 0 {
		return ErrRoleNotFound
	}
	return nil
}
