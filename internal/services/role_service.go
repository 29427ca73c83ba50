package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/dairyadmin/internal/hierarchy"
	"github.com/charlesng35/dairyadmin/internal/invalidation"
	"github.com/charlesng35/dairyadmin/internal/models"
	apperrors "github.com/charlesng35/dairyadmin/pkg/errors"
)

var (
	// ErrRoleNotFound indicates the requested role does not exist.
	ErrRoleNotFound = apperrors.New("ROLE_NOT_FOUND", "Role not found", http.StatusNotFound)
	// ErrRoleNameTaken signals a duplicate role name.
	ErrRoleNameTaken = apperrors.New("ROLE_EXISTS", "Role name already exists", http.StatusConflict)
	// ErrRoleInUse prevents deleting roles referenced by users or hierarchies.
	ErrRoleInUse = apperrors.New("ROLE_IN_USE", "Role is referenced by users or approval hierarchies", http.StatusConflict)
)

// RoleInput captures role fields for create and update.
type RoleInput struct {
	Name       string
	CategoryID uint
	Status     *bool
}

// RoleFilter narrows role listings.
type RoleFilter struct {
	CategoryID uint
	Status     *bool
}

var roleSortable = map[string]string{
	"id":         "roles.id",
	"name":       "roles.name",
	"created_at": "roles.created_at",
}

// RoleService manages roles and their category membership.
type RoleService struct {
	db           *gorm.DB
	auditService *AuditService
	notifier     Notifier
}

// NewRoleService constructs a RoleService.
func NewRoleService(db *gorm.DB, auditService *AuditService, opts ...Option) (*RoleService, error) {
	if db == nil {
		return nil, errors.New("role service: db is required")
	}
	cfg := applyOptions(opts)
	return &RoleService{db: db, auditService: auditService, notifier: cfg.notifier}, nil
}

// List returns a page of roles with their category preloaded.
func (s *RoleService) List(ctx context.Context, req PageRequest, filter RoleFilter) (PageResult[models.Role], error) {
	ctx = ensureContext(ctx)
	req = normalizePageRequest(req)

	query := s.db.WithContext(ctx).Model(&models.Role{})
	if req.Search != "" {
		query = query.Where("LOWER(roles.name) LIKE ?", likePattern(req.Search))
	}
	if filter.CategoryID != 0 {
		query = query.Where("roles.category_id = ?", filter.CategoryID)
	}
	if filter.Status != nil {
		query = query.Where("roles.status = ?", *filter.Status)
	}

	page, err := paginate[models.Role](query, req, orderClause(req, roleSortable, "roles.id DESC"), "Category")
	if err != nil {
		return PageResult[models.Role]{}, fmt.Errorf("role service: list: %w", err)
	}
	return page, nil
}

// Get loads a role with its category.
func (s *RoleService) Get(ctx context.Context, id uint) (*models.Role, error) {
	ctx = ensureContext(ctx)

	var role models.Role
	err := s.db.WithContext(ctx).Preload("Category").First(&role, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("role service: get: %w", err)
	}
	return &role, nil
}

// Create registers a new role in an existing category. Status defaults to active.
func (s *RoleService) Create(ctx context.Context, input RoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	fields := map[string]string{}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		fields["name"] = "Name is required"
	}
	if input.CategoryID == 0 {
		fields["category_id"] = "Category is required"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation("", fields)
	}
	if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	role := &models.Role{Name: name, CategoryID: input.CategoryID, Status: true}
	if input.Status != nil {
		role.Status = *input.Status
	}

	if err := s.db.WithContext(ctx).Create(role).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrRoleNameTaken
		}
		return nil, fmt.Errorf("role service: create: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.RoleCreate,
		Resource: strconv.FormatUint(uint64(role.ID), 10),
		Metadata: map[string]any{"name": role.Name, "category_id": role.CategoryID},
	})
	return s.Get(ctx, role.ID)
}

// Update modifies a role.
func (s *RoleService) Update(ctx context.Context, id uint, input RoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	role, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" && name != role.Name {
		updates["name"] = name
	}
	if input.CategoryID != 0 && input.CategoryID != role.CategoryID {
		if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = input.CategoryID
	}
	if input.Status != nil && *input.Status != role.Status {
		updates["status"] = *input.Status
	}
	if len(updates) == 0 {
		return role, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.Role{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrRoleNameTaken
		}
		return nil, fmt.Errorf("role service: update: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.RoleUpdate,
		Resource: strconv.FormatUint(uint64(id), 10),
		Metadata: updates,
	})
	return s.Get(ctx, id)
}

// Delete removes a role and its module grants. Roles still used by users,
// section allocations or hierarchy levels cannot be deleted.
func (s *RoleService) Delete(ctx context.Context, id uint) error {
	ctx = ensureContext(ctx)

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	for _, ref := range []struct {
		model  any
		column string
	}{
		{&models.User{}, "role_id"},
		{&models.HierarchyLevel{}, "role_id"},
		{&models.AssignedPermission{}, "role_id"},
	} {
		var count int64
		if err := s.db.WithContext(ctx).Model(ref.model).Where(ref.column+" = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("role service: count references: %w", err)
		}
		if count > 0 {
			return ErrRoleInUse
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.Permission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Role{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("role service: delete: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.RoleDelete,
		Resource: strconv.FormatUint(uint64(id), 10),
	})
	return nil
}

// ApprovalRoles returns active roles of the approval category as select options.
func (s *RoleService) ApprovalRoles(ctx context.Context) ([]hierarchy.RoleOption, error) {
	ctx = ensureContext(ctx)

	var roles []models.Role
	if err := s.db.WithContext(ctx).
		Preload("Category").
		Where("status = ?", true).
		Order("id ASC").
		Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("role service: approval roles: %w", err)
	}

	options := make([]hierarchy.RoleOption, 0, len(roles))
	for _, role := range roles {
		options = append(options, RoleOption(role))
	}
	return hierarchy.FilterApprovalRoles(options, 0, models.ApprovalCategoryName), nil
}

// RoleOption converts a role into a hierarchy select option.
func RoleOption(role models.Role) hierarchy.RoleOption {
	option := hierarchy.RoleOption{
		ID:         role.ID,
		Name:       role.Name,
		CategoryID: role.CategoryID,
		Status:     role.Status,
	}
	if role.Category != nil {
		option.CategoryName = role.Category.Name
	}
	return option
}

func (s *RoleService) ensureCategory(ctx context.Context, categoryID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
		return fmt.Errorf("role service: check category: %w", err)
	}
	if count == 0 {
		return apperrors.NewValidation("", map[string]string{"category_id": "Category does not exist"})
	}
	return nil
}
