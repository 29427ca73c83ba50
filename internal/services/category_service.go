package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/dairyadmin/internal/invalidation"
	"github.com/charlesng35/dairyadmin/internal/models"
	apperrors "github.com/charlesng35/dairyadmin/pkg/errors"
)

var (
	// ErrCategoryNotFound indicates the requested category does not exist.
	ErrCategoryNotFound = apperrors.New("CATEGORY_NOT_FOUND", "Category not found", http.StatusNotFound)
	// ErrCategoryInUse prevents deleting a category that still has roles.
	ErrCategoryInUse = apperrors.New("CATEGORY_IN_USE", "Category still has roles assigned", http.StatusConflict)
	// ErrCategoryNameTaken signals a duplicate category name.
	ErrCategoryNameTaken = apperrors.New("CATEGORY_EXISTS", "Category name already exists", http.StatusConflict)
)

// CategoryInput captures category fields for create and update.
type CategoryInput struct {
	Name   string
	Status *bool
}

// CategoryFilter narrows category listings.
type CategoryFilter struct {
	Status *bool
}

var categorySortable = map[string]string{
	"id":         "categories.id",
	"name":       "categories.name",
	"created_at": "categories.created_at",
}

// CategoryService manages role categories.
type CategoryService struct {
	db           *gorm.DB
	auditService *AuditService
	notifier     Notifier
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(db *gorm.DB, auditService *AuditService, opts ...Option) (*CategoryService, error) {
	if db == nil {
		return nil, errors.New("category service: db is required")
	}
	cfg := applyOptions(opts)
	return &CategoryService{db: db, auditService: auditService, notifier: cfg.notifier}, nil
}

// List returns a page of categories.
func (s *CategoryService) List(ctx context.Context, req PageRequest, filter CategoryFilter) (PageResult[models.Category], error) {
	ctx = ensureContext(ctx)
	req = normalizePageRequest(req)

	query := s.db.WithContext(ctx).Model(&models.Category{})
	if req.Search != "" {
		query = query.Where("LOWER(categories.name) LIKE ?", likePattern(req.Search))
	}
	if filter.Status != nil {
		query = query.Where("categories.status = ?", *filter.Status)
	}

	page, err := paginate[models.Category](query, req, orderClause(req, categorySortable, "categories.id ASC"))
	if err != nil {
		return PageResult[models.Category]{}, fmt.Errorf("category service: list: %w", err)
	}
	return page, nil
}

// Get loads a category by id.
func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	ctx = ensureContext(ctx)

	var category models.Category
	err := s.db.WithContext(ctx).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("category service: get: %w", err)
	}
	return &category, nil
}

// Create registers a new category. Status defaults to active.
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*models.Category, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidation("", map[string]string{"name": "Name is required"})
	}

	category := &models.Category{Name: name, Status: true}
	if input.Status != nil {
		category.Status = *input.Status
	}

	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrCategoryNameTaken
		}
		return nil, fmt.Errorf("category service: create: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.CategoryCreate,
		Resource: strconv.FormatUint(uint64(category.ID), 10),
		Metadata: map[string]any{"name": category.Name},
	})
	return category, nil
}

// Update modifies a category.
func (s *CategoryService) Update(ctx context.Context, id uint, input CategoryInput) (*models.Category, error) {
	ctx = ensureContext(ctx)

	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" && name != category.Name {
		updates["name"] = name
	}
	if input.Status != nil && *input.Status != category.Status {
		updates["status"] = *input.Status
	}
	if len(updates) == 0 {
		return category, nil
	}

	if err := s.db.WithContext(ctx).Model(category).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrCategoryNameTaken
		}
		return nil, fmt.Errorf("category service: update: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.CategoryUpdate,
		Resource: strconv.FormatUint(uint64(id), 10),
		Metadata: updates,
	})
	return s.Get(ctx, id)
}

// Delete removes a category without roles.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	ctx = ensureContext(ctx)

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	var roles int64
	if err := s.db.WithContext(ctx).Model(&models.Role{}).Where("category_id = ?", id).Count(&roles).Error; err != nil {
		return fmt.Errorf("category service: count roles: %w", err)
	}
	if roles > 0 {
		return ErrCategoryInUse
	}

	if err := s.db.WithContext(ctx).Delete(&models.Category{}, id).Error; err != nil {
		return fmt.Errorf("category service: delete: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.CategoryDelete,
		Resource: strconv.FormatUint(uint64(id), 10),
	})
	return nil
}
