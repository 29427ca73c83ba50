package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/dairyadmin/internal/cache"
	"github.com/charlesng35/dairyadmin/internal/invalidation"
	"github.com/charlesng35/dairyadmin/internal/models"
	apperrors "github.com/charlesng35/dairyadmin/pkg/errors"
	"github.com/charlesng35/dairyadmin/pkg/logger"
)

const (
	moduleTreeCacheKey     = "modules:tree"
	defaultModuleTreeTTL   = 10 * time.Minute
	moduleRoutePatternHint = "Route may contain lowercase letters, digits, '-' and '/'"
)

var (
	// ErrModuleNotFound indicates the requested module does not exist.
	ErrModuleNotFound = apperrors.New("MODULE_NOT_FOUND", "Module not found", http.StatusNotFound)
	// ErrModuleRouteTaken signals a duplicate module route.
	ErrModuleRouteTaken = apperrors.New("MODULE_EXISTS", "Module route already exists", http.StatusConflict)
	// ErrModuleHasChildren prevents deleting a parent module with sub-modules.
	ErrModuleHasChildren = apperrors.New("MODULE_HAS_CHILDREN", "Module still has sub-modules", http.StatusConflict)
	// ErrModuleTooDeep rejects a parent that is itself a sub-module.
	ErrModuleTooDeep = apperrors.New("MODULE_TOO_DEEP", "Modules can only be nested one level deep", http.StatusUnprocessableEntity)
)

// ModuleInput captures module fields for create and update.
type ModuleInput struct {
	Name      string
	Route     string
	ParentID  *uint
	SortOrder *int
	Status    *bool
}

// ModuleFilter narrows module listings.
type ModuleFilter struct {
	ParentID *uint
	RootOnly bool
	Status   *bool
}

// ModuleNode is a parent module with its ordered children.
type ModuleNode struct {
	models.Module
	Children []models.Module `json:"children"`
}

var moduleSortable = map[string]string{
	"id":         "modules.id",
	"name":       "modules.name",
	"route":      "modules.route",
	"sort_order": "modules.sort_order",
	"created_at": "modules.created_at",
}

// ModuleService manages the console module tree.
type ModuleService struct {
	db           *gorm.DB
	auditService *AuditService
	notifier     Notifier
	cache        cache.Store
	treeTTL      time.Duration
}

// NewModuleService constructs a ModuleService. store may be nil to disable tree caching.
func NewModuleService(db *gorm.DB, auditService *AuditService, store cache.Store, treeTTL time.Duration, opts ...Option) (*ModuleService, error) {
	if db == nil {
		return nil, errors.New("module service: db is required")
	}
	if treeTTL <= 0 {
		treeTTL = defaultModuleTreeTTL
	}
	cfg := applyOptions(opts)
	return &ModuleService{
		db:           db,
		auditService: auditService,
		notifier:     cfg.notifier,
		cache:        store,
		treeTTL:      treeTTL,
	}, nil
}

// List returns a page of modules.
func (s *ModuleService) List(ctx context.Context, req PageRequest, filter ModuleFilter) (PageResult[models.Module], error) {
	ctx = ensureContext(ctx)
	req = normalizePageRequest(req)

	query := s.db.WithContext(ctx).Model(&models.Module{})
	if req.Search != "" {
		pattern := likePattern(req.Search)
		query = query.Where("LOWER(modules.name) LIKE ? OR LOWER(modules.route) LIKE ?", pattern, pattern)
	}
	switch {
	case filter.RootOnly:
		query = query.Where("modules.parent_id IS NULL")
	case filter.ParentID != nil:
		query = query.Where("modules.parent_id = ?", *filter.ParentID)
	}
	if filter.Status != nil {
		query = query.Where("modules.status = ?", *filter.Status)
	}

	page, err := paginate[models.Module](query, req, orderClause(req, moduleSortable, "modules.id ASC"))
	if err != nil {
		return PageResult[models.Module]{}, fmt.Errorf("module service: list: %w", err)
	}
	return page, nil
}

// Tree returns root modules with their children, both ordered by sort order.
// The result is cached until the next module mutation.
func (s *ModuleService) Tree(ctx context.Context) ([]ModuleNode, error) {
	ctx = ensureContext(ctx)

	var cached []ModuleNode
	if hit, err := cache.GetJSON(ctx, s.cache, moduleTreeCacheKey, &cached); err == nil && hit {
		return cached, nil
	} else if err != nil {
		logger.WithModule("modules").Warn("module tree cache read failed", zap.Error(err))
	}

	var modules []models.Module
	if err := s.db.WithContext(ctx).Order("sort_order ASC, id ASC").Find(&modules).Error; err != nil {
		return nil, fmt.Errorf("module service: load tree: %w", err)
	}

	tree := buildModuleTree(modules)
	if err := cache.SetJSON(ctx, s.cache, moduleTreeCacheKey, tree, s.treeTTL); err != nil {
		logger.WithModule("modules").Warn("module tree cache write failed", zap.Error(err))
	}
	return tree, nil
}

func buildModuleTree(modules []models.Module) []ModuleNode {
	children := make(map[uint][]models.Module)
	roots := make([]ModuleNode, 0)
	for _, mod := range modules {
		if mod.IsRoot() {
			roots = append(roots, ModuleNode{Module: mod, Children: []models.Module{}})
			continue
		}
		children[*mod.ParentID] = append(children[*mod.ParentID], mod)
	}
	for i := range roots {
		kids := children[roots[i].ID]
		sort.SliceStable(kids, func(a, b int) bool {
			return kids[a].SortOrder < kids[b].SortOrder
		})
		if kids != nil {
			roots[i].Children = kids
		}
	}
	return roots
}

// Get loads a module by id.
func (s *ModuleService) Get(ctx context.Context, id uint) (*models.Module, error) {
	ctx = ensureContext(ctx)

	var mod models.Module
	err := s.db.WithContext(ctx).First(&mod, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrModuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("module service: get: %w", err)
	}
	return &mod, nil
}

// Create registers a module. A parent must itself be a root module.
func (s *ModuleService) Create(ctx context.Context, input ModuleInput) (*models.Module, error) {
	ctx = ensureContext(ctx)

	fields := map[string]string{}
	name := strings.TrimSpace(input.Name)
	route := normaliseRoute(input.Route)
	if name == "" {
		fields["name"] = "Name is required"
	}
	if route == "" {
		fields["route"] = "Route is required"
	} else if !validRoute(route) {
		fields["route"] = moduleRoutePatternHint
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation("", fields)
	}

	parentID, err := s.checkParent(ctx, 0, input.ParentID)
	if err != nil {
		return nil, err
	}

	mod := &models.Module{Name: name, Route: route, ParentID: parentID, Status: true}
	if input.SortOrder != nil {
		mod.SortOrder = *input.SortOrder
	}
	if input.Status != nil {
		mod.Status = *input.Status
	}

	if err := s.db.WithContext(ctx).Create(mod).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrModuleRouteTaken
		}
		return nil, fmt.Errorf("module service: create: %w", err)
	}

	s.afterMutation(ctx, invalidation.ModuleCreate, mod.ID, map[string]any{"route": mod.Route})
	return mod, nil
}

// Update modifies a module.
func (s *ModuleService) Update(ctx context.Context, id uint, input ModuleInput) (*models.Module, error) {
	ctx = ensureContext(ctx)

	mod, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" && name != mod.Name {
		updates["name"] = name
	}
	if route := normaliseRoute(input.Route); route != "" && route != mod.Route {
		if !validRoute(route) {
			return nil, apperrors.NewValidation("", map[string]string{"route": moduleRoutePatternHint})
		}
		updates["route"] = route
	}
	if input.ParentID != nil {
		parentID, err := s.checkParent(ctx, id, input.ParentID)
		if err != nil {
			return nil, err
		}
		if parentID != nil {
			var kids int64
			if err := s.db.WithContext(ctx).Model(&models.Module{}).Where("parent_id = ?", id).Count(&kids).Error; err != nil {
				return nil, fmt.Errorf("module service: count children: %w", err)
			}
			if kids > 0 {
				return nil, ErrModuleTooDeep
			}
		}
		updates["parent_id"] = parentID
	}
	if input.SortOrder != nil && *input.SortOrder != mod.SortOrder {
		updates["sort_order"] = *input.SortOrder
	}
	if input.Status != nil && *input.Status != mod.Status {
		updates["status"] = *input.Status
	}
	if len(updates) == 0 {
		return mod, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.Module{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrModuleRouteTaken
		}
		return nil, fmt.Errorf("module service: update: %w", err)
	}

	s.afterMutation(ctx, invalidation.ModuleUpdate, id, updates)
	return s.Get(ctx, id)
}

// Delete removes a module without children, along with its grants.
func (s *ModuleService) Delete(ctx context.Context, id uint) error {
	ctx = ensureContext(ctx)

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	var kids int64
	if err := s.db.WithContext(ctx).Model(&models.Module{}).Where("parent_id = ?", id).Count(&kids).Error; err != nil {
		return fmt.Errorf("module service: count children: %w", err)
	}
	if kids > 0 {
		return ErrModuleHasChildren
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("module_id = ?", id).Delete(&models.Permission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Module{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("module service: delete: %w", err)
	}

	s.afterMutation(ctx, invalidation.ModuleDelete, id, nil)
	return nil
}

// checkParent validates the requested parent. A zero id means "no parent".
func (s *ModuleService) checkParent(ctx context.Context, selfID uint, parentID *uint) (*uint, error) {
	if parentID == nil || *parentID == 0 {
		return nil, nil
	}
	if selfID != 0 && *parentID == selfID {
		return nil, apperrors.NewValidation("", map[string]string{"parent_id": "A module cannot be its own parent"})
	}

	parent, err := s.Get(ctx, *parentID)
	if errors.Is(err, ErrModuleNotFound) {
		return nil, apperrors.NewValidation("", map[string]string{"parent_id": "Parent module does not exist"})
	}
	if err != nil {
		return nil, err
	}
	if !parent.IsRoot() {
		return nil, ErrModuleTooDeep
	}
	id := parent.ID
	return &id, nil
}

func (s *ModuleService) afterMutation(ctx context.Context, action string, id uint, metadata map[string]any) {
	if s.cache != nil {
		if err := s.cache.Delete(ctx, moduleTreeCacheKey); err != nil {
			logger.WithModule("modules").Warn("module tree cache invalidation failed", zap.Error(err))
		}
	}
	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   action,
		Resource: strconv.FormatUint(uint64(id), 10),
		Metadata: metadata,
	})
}

func normaliseRoute(route string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(route)), "/")
}

func validRoute(route string) bool {
	for _, r := range route {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '/':
		default:
			return false
		}
	}
	return route != ""
}
