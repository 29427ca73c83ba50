package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"gorm.io/gorm"

	"github.com/charlesng35/dairyadmin/internal/hierarchy"
	"github.com/charlesng35/dairyadmin/internal/invalidation"
	"github.com/charlesng35/dairyadmin/internal/models"
	apperrors "github.com/charlesng35/dairyadmin/pkg/errors"
)

var (
	// ErrHierarchyNotFound indicates the requested hierarchy does not exist.
	ErrHierarchyNotFound = apperrors.New("HIERARCHY_NOT_FOUND", "Approval hierarchy not found", http.StatusNotFound)
	// ErrHierarchyInvalid wraps level and role validation failures.
	ErrHierarchyInvalid = apperrors.New("HIERARCHY_INVALID", "Approval hierarchy is invalid", http.StatusUnprocessableEntity)
	// ErrHierarchyDuplicateRole rejects a role chosen for more than one level.
	ErrHierarchyDuplicateRole = apperrors.New("HIERARCHY_DUPLICATE_ROLE", "A role can only appear once in a hierarchy", http.StatusUnprocessableEntity)
)

// HierarchyInput is the create and update payload.
type HierarchyInput struct {
	Level  int
	Levels []hierarchy.Level
	Status *bool
}

// HierarchyFilter narrows hierarchy listings.
type HierarchyFilter struct {
	Status *bool
}

var hierarchySortable = map[string]string{
	"id":         "approval_hierarchies.id",
	"level":      "approval_hierarchies.level",
	"created_at": "approval_hierarchies.created_at",
}

// HierarchyService manages approval hierarchies.
type HierarchyService struct {
	db           *gorm.DB
	auditService *AuditService
	notifier     Notifier
	bounds       hierarchy.Bounds
}

// NewHierarchyService constructs a HierarchyService. maxLevels caps the
// level count accepted by Create and Update; non-positive values use the
// add screen default.
func NewHierarchyService(db *gorm.DB, auditService *AuditService, maxLevels int, opts ...Option) (*HierarchyService, error) {
	if db == nil {
		return nil, errors.New("hierarchy service: db is required")
	}
	bounds := hierarchy.AddBounds
	if maxLevels > 0 {
		bounds.Max = maxLevels
	}
	cfg := applyOptions(opts)
	return &HierarchyService{
		db:           db,
		auditService: auditService,
		notifier:     cfg.notifier,
		bounds:       bounds,
	}, nil
}

// Bounds reports the level count limits enforced by the service.
func (s *HierarchyService) Bounds() hierarchy.Bounds {
	return s.bounds
}

// List returns a page of hierarchies, newest first unless another sort is requested.
func (s *HierarchyService) List(ctx context.Context, req PageRequest, filter HierarchyFilter) (PageResult[models.ApprovalHierarchy], error) {
	ctx = ensureContext(ctx)
	req = normalizePageRequest(req)

	query := s.db.WithContext(ctx).Model(&models.ApprovalHierarchy{})
	if filter.Status != nil {
		query = query.Where("approval_hierarchies.status = ?", *filter.Status)
	}

	page, err := paginate[models.ApprovalHierarchy](query, req,
		orderClause(req, hierarchySortable, "approval_hierarchies.created_at DESC, approval_hierarchies.id DESC"),
		"Levels", "Levels.Role")
	if err != nil {
		return PageResult[models.ApprovalHierarchy]{}, fmt.Errorf("hierarchy service: list: %w", err)
	}
	for i := range page.Items {
		sortHierarchyLevels(&page.Items[i])
	}
	return page, nil
}

// Table renders every hierarchy as the dynamic level table.
func (s *HierarchyService) Table(ctx context.Context) (hierarchy.TableView, error) {
	ctx = ensureContext(ctx)

	var records []models.ApprovalHierarchy
	err := s.db.WithContext(ctx).
		Preload("Levels", orderedLevels).
		Preload("Levels.Role").
		Order("created_at DESC, id DESC").
		Find(&records).Error
	if err != nil {
		return hierarchy.TableView{}, fmt.Errorf("hierarchy service: table: %w", err)
	}

	rows := make([]hierarchy.Row, 0, len(records))
	names := make(map[uint]string)
	for i := range records {
		sortHierarchyLevels(&records[i])
		rows = append(rows, HierarchyRow(records[i]))
		for _, lvl := range records[i].Levels {
			if lvl.Role != nil {
				names[lvl.RoleID] = lvl.Role.Name
			}
		}
	}
	return hierarchy.Table(rows, names), nil
}

// Get loads a hierarchy with its levels and roles.
func (s *HierarchyService) Get(ctx context.Context, id uint) (*models.ApprovalHierarchy, error) {
	ctx = ensureContext(ctx)

	var record models.ApprovalHierarchy
	err := s.db.WithContext(ctx).
		Preload("Levels", orderedLevels).
		Preload("Levels.Role").
		First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrHierarchyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("hierarchy service: get: %w", err)
	}
	sortHierarchyLevels(&record)
	return &record, nil
}

// Create stores a new hierarchy after validating levels and roles.
func (s *HierarchyService) Create(ctx context.Context, input HierarchyInput) (*models.ApprovalHierarchy, error) {
	ctx = ensureContext(ctx)

	levels, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}

	record := &models.ApprovalHierarchy{Level: input.Level, Status: true}
	if input.Status != nil {
		record.Status = *input.Status
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Levels").Create(record).Error; err != nil {
			return err
		}
		return tx.Create(levelRows(record.ID, levels)).Error
	})
	if err != nil {
		return nil, fmt.Errorf("hierarchy service: create: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.HierarchyCreate,
		Resource: strconv.FormatUint(uint64(record.ID), 10),
		Metadata: map[string]any{"level": input.Level, "roles": hierarchy.RoleIDs(levels)},
	})
	return s.Get(ctx, record.ID)
}

// Update replaces the level count, every level and optionally the status.
func (s *HierarchyService) Update(ctx context.Context, id uint, input HierarchyInput) (*models.ApprovalHierarchy, error) {
	ctx = ensureContext(ctx)

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	levels, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"level": input.Level}
	if input.Status != nil {
		updates["status"] = *input.Status
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ApprovalHierarchy{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("hierarchy_id = ?", id).Delete(&models.HierarchyLevel{}).Error; err != nil {
			return err
		}
		return tx.Create(levelRows(id, levels)).Error
	})
	if err != nil {
		return nil, fmt.Errorf("hierarchy service: update: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.HierarchyUpdate,
		Resource: strconv.FormatUint(uint64(id), 10),
		Metadata: map[string]any{"level": input.Level, "roles": hierarchy.RoleIDs(levels)},
	})
	return s.Get(ctx, id)
}

// SetStatus toggles a hierarchy without touching its levels.
func (s *HierarchyService) SetStatus(ctx context.Context, id uint, active bool) (*models.ApprovalHierarchy, error) {
	ctx = ensureContext(ctx)

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.ApprovalHierarchy{}).Where("id = ?", id).Update("status", active).Error; err != nil {
		return nil, fmt.Errorf("hierarchy service: set status: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.HierarchyUpdate,
		Resource: strconv.FormatUint(uint64(id), 10),
		Metadata: map[string]any{"status": active},
	})
	return s.Get(ctx, id)
}

// Delete removes a hierarchy and its levels.
func (s *HierarchyService) Delete(ctx context.Context, id uint) error {
	ctx = ensureContext(ctx)

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("hierarchy_id = ?", id).Delete(&models.HierarchyLevel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ApprovalHierarchy{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("hierarchy service: delete: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.HierarchyDelete,
		Resource: strconv.FormatUint(uint64(id), 10),
	})
	return nil
}

// validate applies the shared hierarchy rules, then checks every role exists.
func (s *HierarchyService) validate(ctx context.Context, input HierarchyInput) ([]hierarchy.Level, error) {
	if err := hierarchy.Validate(input.Level, input.Levels, s.bounds); err != nil {
		var verr *hierarchy.ValidationError
		if errors.As(err, &verr) {
			if verr.DuplicateRole {
				return nil, ErrHierarchyDuplicateRole.WithFields(verr.Fields)
			}
			return nil, ErrHierarchyInvalid.WithFields(verr.Fields)
		}
		return nil, err
	}

	levels := hierarchy.Normalize(input.Levels)
	roleIDs := hierarchy.RoleIDs(levels)

	var found []uint
	if err := s.db.WithContext(ctx).Model(&models.Role{}).Where("id IN ?", roleIDs).Pluck("id", &found).Error; err != nil {
		return nil, fmt.Errorf("hierarchy service: load roles: %w", err)
	}
	known := make(map[uint]bool, len(found))
	for _, id := range found {
		known[id] = true
	}

	fields := map[string]string{}
	for _, lvl := range levels {
		if !known[lvl.RoleID] {
			fields[hierarchy.RoleField(lvl.Level)] = "Selected role does not exist"
		}
	}
	if len(fields) > 0 {
		return nil, ErrHierarchyInvalid.WithFields(fields)
	}
	return levels, nil
}

func levelRows(hierarchyID uint, levels []hierarchy.Level) []models.HierarchyLevel {
	rows := make([]models.HierarchyLevel, len(levels))
	for i, lvl := range levels {
		rows[i] = models.HierarchyLevel{HierarchyID: hierarchyID, Level: lvl.Level, RoleID: lvl.RoleID}
	}
	return rows
}

func sortHierarchyLevels(record *models.ApprovalHierarchy) {
	sort.SliceStable(record.Levels, func(i, j int) bool {
		return record.Levels[i].Level < record.Levels[j].Level
	})
}

// HierarchyRow converts a stored hierarchy into its display row.
func HierarchyRow(record models.ApprovalHierarchy) hierarchy.Row {
	levels := make([]hierarchy.Level, len(record.Levels))
	for i, lvl := range record.Levels {
		levels[i] = hierarchy.Level{Level: lvl.Level, RoleID: lvl.RoleID}
	}
	return hierarchy.Row{ID: record.ID, Levels: hierarchy.Normalize(levels), Status: record.Status}
}

func orderedLevels(db *gorm.DB) *gorm.DB {
	return db.Order("hierarchy_levels.level ASC")
}
