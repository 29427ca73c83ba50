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
	"github.com/charlesng35/dairyadmin/pkg/validator"
)

var (
	// ErrVillageNotFound indicates the requested village does not exist.
	ErrVillageNotFound = apperrors.New("VILLAGE_NOT_FOUND", "Village not found", http.StatusNotFound)
	// ErrVillageCodeTaken signals a duplicate village code.
	ErrVillageCodeTaken = apperrors.New("VILLAGE_EXISTS", "Village code already exists", http.StatusConflict)
)

// VillageInput captures village fields for create, update and import.
type VillageInput struct {
	Name    string
	Code    string
	MCCCode *string
	Status  *bool
}

// VillageFilter narrows village listings.
type VillageFilter struct {
	MCCCode string
	Status  *bool
}

var villageSortable = map[string]string{
	"id":         "villages.id",
	"name":       "villages.name",
	"code":       "villages.code",
	"mcc_code":   "villages.mcc_code",
	"created_at": "villages.created_at",
}

// VillageService manages member villages.
type VillageService struct {
	db           *gorm.DB
	auditService *AuditService
	notifier     Notifier
}

// NewVillageService constructs a VillageService.
func NewVillageService(db *gorm.DB, auditService *AuditService, opts ...Option) (*VillageService, error) {
	if db == nil {
		return nil, errors.New("village service: db is required")
	}
	cfg := applyOptions(opts)
	return &VillageService{db: db, auditService: auditService, notifier: cfg.notifier}, nil
}

// List returns a page of villages.
func (s *VillageService) List(ctx context.Context, req PageRequest, filter VillageFilter) (PageResult[models.Village], error) {
	ctx = ensureContext(ctx)
	req = normalizePageRequest(req)

	query := s.db.WithContext(ctx).Model(&models.Village{})
	if req.Search != "" {
		pattern := likePattern(req.Search)
		query = query.Where("LOWER(villages.name) LIKE ? OR LOWER(villages.code) LIKE ?", pattern, pattern)
	}
	if code := strings.TrimSpace(filter.MCCCode); code != "" {
		query = query.Where("villages.mcc_code = ?", code)
	}
	if filter.Status != nil {
		query = query.Where("villages.status = ?", *filter.Status)
	}

	page, err := paginate[models.Village](query, req, orderClause(req, villageSortable, "villages.id DESC"))
	if err != nil {
		return PageResult[models.Village]{}, fmt.Errorf("village service: list: %w", err)
	}
	return page, nil
}

// All returns every village ordered by code.
func (s *VillageService) All(ctx context.Context) ([]models.Village, error) {
	ctx = ensureContext(ctx)
	var villages []models.Village
	if err := s.db.WithContext(ctx).Order("code ASC").Find(&villages).Error; err != nil {
		return nil, fmt.Errorf("village service: all: %w", err)
	}
	return villages, nil
}

// Get loads a village by id.
func (s *VillageService) Get(ctx context.Context, id uint) (*models.Village, error) {
	ctx = ensureContext(ctx)

	var village models.Village
	err := s.db.WithContext(ctx).First(&village, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVillageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("village service: get: %w", err)
	}
	return &village, nil
}

// Create registers a village.
func (s *VillageService) Create(ctx context.Context, input VillageInput) (*models.Village, error) {
	ctx = ensureContext(ctx)

	village, err := s.newVillage(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(village).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrVillageCodeTaken
		}
		return nil, fmt.Errorf("village service: create: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.VillageCreate,
		Resource: strconv.FormatUint(uint64(village.ID), 10),
		Metadata: map[string]any{"code": village.Code},
	})
	return village, nil
}

// Update modifies a village.
func (s *VillageService) Update(ctx context.Context, id uint, input VillageInput) (*models.Village, error) {
	ctx = ensureContext(ctx)

	village, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" && name != village.Name {
		updates["name"] = name
	}
	if code := strings.TrimSpace(input.Code); code != "" && code != village.Code {
		if !validator.IsUnitCode(code) {
			return nil, apperrors.NewValidation("", map[string]string{"code": "Code is invalid"})
		}
		updates["code"] = code
	}
	if input.MCCCode != nil {
		mcc := strings.TrimSpace(*input.MCCCode)
		if err := checkMCCExists(ctx, s.db, mcc); err != nil {
			return nil, err
		}
		updates["mcc_code"] = mcc
	}
	if input.Status != nil && *input.Status != village.Status {
		updates["status"] = *input.Status
	}
	if len(updates) == 0 {
		return village, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.Village{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrVillageCodeTaken
		}
		return nil, fmt.Errorf("village service: update: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.VillageUpdate,
		Resource: strconv.FormatUint(uint64(id), 10),
		Metadata: updates,
	})
	return s.Get(ctx, id)
}

// Delete removes a village.
func (s *VillageService) Delete(ctx context.Context, id uint) error {
	ctx = ensureContext(ctx)

	village, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Village{}, id).Error; err != nil {
		return fmt.Errorf("village service: delete: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.VillageDelete,
		Resource: strconv.FormatUint(uint64(id), 10),
		Metadata: map[string]any{"code": village.Code},
	})
	return nil
}

// Upsert inserts a village or updates the one with the same code.
// It reports whether a new row was inserted and does not notify.
func (s *VillageService) Upsert(ctx context.Context, input VillageInput) (bool, error) {
	ctx = ensureContext(ctx)

	village, err := s.newVillage(ctx, input)
	if err != nil {
		return false, err
	}

	var existing models.Village
	err = s.db.WithContext(ctx).Where("code = ?", village.Code).Take(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.WithContext(ctx).Create(village).Error; err != nil {
			return false, fmt.Errorf("village service: upsert: %w", err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("village service: upsert: %w", err)
	}

	updates := map[string]any{"name": village.Name, "mcc_code": village.MCCCode}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if err := s.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		return false, fmt.Errorf("village service: upsert: %w", err)
	}
	return false, nil
}

func (s *VillageService) newVillage(ctx context.Context, input VillageInput) (*models.Village, error) {
	village := &models.Village{
		Name:   strings.TrimSpace(input.Name),
		Code:   strings.TrimSpace(input.Code),
		Status: true,
	}
	if input.MCCCode != nil {
		village.MCCCode = strings.TrimSpace(*input.MCCCode)
	}
	if input.Status != nil {
		village.Status = *input.Status
	}

	fields := map[string]string{}
	if village.Name == "" {
		fields["name"] = "Name is required"
	}
	if village.Code == "" {
		fields["code"] = "Code is required"
	} else if !validator.IsUnitCode(village.Code) {
		fields["code"] = "Code is invalid"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation("", fields)
	}
	if err := checkMCCExists(ctx, s.db, village.MCCCode); err != nil {
		return nil, err
	}
	return village, nil
}

// checkMCCExists accepts a blank code; any other code must name a stored MCC.
func checkMCCExists(ctx context.Context, db *gorm.DB, code string) error {
	if code == "" {
		return nil
	}
	var count int64
	if err := db.WithContext(ctx).Model(&models.MCC{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return fmt.Errorf("load mcc: %w", err)
	}
	if count == 0 {
		return apperrors.NewValidation("", map[string]string{"mcc_code": "Unknown MCC: " + code})
	}
	return nil
}
