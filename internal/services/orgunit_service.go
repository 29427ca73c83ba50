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
	// ErrMCCNotFound indicates the requested MCC does not exist.
	ErrMCCNotFound = apperrors.New("MCC_NOT_FOUND", "MCC not found", http.StatusNotFound)
	// ErrMCCCodeTaken signals a duplicate MCC code.
	ErrMCCCodeTaken = apperrors.New("MCC_EXISTS", "MCC code already exists", http.StatusConflict)
	// ErrMCCInUse prevents deleting an MCC that MPPs or villages still reference.
	ErrMCCInUse = apperrors.New("MCC_IN_USE", "MCC still has MPPs or villages attached", http.StatusConflict)
	// ErrMPPNotFound indicates the requested MPP does not exist.
	ErrMPPNotFound = apperrors.New("MPP_NOT_FOUND", "MPP not found", http.StatusNotFound)
	// ErrMPPCodeTaken signals a duplicate MPP code.
	ErrMPPCodeTaken = apperrors.New("MPP_EXISTS", "MPP code already exists", http.StatusConflict)
)

// OrgUnitInput captures MCC and MPP fields. MCCCode is only used for MPPs.
// Codes are fixed once created; Update ignores Code.
type OrgUnitInput struct {
	Code    string
	Name    string
	MCCCode string
	Status  *bool
}

// OrgUnitFilter narrows MCC and MPP listings.
type OrgUnitFilter struct {
	MCCCode string
	Status  *bool
}

var orgUnitSortable = map[string]string{
	"id":         "id",
	"code":       "code",
	"name":       "name",
	"created_at": "created_at",
}

// MCCService manages milk chilling centres.
type MCCService struct {
	db           *gorm.DB
	auditService *AuditService
	notifier     Notifier
}

// NewMCCService constructs an MCCService.
func NewMCCService(db *gorm.DB, auditService *AuditService, opts ...Option) (*MCCService, error) {
	if db == nil {
		return nil, errors.New("mcc service: db is required")
	}
	cfg := applyOptions(opts)
	return &MCCService{db: db, auditService: auditService, notifier: cfg.notifier}, nil
}

// List returns a page of MCCs.
func (s *MCCService) List(ctx context.Context, req PageRequest, filter OrgUnitFilter) (PageResult[models.MCC], error) {
	ctx = ensureContext(ctx)
	req = normalizePageRequest(req)

	query := s.db.WithContext(ctx).Model(&models.MCC{})
	if req.Search != "" {
		pattern := likePattern(req.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", pattern, pattern)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	page, err := paginate[models.MCC](query, req, orderClause(req, orgUnitSortable, "code ASC"))
	if err != nil {
		return PageResult[models.MCC]{}, fmt.Errorf("mcc service: list: %w", err)
	}
	return page, nil
}

// All returns every MCC ordered by code.
func (s *MCCService) All(ctx context.Context) ([]models.MCC, error) {
	ctx = ensureContext(ctx)
	var mccs []models.MCC
	if err := s.db.WithContext(ctx).Order("code ASC").Find(&mccs).Error; err != nil {
		return nil, fmt.Errorf("mcc service: all: %w", err)
	}
	return mccs, nil
}

// Get loads an MCC by id.
func (s *MCCService) Get(ctx context.Context, id uint) (*models.MCC, error) {
	ctx = ensureContext(ctx)

	var mcc models.MCC
	err := s.db.WithContext(ctx).First(&mcc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMCCNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mcc service: get: %w", err)
	}
	return &mcc, nil
}

// Create registers an MCC.
func (s *MCCService) Create(ctx context.Context, input OrgUnitInput) (*models.MCC, error) {
	ctx = ensureContext(ctx)

	mcc, err := newMCC(input)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(mcc).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrMCCCodeTaken
		}
		return nil, fmt.Errorf("mcc service: create: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.MCCCreate,
		Resource: mcc.Code,
		Metadata: map[string]any{"id": mcc.ID},
	})
	return mcc, nil
}

// Update modifies the name or status of an MCC.
func (s *MCCService) Update(ctx context.Context, id uint, input OrgUnitInput) (*models.MCC, error) {
	ctx = ensureContext(ctx)

	mcc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := orgUnitUpdates(mcc.Name, mcc.Status, input)
	if len(updates) == 0 {
		return mcc, nil
	}
	if err := s.db.WithContext(ctx).Model(&models.MCC{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("mcc service: update: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.MCCUpdate,
		Resource: mcc.Code,
		Metadata: updates,
	})
	return s.Get(ctx, id)
}

// Delete removes an MCC that nothing references.
func (s *MCCService) Delete(ctx context.Context, id uint) error {
	ctx = ensureContext(ctx)

	mcc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	var refs int64
	if err := s.db.WithContext(ctx).Model(&models.MPP{}).Where("mcc_code = ?", mcc.Code).Count(&refs).Error; err != nil {
		return fmt.Errorf("mcc service: count mpps: %w", err)
	}
	if refs == 0 {
		if err := s.db.WithContext(ctx).Model(&models.Village{}).Where("mcc_code = ?", mcc.Code).Count(&refs).Error; err != nil {
			return fmt.Errorf("mcc service: count villages: %w", err)
		}
	}
	if refs > 0 {
		return ErrMCCInUse
	}

	if err := s.db.WithContext(ctx).Delete(&models.MCC{}, id).Error; err != nil {
		return fmt.Errorf("mcc service: delete: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.MCCDelete,
		Resource: mcc.Code,
	})
	return nil
}

// Upsert inserts an MCC or renames the one with the same code.
func (s *MCCService) Upsert(ctx context.Context, input OrgUnitInput) (bool, error) {
	ctx = ensureContext(ctx)

	mcc, err := newMCC(input)
	if err != nil {
		return false, err
	}

	var existing models.MCC
	err = s.db.WithContext(ctx).Where("code = ?", mcc.Code).Take(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.WithContext(ctx).Create(mcc).Error; err != nil {
			return false, fmt.Errorf("mcc service: upsert: %w", err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("mcc service: upsert: %w", err)
	}

	updates := map[string]any{"name": mcc.Name}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if err := s.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		return false, fmt.Errorf("mcc service: upsert: %w", err)
	}
	return false, nil
}

func newMCC(input OrgUnitInput) (*models.MCC, error) {
	mcc := &models.MCC{
		Code:   strings.TrimSpace(input.Code),
		Name:   strings.TrimSpace(input.Name),
		Status: true,
	}
	if input.Status != nil {
		mcc.Status = *input.Status
	}
	if fields := orgUnitFields(mcc.Code, mcc.Name); len(fields) > 0 {
		return nil, apperrors.NewValidation("", fields)
	}
	return mcc, nil
}

// MPPService manages milk procurement points.
type MPPService struct {
	db           *gorm.DB
	auditService *AuditService
	notifier     Notifier
}

// NewMPPService constructs an MPPService.
func NewMPPService(db *gorm.DB, auditService *AuditService, opts ...Option) (*MPPService, error) {
	if db == nil {
		return nil, errors.New("mpp service: db is required")
	}
	cfg := applyOptions(opts)
	return &MPPService{db: db, auditService: auditService, notifier: cfg.notifier}, nil
}

// List returns a page of MPPs, optionally restricted to one MCC.
func (s *MPPService) List(ctx context.Context, req PageRequest, filter OrgUnitFilter) (PageResult[models.MPP], error) {
	ctx = ensureContext(ctx)
	req = normalizePageRequest(req)

	query := s.db.WithContext(ctx).Model(&models.MPP{})
	if req.Search != "" {
		pattern := likePattern(req.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", pattern, pattern)
	}
	if code := strings.TrimSpace(filter.MCCCode); code != "" {
		query = query.Where("mcc_code = ?", code)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	page, err := paginate[models.MPP](query, req, orderClause(req, orgUnitSortable, "code ASC"))
	if err != nil {
		return PageResult[models.MPP]{}, fmt.Errorf("mpp service: list: %w", err)
	}
	return page, nil
}

// All returns every MPP ordered by code.
func (s *MPPService) All(ctx context.Context) ([]models.MPP, error) {
	ctx = ensureContext(ctx)
	var mpps []models.MPP
	if err := s.db.WithContext(ctx).Order("code ASC").Find(&mpps).Error; err != nil {
		return nil, fmt.Errorf("mpp service: all: %w", err)
	}
	return mpps, nil
}

// Get loads an MPP by id.
func (s *MPPService) Get(ctx context.Context, id uint) (*models.MPP, error) {
	ctx = ensureContext(ctx)

	var mpp models.MPP
	err := s.db.WithContext(ctx).First(&mpp, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMPPNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mpp service: get: %w", err)
	}
	return &mpp, nil
}

// Create registers an MPP under an existing MCC.
func (s *MPPService) Create(ctx context.Context, input OrgUnitInput) (*models.MPP, error) {
	ctx = ensureContext(ctx)

	mpp, err := s.newMPP(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(mpp).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrMPPCodeTaken
		}
		return nil, fmt.Errorf("mpp service: create: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.MPPCreate,
		Resource: mpp.Code,
		Metadata: map[string]any{"id": mpp.ID, "mcc_code": mpp.MCCCode},
	})
	return mpp, nil
}

// Update modifies the name, status or parent MCC of an MPP.
func (s *MPPService) Update(ctx context.Context, id uint, input OrgUnitInput) (*models.MPP, error) {
	ctx = ensureContext(ctx)

	mpp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := orgUnitUpdates(mpp.Name, mpp.Status, input)
	if mcc := strings.TrimSpace(input.MCCCode); mcc != "" && mcc != mpp.MCCCode {
		if err := checkMCCExists(ctx, s.db, mcc); err != nil {
			return nil, err
		}
		updates["mcc_code"] = mcc
	}
	if len(updates) == 0 {
		return mpp, nil
	}
	if err := s.db.WithContext(ctx).Model(&models.MPP{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("mpp service: update: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.MPPUpdate,
		Resource: mpp.Code,
		Metadata: updates,
	})
	return s.Get(ctx, id)
}

// Delete removes an MPP.
func (s *MPPService) Delete(ctx context.Context, id uint) error {
	ctx = ensureContext(ctx)

	mpp, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.MPP{}, id).Error; err != nil {
		return fmt.Errorf("mpp service: delete: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.MPPDelete,
		Resource: mpp.Code,
	})
	return nil
}

// Upsert inserts an MPP or updates the one with the same code.
func (s *MPPService) Upsert(ctx context.Context, input OrgUnitInput) (bool, error) {
	ctx = ensureContext(ctx)

	mpp, err := s.newMPP(ctx, input)
	if err != nil {
		return false, err
	}

	var existing models.MPP
	err = s.db.WithContext(ctx).Where("code = ?", mpp.Code).Take(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.WithContext(ctx).Create(mpp).Error; err != nil {
			return false, fmt.Errorf("mpp service: upsert: %w", err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("mpp service: upsert: %w", err)
	}

	updates := map[string]any{"name": mpp.Name, "mcc_code": mpp.MCCCode}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if err := s.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		return false, fmt.Errorf("mpp service: upsert: %w", err)
	}
	return false, nil
}

func (s *MPPService) newMPP(ctx context.Context, input OrgUnitInput) (*models.MPP, error) {
	mpp := &models.MPP{
		Code:    strings.TrimSpace(input.Code),
		Name:    strings.TrimSpace(input.Name),
		MCCCode: strings.TrimSpace(input.MCCCode),
		Status:  true,
	}
	if input.Status != nil {
		mpp.Status = *input.Status
	}

	fields := orgUnitFields(mpp.Code, mpp.Name)
	if mpp.MCCCode == "" {
		fields["mcc_code"] = "MCC is required"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation("", fields)
	}
	if err := checkMCCExists(ctx, s.db, mpp.MCCCode); err != nil {
		return nil, err
	}
	return mpp, nil
}

func orgUnitFields(code, name string) map[string]string {
	fields := map[string]string{}
	if code == "" {
		fields["code"] = "Code is required"
	} else if !validator.IsUnitCode(code) {
		fields["code"] = "Code is invalid"
	}
	if name == "" {
		fields["name"] = "Name is required"
	}
	return fields
}

func orgUnitUpdates(name string, status bool, input OrgUnitInput) map[string]any {
	updates := map[string]any{}
	if next := strings.TrimSpace(input.Name); next != "" && next != name {
		updates["name"] = next
	}
	if input.Status != nil && *input.Status != status {
		updates["status"] = *input.Status
	}
	return updates
}

var (
	// ErrFormStepNotFound indicates the requested form section does not exist.
	ErrFormStepNotFound = apperrors.New("FORM_STEP_NOT_FOUND", "Form section not found", http.StatusNotFound)
	// ErrFormStepNameTaken signals a duplicate form section name.
	ErrFormStepNameTaken = apperrors.New("FORM_STEP_EXISTS", "Form section already exists", http.StatusConflict)
)

// FormStepInput captures form section fields.
type FormStepInput struct {
	Name      string
	SortOrder *int
	Status    *bool
}

// FormStepService manages the allocatable member form sections.
type FormStepService struct {
	db           *gorm.DB
	auditService *AuditService
	notifier     Notifier
}

// NewFormStepService constructs a FormStepService.
func NewFormStepService(db *gorm.DB, auditService *AuditService, opts ...Option) (*FormStepService, error) {
	if db == nil {
		return nil, errors.New("form step service: db is required")
	}
	cfg := applyOptions(opts)
	return &FormStepService{db: db, auditService: auditService, notifier: cfg.notifier}, nil
}

// List returns every form section ordered for display.
func (s *FormStepService) List(ctx context.Context, status *bool) ([]models.FormStep, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Order("sort_order ASC, id ASC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var steps []models.FormStep
	if err := query.Find(&steps).Error; err != nil {
		return nil, fmt.Errorf("form step service: list: %w", err)
	}
	return steps, nil
}

// Get loads a form section by id.
func (s *FormStepService) Get(ctx context.Context, id uint) (*models.FormStep, error) {
	ctx = ensureContext(ctx)

	var step models.FormStep
	err := s.db.WithContext(ctx).First(&step, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFormStepNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("form step service: get: %w", err)
	}
	return &step, nil
}

// Create registers a form section.
func (s *FormStepService) Create(ctx context.Context, input FormStepInput) (*models.FormStep, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidation("", map[string]string{"name": "Name is required"})
	}
	step := &models.FormStep{Name: name, Status: true}
	if input.SortOrder != nil {
		step.SortOrder = *input.SortOrder
	}
	if input.Status != nil {
		step.Status = *input.Status
	}
	if err := s.db.WithContext(ctx).Create(step).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrFormStepNameTaken
		}
		return nil, fmt.Errorf("form step service: create: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.FormStepCreate,
		Resource: strconv.FormatUint(uint64(step.ID), 10),
		Metadata: map[string]any{"name": step.Name},
	})
	return step, nil
}

// Update modifies a form section.
func (s *FormStepService) Update(ctx context.Context, id uint, input FormStepInput) (*models.FormStep, error) {
	ctx = ensureContext(ctx)

	step, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" && name != step.Name {
		updates["name"] = name
	}
	if input.SortOrder != nil && *input.SortOrder != step.SortOrder {
		updates["sort_order"] = *input.SortOrder
	}
	if input.Status != nil && *input.Status != step.Status {
		updates["status"] = *input.Status
	}
	if len(updates) == 0 {
		return step, nil
	}
	if err := s.db.WithContext(ctx).Model(&models.FormStep{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrFormStepNameTaken
		}
		return nil, fmt.Errorf("form step service: update: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.FormStepUpdate,
		Resource: strconv.FormatUint(uint64(id), 10),
		Metadata: updates,
	})
	return s.Get(ctx, id)
}

// Delete removes a form section.
func (s *FormStepService) Delete(ctx context.Context, id uint) error {
	ctx = ensureContext(ctx)

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.FormStep{}, id).Error; err != nil {
		return fmt.Errorf("form step service: delete: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.FormStepDelete,
		Resource: strconv.FormatUint(uint64(id), 10),
	})
	return nil
}
