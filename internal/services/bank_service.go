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
	// ErrBankNotFound indicates the requested bank does not exist.
	ErrBankNotFound = apperrors.New("BANK_NOT_FOUND", "Bank not found", http.StatusNotFound)
	// ErrBankIFSCTaken signals a duplicate IFSC code.
	ErrBankIFSCTaken = apperrors.New("BANK_EXISTS", "IFSC code already registered", http.StatusConflict)
)

// BankInput captures bank fields for create, update and import.
type BankInput struct {
	Name     string
	Branch   string
	IFSCCode string
	Status   *bool
}

var bankSortable = map[string]string{
	"id":         "banks.id",
	"name":       "banks.name",
	"branch":     "banks.branch",
	"ifsc_code":  "banks.ifsc_code",
	"created_at": "banks.created_at",
}

// BankService manages payout banks.
type BankService struct {
	db           *gorm.DB
	auditService *AuditService
	notifier     Notifier
}

// NewBankService constructs a BankService.
func NewBankService(db *gorm.DB, auditService *AuditService, opts ...Option) (*BankService, error) {
	if db == nil {
		return nil, errors.New("bank service: db is required")
	}
	cfg := applyOptions(opts)
	return &BankService{db: db, auditService: auditService, notifier: cfg.notifier}, nil
}

// List returns a page of banks.
func (s *BankService) List(ctx context.Context, req PageRequest, status *bool) (PageResult[models.Bank], error) {
	ctx = ensureContext(ctx)
	req = normalizePageRequest(req)

	query := s.db.WithContext(ctx).Model(&models.Bank{})
	if req.Search != "" {
		pattern := likePattern(req.Search)
		query = query.Where("LOWER(banks.name) LIKE ? OR LOWER(banks.branch) LIKE ? OR LOWER(banks.ifsc_code) LIKE ?", pattern, pattern, pattern)
	}
	if status != nil {
		query = query.Where("banks.status = ?", *status)
	}

	page, err := paginate[models.Bank](query, req, orderClause(req, bankSortable, "banks.id DESC"))
	if err != nil {
		return PageResult[models.Bank]{}, fmt.Errorf("bank service: list: %w", err)
	}
	return page, nil
}

// All returns every bank ordered by name, used by exports.
func (s *BankService) All(ctx context.Context) ([]models.Bank, error) {
	ctx = ensureContext(ctx)
	var banks []models.Bank
	if err := s.db.WithContext(ctx).Order("name ASC, id ASC").Find(&banks).Error; err != nil {
		return nil, fmt.Errorf("bank service: all: %w", err)
	}
	return banks, nil
}

// Get loads a bank by id.
func (s *BankService) Get(ctx context.Context, id uint) (*models.Bank, error) {
	ctx = ensureContext(ctx)

	var bank models.Bank
	err := s.db.WithContext(ctx).First(&bank, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBankNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("bank service: get: %w", err)
	}
	return &bank, nil
}

// Create registers a bank.
func (s *BankService) Create(ctx context.Context, input BankInput) (*models.Bank, error) {
	ctx = ensureContext(ctx)

	bank, err := newBank(input)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(bank).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrBankIFSCTaken
		}
		return nil, fmt.Errorf("bank service: create: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.BankCreate,
		Resource: strconv.FormatUint(uint64(bank.ID), 10),
		Metadata: map[string]any{"ifsc_code": bank.IFSCCode},
	})
	return bank, nil
}

// Update modifies a bank.
func (s *BankService) Update(ctx context.Context, id uint, input BankInput) (*models.Bank, error) {
	ctx = ensureContext(ctx)

	bank, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" && name != bank.Name {
		updates["name"] = name
	}
	if branch := strings.TrimSpace(input.Branch); branch != "" && branch != bank.Branch {
		updates["branch"] = branch
	}
	if ifsc := strings.ToUpper(strings.TrimSpace(input.IFSCCode)); ifsc != "" && ifsc != bank.IFSCCode {
		if !validator.IsIFSC(ifsc) {
			return nil, apperrors.NewValidation("", map[string]string{"ifsc_code": "IFSC code is invalid"})
		}
		updates["ifsc_code"] = ifsc
	}
	if input.Status != nil && *input.Status != bank.Status {
		updates["status"] = *input.Status
	}
	if len(updates) == 0 {
		return bank, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.Bank{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrBankIFSCTaken
		}
		return nil, fmt.Errorf("bank service: update: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.BankUpdate,
		Resource: strconv.FormatUint(uint64(id), 10),
		Metadata: updates,
	})
	return s.Get(ctx, id)
}

// Delete removes a bank.
func (s *BankService) Delete(ctx context.Context, id uint) error {
	ctx = ensureContext(ctx)

	bank, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Bank{}, id).Error; err != nil {
		return fmt.Errorf("bank service: delete: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.BankDelete,
		Resource: strconv.FormatUint(uint64(id), 10),
		Metadata: map[string]any{"ifsc_code": bank.IFSCCode},
	})
	return nil
}

// Upsert inserts a bank or updates the one with the same IFSC code.
// It reports whether a new row was inserted and does not notify.
func (s *BankService) Upsert(ctx context.Context, input BankInput) (bool, error) {
	ctx = ensureContext(ctx)

	bank, err := newBank(input)
	if err != nil {
		return false, err
	}

	var existing models.Bank
	err = s.db.WithContext(ctx).Where("ifsc_code = ?", bank.IFSCCode).Take(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.WithContext(ctx).Create(bank).Error; err != nil {
			return false, fmt.Errorf("bank service: upsert: %w", err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("bank service: upsert: %w", err)
	}

	updates := map[string]any{"name": bank.Name, "branch": bank.Branch}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if err := s.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		return false, fmt.Errorf("bank service: upsert: %w", err)
	}
	return false, nil
}

func newBank(input BankInput) (*models.Bank, error) {
	bank := &models.Bank{
		Name:     strings.TrimSpace(input.Name),
		Branch:   strings.TrimSpace(input.Branch),
		IFSCCode: strings.ToUpper(strings.TrimSpace(input.IFSCCode)),
		Status:   true,
	}
	if input.Status != nil {
		bank.Status = *input.Status
	}

	fields := map[string]string{}
	if bank.Name == "" {
		fields["name"] = "Name is required"
	}
	if bank.IFSCCode == "" {
		fields["ifsc_code"] = "IFSC code is required"
	} else if !validator.IsIFSC(bank.IFSCCode) {
		fields["ifsc_code"] = "IFSC code is invalid"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation("", fields)
	}
	return bank, nil
}
