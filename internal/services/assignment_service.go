package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/dairyadmin/internal/invalidation"
	"github.com/charlesng35/dairyadmin/internal/models"
	apperrors "github.com/charlesng35/dairyadmin/pkg/errors"
)

// ErrAssignmentNotFound indicates the requested section allocation does not exist.
var ErrAssignmentNotFound = apperrors.New("ASSIGNMENT_NOT_FOUND", "Section allocation not found", http.StatusNotFound)

// AssignmentInput is a single allocation submission: one MCC/MPP pair plus sections.
type AssignmentInput struct {
	RoleID     uint
	UserID     uint
	SectionIDs []uint
	MCCCode    string
	MPPCode    string
}

// AssignmentUpdate replaces every set on an existing allocation.
type AssignmentUpdate struct {
	RoleID     uint
	MCCCodes   []string
	MPPCodes   []string
	SectionIDs []uint
	Status     *bool
}

// AssignmentFilter narrows the full allocation list.
type AssignmentFilter struct {
	RoleID *uint
	UserID *uint
}

// AssignmentView is an allocation with the comma-joined columns the list screen shows.
type AssignmentView struct {
	models.AssignedPermission
	UserName    string `json:"user_name"`
	RoleName    string `json:"role_name"`
	AssignedMCC string `json:"assigned_mcc"`
	AssignedMPP string `json:"assigned_mpp"`
}

// AssignmentService manages per-user section allocations.
type AssignmentService struct {
	db           *gorm.DB
	auditService *AuditService
	notifier     Notifier
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(db *gorm.DB, auditService *AuditService, opts ...Option) (*AssignmentService, error) {
	if db == nil {
		return nil, errors.New("assignment service: db is required")
	}
	cfg := applyOptions(opts)
	return &AssignmentService{db: db, auditService: auditService, notifier: cfg.notifier}, nil
}

// List returns every allocation, newest first. Paging happens on the client.
func (s *AssignmentService) List(ctx context.Context, filter AssignmentFilter) ([]AssignmentView, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Preload("User").Preload("Role").Order("id DESC")
	if filter.RoleID != nil {
		query = query.Where("role_id = ?", *filter.RoleID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var records []models.AssignedPermission
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("assignment service: list: %w", err)
	}

	views := make([]AssignmentView, len(records))
	for i, record := range records {
		views[i] = assignmentView(record)
	}
	return views, nil
}

// Get loads one allocation.
func (s *AssignmentService) Get(ctx context.Context, id uint) (*AssignmentView, error) {
	ctx = ensureContext(ctx)

	var record models.AssignedPermission
	err := s.db.WithContext(ctx).Preload("User").Preload("Role").First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("assignment service: get: %w", err)
	}
	view := assignmentView(record)
	return &view, nil
}

// Assign merges a submission into the user's allocation, creating it on first use.
// The submitted MCC, MPP and sections are added to the existing sets and the role is replaced.
func (s *AssignmentService) Assign(ctx context.Context, input AssignmentInput) (*AssignmentView, error) {
	ctx = ensureContext(ctx)

	mcc := strings.TrimSpace(input.MCCCode)
	mpp := strings.TrimSpace(input.MPPCode)
	sections := normaliseIDs(input.SectionIDs)

	fields := map[string]string{}
	if input.RoleID == 0 {
		fields["role"] = "Role is required"
	}
	if input.UserID == 0 {
		fields["user_id"] = "User is required"
	}
	if len(sections) == 0 {
		fields["section_ids"] = "Select at least one section"
	}
	if mcc == "" {
		fields["mcc_code"] = "MCC is required"
	}
	if mpp == "" {
		fields["mpp_code"] = "MPP is required"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation("", fields)
	}

	if err := s.checkReferences(ctx, input.RoleID, input.UserID, []string{mcc}, []string{mpp}, sections); err != nil {
		return nil, err
	}

	var (
		record  models.AssignedPermission
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", input.UserID).Take(&record).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			fresh := models.AssignedPermission{
				UserID:      input.UserID,
				RoleID:      input.RoleID,
				MCCCodes:    datatypes.JSONSlice[string]{mcc},
				MPPCodes:    datatypes.JSONSlice[string]{mpp},
				FormStepIDs: datatypes.JSONSlice[uint](sections),
				Status:      true,
			}
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}},
				DoNothing: true,
			}).Create(&fresh)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				created = true
				record = fresh
				return nil
			}
			// A concurrent submission created the row first; merge into it.
			if err := tx.Where("user_id = ?", input.UserID).Take(&record).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		record.RoleID = input.RoleID
		record.MCCCodes = datatypes.JSONSlice[string](normaliseCodes(append([]string(record.MCCCodes), mcc)))
		record.MPPCodes = datatypes.JSONSlice[string](normaliseCodes(append([]string(record.MPPCodes), mpp)))
		record.FormStepIDs = datatypes.JSONSlice[uint](normaliseIDs(append([]uint(record.FormStepIDs), sections...)))
		return tx.Model(&models.AssignedPermission{}).Where("id = ?", record.ID).Updates(map[string]any{
			"role_id":       record.RoleID,
			"mcc_codes":     record.MCCCodes,
			"mpp_codes":     record.MPPCodes,
			"formsteps_ids": record.FormStepIDs,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("assignment service: assign: %w", err)
	}

	action := invalidation.AssignmentUpdate
	if created {
		action = invalidation.AssignmentCreate
	}
	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   action,
		Resource: strconv.FormatUint(uint64(record.ID), 10),
		Metadata: map[string]any{"user_id": input.UserID, "mcc_code": mcc, "mpp_code": mpp, "section_ids": sections},
	})
	return s.Get(ctx, record.ID)
}

// Update replaces the allocation's role and sets.
func (s *AssignmentService) Update(ctx context.Context, id uint, input AssignmentUpdate) (*AssignmentView, error) {
	ctx = ensureContext(ctx)

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	roleID := input.RoleID
	if roleID == 0 {
		roleID = current.RoleID
	}
	mccs := normaliseCodes(input.MCCCodes)
	mpps := normaliseCodes(input.MPPCodes)
	sections := normaliseIDs(input.SectionIDs)

	fields := map[string]string{}
	if len(mccs) == 0 {
		fields["mcc_codes"] = "Select at least one MCC"
	}
	if len(mpps) == 0 {
		fields["mpp_codes"] = "Select at least one MPP"
	}
	if len(sections) == 0 {
		fields["section_ids"] = "Select at least one section"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation("", fields)
	}
	if err := s.checkReferences(ctx, roleID, current.UserID, mccs, mpps, sections); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"role_id":       roleID,
		"mcc_codes":     datatypes.JSONSlice[string](mccs),
		"mpp_codes":     datatypes.JSONSlice[string](mpps),
		"formsteps_ids": datatypes.JSONSlice[uint](sections),
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if err := s.db.WithContext(ctx).Model(&models.AssignedPermission{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("assignment service: update: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.AssignmentUpdate,
		Resource: strconv.FormatUint(uint64(id), 10),
		Metadata: map[string]any{"mcc_codes": mccs, "mpp_codes": mpps, "section_ids": sections},
	})
	return s.Get(ctx, id)
}

// Delete removes an allocation.
func (s *AssignmentService) Delete(ctx context.Context, id uint) error {
	ctx = ensureContext(ctx)

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.AssignedPermission{}, id).Error; err != nil {
		return fmt.Errorf("assignment service: delete: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.AssignmentDelete,
		Resource: strconv.FormatUint(uint64(id), 10),
	})
	return nil
}

// checkReferences verifies every referenced row exists and each MPP hangs off one of the MCCs.
func (s *AssignmentService) checkReferences(ctx context.Context, roleID, userID uint, mccs, mpps []string, sections []uint) error {
	db := s.db.WithContext(ctx)
	fields := map[string]string{}

	var count int64
	if err := db.Model(&models.Role{}).Where("id = ?", roleID).Count(&count).Error; err != nil {
		return fmt.Errorf("assignment service: load role: %w", err)
	}
	if count == 0 {
		fields["role"] = "Role does not exist"
	}
	if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("assignment service: load user: %w", err)
	}
	if count == 0 {
		fields["user_id"] = "User does not exist"
	}

	var knownMCCs []string
	if err := db.Model(&models.MCC{}).Where("code IN ?", mccs).Pluck("code", &knownMCCs).Error; err != nil {
		return fmt.Errorf("assignment service: load mccs: %w", err)
	}
	if missing := missingCodes(mccs, knownMCCs); len(missing) > 0 {
		fields["mcc_code"] = "Unknown MCC: " + strings.Join(missing, ", ")
	}

	var foundMPPs []models.MPP
	if err := db.Where("code IN ?", mpps).Find(&foundMPPs).Error; err != nil {
		return fmt.Errorf("assignment service: load mpps: %w", err)
	}
	knownMPPs := make([]string, 0, len(foundMPPs))
	var stray []string
	for _, mpp := range foundMPPs {
		knownMPPs = append(knownMPPs, mpp.Code)
		if !containsString(mccs, mpp.MCCCode) {
			stray = append(stray, mpp.Code)
		}
	}
	if missing := missingCodes(mpps, knownMPPs); len(missing) > 0 {
		fields["mpp_code"] = "Unknown MPP: " + strings.Join(missing, ", ")
	} else if len(stray) > 0 {
		sort.Strings(stray)
		fields["mpp_code"] = "MPP does not belong to the selected MCC: " + strings.Join(stray, ", ")
	}

	if err := db.Model(&models.FormStep{}).Where("id IN ?", sections).Count(&count).Error; err != nil {
		return fmt.Errorf("assignment service: load sections: %w", err)
	}
	if int(count) != len(sections) {
		fields["section_ids"] = "One or more sections do not exist"
	}

	if len(fields) > 0 {
		return apperrors.NewValidation("", fields)
	}
	return nil
}

func missingCodes(want, have []string) []string {
	var missing []string
	for _, code := range want {
		if !containsString(have, code) {
			missing = append(missing, code)
		}
	}
	return missing
}

func assignmentView(record models.AssignedPermission) AssignmentView {
	view := AssignmentView{
		AssignedPermission: record,
		AssignedMCC:        strings.Join(record.MCCCodes, ", "),
		AssignedMPP:        strings.Join(record.MPPCodes, ", "),
	}
	if record.User != nil {
		view.UserName = record.User.Name
	}
	if record.Role != nil {
		view.RoleName = record.Role.Name
	}
	if view.MCCCodes == nil {
		view.MCCCodes = datatypes.JSONSlice[string]{}
	}
	if view.MPPCodes == nil {
		view.MPPCodes = datatypes.JSONSlice[string]{}
	}
	if view.FormStepIDs == nil {
		view.FormStepIDs = datatypes.JSONSlice[uint]{}
	}
	return view
}
