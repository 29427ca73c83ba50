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
	"github.com/charlesng35/dairyadmin/pkg/crypto"
	apperrors "github.com/charlesng35/dairyadmin/pkg/errors"
)

const minPasswordLength = 6

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrUserEmailTaken signals a duplicate email address.
	ErrUserEmailTaken = apperrors.New("USER_EXISTS", "Email already registered", http.StatusConflict)
	// ErrSuperAdminImmutable keeps the seeded super admin from being deactivated or deleted.
	ErrSuperAdminImmutable = apperrors.New("USER_SUPER_ADMIN_IMMUTABLE", "Super admin cannot perform this operation", http.StatusBadRequest)
)

// UserInput describes the fields accepted when creating or updating a user.
// Empty strings and nil pointers leave the stored value untouched on update.
type UserInput struct {
	Name     string
	Email    string
	Mobile   *string
	Password string
	RoleID   *uint
	Status   *bool
}

// UserFilter narrows user listings.
type UserFilter struct {
	RoleID *uint
	Status *bool
}

var userSortable = map[string]string{
	"id":            "users.id",
	"name":          "users.name",
	"email":         "users.email",
	"created_at":    "users.created_at",
	"last_login_at": "users.last_login_at",
}

// UserService manages console and field users.
type UserService struct {
	db           *gorm.DB
	auditService *AuditService
	notifier     Notifier
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB, auditService *AuditService, opts ...Option) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	cfg := applyOptions(opts)
	return &UserService{
		db:           db,
		auditService: auditService,
		notifier:     cfg.notifier,
	}, nil
}

// List returns a page of users with their role and category.
func (s *UserService) List(ctx context.Context, req PageRequest, filter UserFilter) (PageResult[models.User], error) {
	ctx = ensureContext(ctx)
	req = normalizePageRequest(req)

	query := s.db.WithContext(ctx).Model(&models.User{})
	if req.Search != "" {
		pattern := likePattern(req.Search)
		query = query.Where("LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ? OR users.mobile LIKE ?", pattern, pattern, pattern)
	}
	if filter.RoleID != nil {
		query = query.Where("users.role_id = ?", *filter.RoleID)
	}
	if filter.Status != nil {
		query = query.Where("users.status = ?", *filter.Status)
	}

	page, err := paginate[models.User](query, req, orderClause(req, userSortable, "users.id DESC"), "Role", "Role.Category")
	if err != nil {
		return PageResult[models.User]{}, fmt.Errorf("user service: list: %w", err)
	}
	return page, nil
}

// Get loads a user by id including role and category.
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).Preload("Role").Preload("Role.Category").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: get: %w", err)
	}
	return &user, nil
}

// Create provisions a new user with a hashed password.
func (s *UserService) Create(ctx context.Context, input UserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	email := normaliseEmail(input.Email)
	fields := map[string]string{}
	if name == "" {
		fields["name"] = "Name is required"
	}
	if email == "" {
		fields["email"] = "Email is required"
	} else if !strings.Contains(email, "@") {
		fields["email"] = "Email is invalid"
	}
	if len(input.Password) < minPasswordLength {
		fields["password"] = fmt.Sprintf("Password must be at least %d characters", minPasswordLength)
	}
	if input.RoleID == nil || *input.RoleID == 0 {
		fields["role_id"] = "Role is required"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation("", fields)
	}
	if err := s.ensureRole(ctx, *input.RoleID); err != nil {
		return nil, err
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	roleID := *input.RoleID
	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		RoleID:   &roleID,
		Status:   true,
	}
	if input.Mobile != nil {
		user.Mobile = strings.TrimSpace(*input.Mobile)
	}
	if input.Status != nil {
		user.Status = *input.Status
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrUserEmailTaken
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.UserCreate,
		Resource: strconv.FormatUint(uint64(user.ID), 10),
		Metadata: map[string]any{"email": user.Email, "role_id": roleID},
	})
	return s.Get(ctx, user.ID)
}

// Update modifies mutable attributes. A non-empty password is re-hashed.
func (s *UserService) Update(ctx context.Context, id uint, input UserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" && name != user.Name {
		updates["name"] = name
	}
	if email := normaliseEmail(input.Email); email != "" && email != user.Email {
		if !strings.Contains(email, "@") {
			return nil, apperrors.NewValidation("", map[string]string{"email": "Email is invalid"})
		}
		updates["email"] = email
	}
	if input.Mobile != nil {
		updates["mobile"] = strings.TrimSpace(*input.Mobile)
	}
	if input.Password != "" {
		if len(input.Password) < minPasswordLength {
			return nil, apperrors.NewValidation("", map[string]string{
				"password": fmt.Sprintf("Password must be at least %d characters", minPasswordLength),
			})
		}
		hashed, err := crypto.HashPassword(input.Password)
		if err != nil {
			return nil, fmt.Errorf("user service: hash password: %w", err)
		}
		updates["password"] = hashed
	}
	if input.RoleID != nil && *input.RoleID != 0 {
		if err := s.ensureRole(ctx, *input.RoleID); err != nil {
			return nil, err
		}
		updates["role_id"] = *input.RoleID
	}
	if input.Status != nil && *input.Status != user.Status {
		if user.IsSuperAdmin && !*input.Status {
			return nil, ErrSuperAdminImmutable
		}
		updates["status"] = *input.Status
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrUserEmailTaken
		}
		return nil, fmt.Errorf("user service: update user: %w", err)
	}

	metadata := make(map[string]any, len(updates))
	for key, value := range updates {
		if key == "password" {
			metadata[key] = "changed"
			continue
		}
		metadata[key] = value
	}
	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.UserUpdate,
		Resource: strconv.FormatUint(uint64(id), 10),
		Metadata: metadata,
	})
	return s.Get(ctx, id)
}

// Delete removes a user together with their section allocation.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	ctx = ensureContext(ctx)

	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if user.IsSuperAdmin {
		return ErrSuperAdminImmutable
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.AssignedPermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("user service: delete user: %w", err)
	}

	recordMutation(s.auditService, s.notifier, ctx, AuditEntry{
		Action:   invalidation.UserDelete,
		Resource: strconv.FormatUint(uint64(id), 10),
		Metadata: map[string]any{"email": user.Email},
	})
	return nil
}

func (s *UserService) ensureRole(ctx context.Context, roleID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Role{}).Where("id = ?", roleID).Count(&count).Error; err != nil {
		return fmt.Errorf("user service: load role: %w", err)
	}
	if count == 0 {
		return apperrors.NewValidation("", map[string]string{"role_id": "Role does not exist"})
	}
	return nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
