package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/dairyadmin/internal/auth"
	"github.com/charlesng35/dairyadmin/internal/models"
	"github.com/charlesng35/dairyadmin/pkg/crypto"
	apperrors "github.com/charlesng35/dairyadmin/pkg/errors"
	"github.com/charlesng35/dairyadmin/pkg/logger"
	"github.com/charlesng35/dairyadmin/pkg/metrics"
)

// DashboardRedirect is where the console lands after a successful login.
const DashboardRedirect = "/dashboard"

// DefaultLoginRole is used when the login form omits the role selector.
const DefaultLoginRole = "admin"

var (
	// ErrInvalidCredentials is returned for unknown emails and wrong passwords alike.
	ErrInvalidCredentials = apperrors.New("INVALID_CREDENTIALS", "Invalid credentials", http.StatusUnauthorized)
	// ErrUserInactive rejects logins of deactivated users.
	ErrUserInactive = apperrors.New("USER_INACTIVE", "User account is inactive", http.StatusForbidden)
)

// LoginInput is the login form payload.
type LoginInput struct {
	Email    string
	Password string
	Role     string
}

// LoginResult carries the issued token and profile.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
	Role      string       `json:"role"`
	Redirect  string       `json:"redirect"`
}

// Profile is the signed-in user with the module routes they may open.
type Profile struct {
	User    *models.User `json:"user"`
	Modules []string     `json:"modules"`
}

// AuthService authenticates users against stored password hashes.
type AuthService struct {
	db           *gorm.DB
	jwt          *auth.JWTService
	checker      PermissionChecker
	auditService *AuditService
	now          func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(db *gorm.DB, jwt *auth.JWTService, checker PermissionChecker, auditService *AuditService) (*AuthService, error) {
	if db == nil {
		return nil, errors.New("auth service: db is required")
	}
	if jwt == nil {
		return nil, errors.New("auth service: jwt service is required")
	}
	return &AuthService{
		db:           db,
		jwt:          jwt,
		checker:      checker,
		auditService: auditService,
		now:          time.Now,
	}, nil
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	ctx = ensureContext(ctx)

	email := normaliseEmail(input.Email)
	loginRole := strings.ToLower(strings.TrimSpace(input.Role))
	if loginRole == "" {
		loginRole = DefaultLoginRole
	}

	fields := map[string]string{}
	if email == "" {
		fields["email"] = "Email is required"
	}
	if input.Password == "" {
		fields["password"] = "Password is required"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation("", fields)
	}

	var user models.User
	err := s.db.WithContext(ctx).Preload("Role").Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.loginFailed(ctx, email, "unknown_user")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("auth service: load user: %w", err)
	}

	if !crypto.VerifyPassword(user.Password, input.Password) {
		s.loginFailed(ctx, email, "bad_password")
		return nil, ErrInvalidCredentials
	}
	if !user.Status {
		s.loginFailed(ctx, email, "inactive")
		return nil, ErrUserInactive
	}

	var roleID uint
	if user.RoleID != nil {
		roleID = *user.RoleID
	}
	issued, err := s.jwt.GenerateAccessToken(auth.AccessTokenInput{
		UserID:     user.ID,
		RoleID:     roleID,
		LoginRole:  loginRole,
		SuperAdmin: user.IsSuperAdmin,
	})
	if err != nil {
		return nil, fmt.Errorf("auth service: issue token: %w", err)
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("last_login_at", now).Error; err != nil {
		logger.WithModule("auth").Warn("failed to record last login", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	user.LastLoginAt = &now

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	uid := user.ID
	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &uid,
		Action:   "auth.login",
		Resource: strconv.FormatUint(uint64(user.ID), 10),
		Result:   "success",
		Metadata: map[string]any{"role": loginRole},
	})

	return &LoginResult{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
		User:      &user,
		Role:      loginRole,
		Redirect:  DashboardRedirect,
	}, nil
}

// Profile loads the user behind a token together with their module routes.
func (s *AuthService) Profile(ctx context.Context, userID uint) (*Profile, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).Preload("Role").Preload("Role.Category").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("auth service: load profile: %w", err)
	}

	modules := []string{}
	if s.checker != nil {
		routes, err := s.checker.GetUserModules(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("auth service: load modules: %w", err)
		}
		modules = routes
	}
	return &Profile{User: &user, Modules: modules}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, email, reason string) {
	metrics.AuthAttempts.WithLabelValues("failure").Inc()
	logger.WithModule("auth").Info("login rejected", zap.String("email", email), zap.String("reason", reason))
	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "auth.login",
		Resource: email,
		Result:   "failure",
		Metadata: map[string]any{"reason": reason},
	})
}
