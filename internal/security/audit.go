package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/dairyadmin/internal/app"
	iauth "github.com/charlesng35/dairyadmin/internal/auth"
	"github.com/charlesng35/dairyadmin/internal/database"
	"github.com/charlesng35/dairyadmin/internal/models"
	"github.com/charlesng35/dairyadmin/pkg/crypto"
)

// CheckStatus captures the outcome of a security audit check.
type CheckStatus string

const (
	StatusPass CheckStatus = "pass"
	StatusWarn CheckStatus = "warn"
	StatusFail CheckStatus = "fail"
)

// Check IDs.
const (
	CheckSuperAdmin      = "super_admin_present"
	CheckDefaultPassword = "default_admin_password"
	CheckJWTSecret       = "jwt_secret_strength"
	CheckTokenTTL        = "access_token_ttl"
	CheckRateLimit       = "rate_limit"
)

const maxRecommendedTTL = 24 * time.Hour

// Check contains the result of a single audit verification.
type Check struct {
	ID          string      `json:"id"`
	Status      CheckStatus `json:"status"`
	Message     string      `json:"message"`
	Remediation string      `json:"remediation,omitempty"`
	Details     any         `json:"details,omitempty"`
}

// Result aggregates all checks with a simple status summary.
type Result struct {
	CheckedAt time.Time      `json:"checked_at"`
	Checks    []Check        `json:"checks"`
	Summary   map[string]int `json:"summary"`
}

// Find returns the check with id, if it ran.
func (r Result) Find(id string) (Check, bool) {
	for _, check := range r.Checks {
		if check.ID == id {
			return check, true
		}
	}
	return Check{}, false
}

// Auditor evaluates the deployment's security posture: administrator
// accounts, token signing and request throttling.
type Auditor struct {
	db  *gorm.DB
	jwt *iauth.JWTService
	cfg *app.Config
	now func() time.Time
}

// NewAuditor constructs the auditor. All dependencies are optional; missing
// inputs degrade specific checks to warnings.
func NewAuditor(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config) *Auditor {
	return &Auditor{db: db, jwt: jwt, cfg: cfg, now: time.Now}
}

// WithClock overrides the clock used in results.
func (a *Auditor) WithClock(clock func() time.Time) {
	if clock != nil {
		a.now = clock
	}
}

// Run executes all audit checks and returns their outcome.
func (a *Auditor) Run(ctx context.Context) Result {
	if ctx == nil {
		ctx = context.Background()
	}

	checks := []Check{
		a.checkSuperAdmin(ctx),
		a.checkDefaultPassword(ctx),
		a.checkJWTSecret(),
		a.checkTokenTTL(),
		a.checkRateLimit(),
	}

	summary := map[string]int{
		string(StatusPass): 0,
		string(StatusWarn): 0,
		string(StatusFail): 0,
	}
	for _, check := range checks {
		summary[string(check.Status)]++
	}

	return Result{
		CheckedAt: a.now().UTC(),
		Checks:    checks,
		Summary:   summary,
	}
}

func (a *Auditor) checkSuperAdmin(ctx context.Context) Check {
	if a.db == nil {
		return Check{
			ID:          CheckSuperAdmin,
			Status:      StatusWarn,
			Message:     "Database unavailable; unable to confirm a super administrator exists.",
			Remediation: "Ensure database connectivity before running the audit.",
		}
	}

	var count int64
	if err := a.db.WithContext(ctx).
		Model(&models.User{}).
		Where("is_super_admin = ? AND status = ?", true, true).
		Count(&count).Error; err != nil {
		return Check{
			ID:          CheckSuperAdmin,
			Status:      StatusWarn,
			Message:     fmt.Sprintf("Could not verify super administrators: %v", err),
			Remediation: "Retry after resolving database errors.",
		}
	}

	if count == 0 {
		return Check{
			ID:          CheckSuperAdmin,
			Status:      StatusFail,
			Message:     "No active super administrator found.",
			Remediation: "Activate or create a super administrator to keep the console manageable.",
		}
	}

	return Check{
		ID:      CheckSuperAdmin,
		Status:  StatusPass,
		Message: "Super administrator present.",
		Details: map[string]any{"count": count},
	}
}

func (a *Auditor) checkDefaultPassword(ctx context.Context) Check {
	if a.db == nil {
		return Check{
			ID:      CheckDefaultPassword,
			Status:  StatusWarn,
			Message: "Database unavailable; unable to inspect the seeded administrator.",
		}
	}

	var admin models.User
	err := a.db.WithContext(ctx).Where("email = ?", database.SuperAdminEmail).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Check{
			ID:      CheckDefaultPassword,
			Status:  StatusPass,
			Message: "Seeded administrator account is not present.",
		}
	case err != nil:
		return Check{
			ID:      CheckDefaultPassword,
			Status:  StatusWarn,
			Message: fmt.Sprintf("Could not load the seeded administrator: %v", err),
		}
	}

	if crypto.VerifyPassword(admin.Password, database.SuperAdminPassword) {
		return Check{
			ID:          CheckDefaultPassword,
			Status:      StatusWarn,
			Message:     fmt.Sprintf("%s still uses the seeded password.", database.SuperAdminEmail),
			Remediation: "Change the administrator password after the first login.",
		}
	}

	return Check{
		ID:      CheckDefaultPassword,
		Status:  StatusPass,
		Message: "Seeded administrator password has been changed.",
	}
}

func (a *Auditor) checkJWTSecret() Check {
	if a.jwt == nil {
		return Check{
			ID:          CheckJWTSecret,
			Status:      StatusWarn,
			Message:     "JWT service not initialised; unable to assess signing secret strength.",
			Remediation: "Initialise the JWT service with a strong secret.",
		}
	}

	length := a.jwt.SecretLength()
	switch {
	case length < 32:
		return Check{
			ID:          CheckJWTSecret,
			Status:      StatusFail,
			Message:     fmt.Sprintf("JWT signing secret is too short (%d bytes).", length),
			Remediation: "Use a randomly generated secret of at least 32 bytes.",
			Details:     map[string]any{"length": length},
		}
	case length < 48:
		return Check{
			ID:          CheckJWTSecret,
			Status:      StatusWarn,
			Message:     fmt.Sprintf("JWT signing secret is %d bytes. Consider increasing to 48+ bytes.", length),
			Remediation: "Increase the length of DAIRYADMIN_AUTH_JWT_SECRET to at least 48 bytes.",
			Details:     map[string]any{"length": length},
		}
	default:
		return Check{
			ID:      CheckJWTSecret,
			Status:  StatusPass,
			Message: fmt.Sprintf("JWT signing secret length is %d bytes.", length),
			Details: map[string]any{"length": length},
		}
	}
}

func (a *Auditor) checkTokenTTL() Check {
	if a.jwt == nil {
		return Check{
			ID:      CheckTokenTTL,
			Status:  StatusWarn,
			Message: "JWT service not initialised; unable to evaluate token lifetime.",
		}
	}

	ttl := a.jwt.TTL()
	if ttl > maxRecommendedTTL {
		return Check{
			ID:          CheckTokenTTL,
			Status:      StatusWarn,
			Message:     fmt.Sprintf("Access token TTL (%s) exceeds the recommended maximum (%s).", ttl, maxRecommendedTTL),
			Remediation: "Reduce auth.jwt.access_token_ttl to 24h or lower.",
			Details:     map[string]any{"ttl": ttl.String()},
		}
	}

	return Check{
		ID:      CheckTokenTTL,
		Status:  StatusPass,
		Message: fmt.Sprintf("Access token TTL is %s.", ttl),
		Details: map[string]any{"ttl": ttl.String()},
	}
}

func (a *Auditor) checkRateLimit() Check {
	if a.cfg == nil {
		return Check{
			ID:      CheckRateLimit,
			Status:  StatusWarn,
			Message: "Configuration not loaded; unable to evaluate request throttling.",
		}
	}

	limit := a.cfg.Server.RateLimit
	if !limit.Enabled {
		return Check{
			ID:          CheckRateLimit,
			Status:      StatusWarn,
			Message:     "Request rate limiting is disabled.",
			Remediation: "Enable server.rate_limit to slow down credential guessing on /api/auth/login.",
		}
	}

	return Check{
		ID:      CheckRateLimit,
		Status:  StatusPass,
		Message: fmt.Sprintf("Rate limiting allows %d requests per %s.", limit.Requests, limit.Window),
	}
}
