package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/dairyadmin/internal/app"
	iauth "github.com/charlesng35/dairyadmin/internal/auth"
	"github.com/charlesng35/dairyadmin/internal/database"
	testutil "github.com/charlesng35/dairyadmin/internal/database/testutil"
	"github.com/charlesng35/dairyadmin/internal/models"
	"github.com/charlesng35/dairyadmin/pkg/crypto"
)

func newJWT(t *testing.T, secret string, ttl time.Duration) *iauth.JWTService {
	t.Helper()
	svc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: secret, Issuer: "test-suite", AccessTokenTTL: ttl})
	require.NoError(t, err)
	return svc
}

func TestAuditorRunOnSeededDatabase(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	cfg := &app.Config{Server: app.ServerConfig{RateLimit: app.RateLimitConfig{Enabled: true, Requests: 300, Window: time.Minute}}}
	auditor := NewAuditor(db, newJWT(t, "0123456789abcdef0123456789abcdef0123456789abcdef", time.Hour), cfg)
	fixed := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	auditor.WithClock(func() time.Time { return fixed })

	result := auditor.Run(context.Background())
	require.Equal(t, fixed, result.CheckedAt)
	require.Len(t, result.Checks, 5)
	require.Equal(t, 4, result.Summary[string(StatusPass)])

	check, ok := result.Find(CheckDefaultPassword)
	require.True(t, ok)
	require.Equal(t, StatusWarn, check.Status)
}

func TestAuditorPassesOnceDefaultPasswordChanged(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	hash, err := crypto.HashPassword("a-better-password")
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", database.SuperAdminEmail).Update("password", hash).Error)

	result := NewAuditor(db, nil, nil).Run(context.Background())
	check, ok := result.Find(CheckDefaultPassword)
	require.True(t, ok)
	require.Equal(t, StatusPass, check.Status)
}

func TestAuditorDetectsMissingSuperAdmin(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	result := NewAuditor(db, newJWT(t, "short-secret", 48*time.Hour), &app.Config{}).Run(context.Background())

	expect := map[string]CheckStatus{
		CheckSuperAdmin:      StatusFail,
		CheckDefaultPassword: StatusPass,
		CheckJWTSecret:       StatusFail,
		CheckTokenTTL:        StatusWarn,
		CheckRateLimit:       StatusWarn,
	}
	for id, status := range expect {
		check, ok := result.Find(id)
		require.True(t, ok, id)
		require.Equal(t, status, check.Status, id)
	}
}

func TestAuditorWithoutDependencies(t *testing.T) {
	result := NewAuditor(nil, nil, nil).Run(context.Background())
	require.Equal(t, 5, result.Summary[string(StatusWarn)])
}
