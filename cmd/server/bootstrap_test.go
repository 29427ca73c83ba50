package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charlesng35/dairyadmin/internal/app"
	"github.com/charlesng35/dairyadmin/internal/cache"
	"github.com/charlesng35/dairyadmin/internal/models"
)

func testConfig(t *testing.T) *app.Config {
	t.Helper()
	cfg := &app.Config{
		Database: app.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "dairy.sqlite"), Seed: true},
		Auth:     app.AuthConfig{JWT: app.JWTSettings{Secret: "bootstrap-test-secret", Issuer: "test", TTL: time.Hour}},
	}
	_, err := app.ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	return cfg
}

func readiness(t *testing.T, stack *runtimeStack) map[string]string {
	t.Helper()
	rec := httptest.NewRecorder()
	stack.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	var body struct {
		Checks []struct {
			Component string `json:"component"`
			Status    string `json:"status"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())

	out := map[string]string{}
	for _, check := range body.Checks {
		out[check.Component] = check.Status
	}
	return out
}

func TestBootstrapRuntimeSeedsAndServes(t *testing.T) {
	cfg := testConfig(t)
	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })

	var admins int64
	require.NoError(t, stack.DB.Model(&models.User{}).Where("is_super_admin = ?", true).Count(&admins).Error)
	require.EqualValues(t, 1, admins)

	_, isDB := stack.Cache.(*cache.DatabaseStore)
	require.True(t, isDB)

	checks := readiness(t, stack)
	require.Equal(t, "up", checks["database"])
	require.Equal(t, "up", checks["redis"])
	require.Contains(t, checks, "realtime")
	require.Contains(t, checks, "maintenance")
}

func TestBootstrapRuntimeWithoutSeed(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Seed = false
	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })

	var roles int64
	require.NoError(t, stack.DB.Model(&models.Role{}).Count(&roles).Error)
	require.Zero(t, roles)
}

func TestBootstrapRuntimeUsesRedisWhenAvailable(t *testing.T) {
	srv := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.Cache.Redis = app.RedisCacheConfig{Enabled: true, Address: srv.Addr(), Timeout: time.Second}
	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })

	require.NotNil(t, stack.Redis)
	require.Equal(t, "up", readiness(t, stack)["redis"])
}

func TestBootstrapRuntimeFallsBackWhenRedisDown(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Redis = app.RedisCacheConfig{Enabled: true, Address: "127.0.0.1:1", Timeout: 200 * time.Millisecond}
	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })

	require.Nil(t, stack.Redis)
	_, isDB := stack.Cache.(*cache.DatabaseStore)
	require.True(t, isDB)
	require.Equal(t, "degraded", readiness(t, stack)["redis"])
}

func TestLoadApplicationConfigMissingPath(t *testing.T) {
	_, err := loadApplicationConfig(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestLoadApplicationConfigDefaults(t *testing.T) {
	cfg, err := loadApplicationConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, 4, cfg.Hierarchy.MaxLevels)
}
