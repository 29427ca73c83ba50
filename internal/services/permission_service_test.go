package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/dairyadmin/internal/invalidation"
	"github.com/charlesng35/dairyadmin/internal/models"
	"github.com/charlesng35/dairyadmin/internal/permissions"
)

func moduleIDByRoute(t *testing.T, db *gorm.DB, route string) uint {
	t.Helper()
	var mod models.Module
	require.NoError(t, db.Take(&mod, "route = ?", route).Error)
	return mod.ID
}

func TestPermissionServiceGrantExpandsDependencies(t *testing.T) {
	db, audit := openSeededDB(t)
	notifier := &recordingNotifier{}
	svc, err := NewPermissionService(db, audit, WithNotifier(notifier))
	require.NoError(t, err)
	ctx := context.Background()

	role := mustRoleByName(t, db, "Data Entry Operator")
	before, err := svc.Get(ctx, role.ID)
	require.NoError(t, err)
	require.Empty(t, before.ModuleIDs)

	mpps := moduleIDByRoute(t, db, permissions.RouteMPPs)
	result, err := svc.Update(ctx, role.ID, []ModuleGrant{{ModuleID: mpps, Status: true}})
	require.NoError(t, err)

	require.ElementsMatch(t, []uint{
		mpps,
		moduleIDByRoute(t, db, permissions.RouteMCCs),
		moduleIDByRoute(t, db, permissions.RouteMasters),
	}, result.ModuleIDs)
	require.Equal(t, []string{invalidation.PermissionUpdate}, notifier.Actions())

	result, err = svc.Update(ctx, role.ID, []ModuleGrant{{ModuleID: mpps, Status: false}})
	require.NoError(t, err)
	require.NotContains(t, result.ModuleIDs, mpps)
	require.Contains(t, result.ModuleIDs, moduleIDByRoute(t, db, permissions.RouteMCCs))

	var rows int64
	require.NoError(t, db.Model(&models.Permission{}).Where("role_id = ? AND module_id = ?", role.ID, mpps).Count(&rows).Error)
	require.EqualValues(t, 1, rows)
}

func TestPermissionServiceRejectsUnknownModuleAndRole(t *testing.T) {
	db, audit := openSeededDB(t)
	svc, err := NewPermissionService(db, audit)
	require.NoError(t, err)
	ctx := context.Background()

	role := mustRoleByName(t, db, "Field User")
	_, err = svc.Update(ctx, role.ID, []ModuleGrant{{ModuleID: 99999, Status: true}})
	require.ErrorIs(t, err, ErrUnknownModuleGrant)

	_, err = svc.Get(ctx, 99999)
	require.ErrorIs(t, err, ErrRoleNotFound)
}
