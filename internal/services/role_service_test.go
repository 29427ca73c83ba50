package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/dairyadmin/internal/invalidation"
	"github.com/charlesng35/dairyadmin/internal/models"
)

func TestRoleServiceCreateResolvesCategoryLabel(t *testing.T) {
	db, audit := openSeededDB(t)
	notifier := &recordingNotifier{}
	svc, err := NewRoleService(db, audit, WithNotifier(notifier))
	require.NoError(t, err)
	ctx := context.Background()

	before := countRows(t, db, &models.Role{})

	role, err := svc.Create(ctx, RoleInput{Name: "Finance Manager", CategoryID: 3, Status: boolPtr(true)})
	require.NoError(t, err)
	require.Equal(t, before+1, countRows(t, db, &models.Role{}))
	require.NotNil(t, role.Category)
	require.Equal(t, "Field Users", role.Category.Name)
	require.True(t, role.Status)
	require.Equal(t, []string{invalidation.RoleCreate}, notifier.Actions())

	page, err := svc.List(ctx, PageRequest{Search: "finance"}, RoleFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "Field Users", page.Items[0].Category.Name)

	_, err = svc.Create(ctx, RoleInput{Name: "Finance Manager", CategoryID: 3})
	require.ErrorIs(t, err, ErrRoleNameTaken)
}

func TestRoleServiceCreateValidates(t *testing.T) {
	db, audit := openSeededDB(t)
	svc, err := NewRoleService(db, audit)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), RoleInput{})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), RoleInput{Name: "Ghost", CategoryID: 99})
	require.Error(t, err)
}

func TestRoleServiceCreateInactive(t *testing.T) {
	db, audit := openSeededDB(t)
	svc, err := NewRoleService(db, audit)
	require.NoError(t, err)

	role, err := svc.Create(context.Background(), RoleInput{Name: "Auditor", CategoryID: 2, Status: boolPtr(false)})
	require.NoError(t, err)
	require.False(t, role.Status)

	page, err := svc.List(context.Background(), PageRequest{}, RoleFilter{Status: boolPtr(false)})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
}

func TestRoleServiceUpdateAndDelete(t *testing.T) {
	db, audit := openSeededDB(t)
	svc, err := NewRoleService(db, audit)
	require.NoError(t, err)
	ctx := context.Background()

	role, err := svc.Create(ctx, RoleInput{Name: "Temp", CategoryID: 2})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, role.ID, RoleInput{Name: "Temporary", CategoryID: 1, Status: boolPtr(false)})
	require.NoError(t, err)
	require.Equal(t, "Temporary", updated.Name)
	require.Equal(t, uint(1), updated.CategoryID)
	require.False(t, updated.Status)

	require.NoError(t, svc.Delete(ctx, role.ID))
	_, err = svc.Get(ctx, role.ID)
	require.ErrorIs(t, err, ErrRoleNotFound)

	admin := mustRoleByName(t, db, "Administrator")
	require.ErrorIs(t, svc.Delete(ctx, admin.ID), ErrRoleInUse)
}

func TestRoleServiceListPagination(t *testing.T) {
	db, audit := openSeededDB(t)
	svc, err := NewRoleService(db, audit)
	require.NoError(t, err)
	ctx := context.Background()

	seeded := countRows(t, db, &models.Role{})
	for i := int64(0); i < 23-seeded; i++ {
		_, err := svc.Create(ctx, RoleInput{Name: "Role " + string(rune('A'+i)), CategoryID: 2})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, PageRequest{Page: 1, PageSize: 10}, RoleFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(23), page.Total)
	require.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 10)

	last, err := svc.List(ctx, PageRequest{Page: 3, PageSize: 10}, RoleFilter{})
	require.NoError(t, err)
	require.Len(t, last.Items, 3)

	beyond, err := svc.List(ctx, PageRequest{Page: 4, PageSize: 10}, RoleFilter{})
	require.NoError(t, err)
	require.Empty(t, beyond.Items)
	require.Equal(t, 3, beyond.TotalPages)
}

func TestRoleServiceApprovalRoles(t *testing.T) {
	db, audit := openSeededDB(t)
	svc, err := NewRoleService(db, audit)
	require.NoError(t, err)

	options, err := svc.ApprovalRoles(context.Background())
	require.NoError(t, err)
	require.Len(t, options, 4)
	for _, option := range options {
		require.Equal(t, models.ApprovalCategoryName, option.CategoryName)
	}
}
