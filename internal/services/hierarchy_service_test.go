package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/dairyadmin/internal/hierarchy"
	"github.com/charlesng35/dairyadmin/internal/invalidation"
)

func newHierarchyService(t *testing.T) (*HierarchyService, *gorm.DB, *recordingNotifier) {
	t.Helper()
	db, audit := openSeededDB(t)
	notifier := &recordingNotifier{}
	svc, err := NewHierarchyService(db, audit, 4, WithNotifier(notifier))
	require.NoError(t, err)
	return svc, db, notifier
}

func approvalRoleIDs(t *testing.T, db *gorm.DB) []uint {
	t.Helper()
	return []uint{
		mustRoleByName(t, db, "MCC Supervisor").ID,
		mustRoleByName(t, db, "Area Officer").ID,
		mustRoleByName(t, db, "Zonal Manager").ID,
		mustRoleByName(t, db, "General Manager").ID,
	}
}

func TestHierarchyServiceCreateAcceptsUpToMaxLevels(t *testing.T) {
	svc, db, notifier := newHierarchyService(t)
	ctx := context.Background()
	roles := approvalRoleIDs(t, db)

	for n := 1; n <= 4; n++ {
		record, err := svc.Create(ctx, HierarchyInput{Level: n, Levels: hierarchy.Build(roles[:n])})
		require.NoError(t, err)
		require.Len(t, record.Levels, n)
		require.True(t, record.Status)
		for i, lvl := range record.Levels {
			require.Equal(t, i+1, lvl.Level)
			require.Equal(t, roles[i], lvl.RoleID)
			require.NotNil(t, lvl.Role)
		}
	}
	require.Len(t, notifier.Actions(), 4)
	require.Equal(t, invalidation.HierarchyCreate, notifier.Actions()[0])

	_, err := svc.Create(ctx, HierarchyInput{Level: 5, Levels: hierarchy.Build(append(roles, roles[0]))})
	require.ErrorIs(t, err, ErrHierarchyInvalid)
}

func TestHierarchyServiceRejectsDuplicateRoles(t *testing.T) {
	svc, db, notifier := newHierarchyService(t)
	roles := approvalRoleIDs(t, db)

	_, err := svc.Create(context.Background(), HierarchyInput{
		Level:  3,
		Levels: hierarchy.Build([]uint{roles[0], roles[1], roles[0]}),
	})
	require.ErrorIs(t, err, ErrHierarchyDuplicateRole)
	require.Empty(t, notifier.Actions())
}

func TestHierarchyServiceRejectsMissingRoleAndZeroLevel(t *testing.T) {
	svc, _, _ := newHierarchyService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, HierarchyInput{Level: 0})
	require.ErrorIs(t, err, ErrHierarchyInvalid)

	_, err = svc.Create(ctx, HierarchyInput{Level: 1, Levels: hierarchy.Build([]uint{4242})})
	require.ErrorIs(t, err, ErrHierarchyInvalid)
}

func TestHierarchyServiceUpdateReplacesLevels(t *testing.T) {
	svc, db, _ := newHierarchyService(t)
	ctx := context.Background()
	roles := approvalRoleIDs(t, db)

	record, err := svc.Create(ctx, HierarchyInput{Level: 2, Levels: hierarchy.Build(roles[:2])})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, record.ID, HierarchyInput{
		Level:  3,
		Levels: hierarchy.Build([]uint{roles[3], roles[2], roles[1]}),
		Status: boolPtr(false),
	})
	require.NoError(t, err)
	require.Equal(t, 3, updated.Level)
	require.False(t, updated.Status)
	require.Equal(t, []uint{roles[3], roles[2], roles[1]}, hierarchy.RoleIDs(HierarchyRow(*updated).Levels))

	_, err = svc.Update(ctx, record.ID, HierarchyInput{Level: 2, Levels: hierarchy.Build([]uint{roles[1], roles[1]})})
	require.ErrorIs(t, err, ErrHierarchyDuplicateRole)
}

func TestHierarchyServiceListNewestFirstAndTable(t *testing.T) {
	svc, db, _ := newHierarchyService(t)
	ctx := context.Background()
	roles := approvalRoleIDs(t, db)

	first, err := svc.Create(ctx, HierarchyInput{Level: 1, Levels: hierarchy.Build(roles[:1])})
	require.NoError(t, err)
	second, err := svc.Create(ctx, HierarchyInput{Level: 2, Levels: hierarchy.Build(roles[:2])})
	require.NoError(t, err)

	page, err := svc.List(ctx, PageRequest{}, HierarchyFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 2, page.Total)
	require.Equal(t, second.ID, page.Items[0].ID)
	require.Equal(t, first.ID, page.Items[1].ID)

	view, err := svc.Table(ctx)
	require.NoError(t, err)
	require.Len(t, view.Columns, 2)
	require.Equal(t, "Level 2", view.Columns[1].Title)
	require.Equal(t, []string{"MCC Supervisor", "Area Officer"}, view.Rows[0].Cells)
	require.Equal(t, []string{"MCC Supervisor", ""}, view.Rows[1].Cells)
}

func TestHierarchyServiceSetStatusAndDelete(t *testing.T) {
	svc, db, notifier := newHierarchyService(t)
	ctx := context.Background()
	roles := approvalRoleIDs(t, db)

	record, err := svc.Create(ctx, HierarchyInput{Level: 1, Levels: hierarchy.Build(roles[:1])})
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, record.ID, false)
	require.NoError(t, err)
	require.False(t, updated.Status)
	require.Equal(t, "Inactive", hierarchy.Pill(updated.Status).Label)

	require.NoError(t, svc.Delete(ctx, record.ID))
	_, err = svc.Get(ctx, record.ID)
	require.ErrorIs(t, err, ErrHierarchyNotFound)
	require.Equal(t, []string{invalidation.HierarchyCreate, invalidation.HierarchyUpdate, invalidation.HierarchyDelete}, notifier.Actions())
}
