package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategoryServiceLifecycle(t *testing.T) {
	db, audit := openSeededDB(t)
	svc, err := NewCategoryService(db, audit)
	require.NoError(t, err)
	ctx := context.Background()

	page, err := svc.List(ctx, PageRequest{}, CategoryFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(3), page.Total)
	require.Equal(t, "Approval Users", page.Items[0].Name)

	created, err := svc.Create(ctx, CategoryInput{Name: "Transport Users"})
	require.NoError(t, err)
	require.True(t, created.Status)

	_, err = svc.Create(ctx, CategoryInput{Name: "Transport Users"})
	require.ErrorIs(t, err, ErrCategoryNameTaken)

	updated, err := svc.Update(ctx, created.ID, CategoryInput{Status: boolPtr(false)})
	require.NoError(t, err)
	require.False(t, updated.Status)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryServiceDeleteRejectsCategoryWithRoles(t *testing.T) {
	db, audit := openSeededDB(t)
	svc, err := NewCategoryService(db, audit)
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(context.Background(), 1), ErrCategoryInUse)
}

func TestCategoryServiceCreateRequiresName(t *testing.T) {
	db, audit := openSeededDB(t)
	svc, err := NewCategoryService(db, audit)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CategoryInput{Name: "  "})
	require.Error(t, err)
}
