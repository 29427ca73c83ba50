package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/dairyadmin/internal/database"
	"github.com/charlesng35/dairyadmin/internal/invalidation"
	"github.com/charlesng35/dairyadmin/internal/models"
	"github.com/charlesng35/dairyadmin/pkg/crypto"
	apperrors "github.com/charlesng35/dairyadmin/pkg/errors"
)

func TestUserServiceCreateHashesPassword(t *testing.T) {
	db, audit := openSeededDB(t)
	notifier := &recordingNotifier{}
	svc, err := NewUserService(db, audit, WithNotifier(notifier))
	require.NoError(t, err)

	role := mustRoleByName(t, db, "Field User")
	user, err := svc.Create(context.Background(), UserInput{
		Name:     "Ravi Kumar",
		Email:    "  Ravi@Example.com ",
		Password: "secret99",
		RoleID:   &role.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "ravi@example.com", user.Email)
	require.True(t, user.Status)
	require.NotNil(t, user.Role)
	require.Equal(t, "Field Users", user.Role.Category.Name)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	require.NotEqual(t, "secret99", stored.Password)
	require.True(t, crypto.VerifyPassword(stored.Password, "secret99"))
	require.Equal(t, []string{invalidation.UserCreate}, notifier.Actions())

	_, err = svc.Create(context.Background(), UserInput{
		Name: "Dup", Email: "ravi@example.com", Password: "secret99", RoleID: &role.ID,
	})
	require.ErrorIs(t, err, ErrUserEmailTaken)
}

func TestUserServiceCreateValidation(t *testing.T) {
	db, audit := openSeededDB(t)
	svc, err := NewUserService(db, audit)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), UserInput{Email: "nope", Password: "123"})
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	require.Contains(t, appErr.Fields, "name")
	require.Contains(t, appErr.Fields, "email")
	require.Contains(t, appErr.Fields, "password")
	require.Contains(t, appErr.Fields, "role_id")
}

func TestUserServiceListFiltersAndSearch(t *testing.T) {
	db, audit := openSeededDB(t)
	svc, err := NewUserService(db, audit)
	require.NoError(t, err)
	ctx := context.Background()

	field := mustRoleByName(t, db, "Field User")
	for _, name := range []string{"Asha", "Bala", "Chitra"} {
		_, err := svc.Create(ctx, UserInput{Name: name, Email: name + "@coop.in", Password: "secret99", RoleID: &field.ID})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, PageRequest{}, UserFilter{RoleID: &field.ID})
	require.NoError(t, err)
	require.EqualValues(t, 3, page.Total)
	require.Equal(t, "Chitra", page.Items[0].Name)

	page, err = svc.List(ctx, PageRequest{Search: "BALA"}, UserFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	require.Equal(t, "bala@coop.in", page.Items[0].Email)
}

func TestUserServiceUpdateAndDelete(t *testing.T) {
	db, audit := openSeededDB(t)
	svc, err := NewUserService(db, audit)
	require.NoError(t, err)
	ctx := context.Background()

	field := mustRoleByName(t, db, "Field User")
	user, err := svc.Create(ctx, UserInput{Name: "Deepa", Email: "deepa@coop.in", Password: "secret99", RoleID: &field.ID})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, user.ID, UserInput{Name: "Deepa R", Password: "newpass1", Status: boolPtr(false)})
	require.NoError(t, err)
	require.Equal(t, "Deepa R", updated.Name)
	require.False(t, updated.Status)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	require.True(t, crypto.VerifyPassword(stored.Password, "newpass1"))

	require.NoError(t, db.Create(&models.AssignedPermission{UserID: user.ID, RoleID: field.ID, Status: true}).Error)
	require.NoError(t, svc.Delete(ctx, user.ID))
	require.Zero(t, countRows(t, db, &models.AssignedPermission{}))

	_, err = svc.Get(ctx, user.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserServiceProtectsSuperAdmin(t *testing.T) {
	db, audit := openSeededDB(t)
	svc, err := NewUserService(db, audit)
	require.NoError(t, err)
	ctx := context.Background()

	var admin models.User
	require.NoError(t, db.Take(&admin, "email = ?", database.SuperAdminEmail).Error)

	require.ErrorIs(t, svc.Delete(ctx, admin.ID), ErrSuperAdminImmutable)
	_, err = svc.Update(ctx, admin.ID, UserInput{Status: boolPtr(false)})
	require.ErrorIs(t, err, ErrSuperAdminImmutable)
}
