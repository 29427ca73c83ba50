package permissions

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/charlesng35/dairyadmin/internal/models"
)

func TestRegisterPreventsDuplicates(t *testing.T) {
	route := "test-unique-module"
	require.NoError(t, Register(&Module{Route: route, Name: "Test"}))
	t.Cleanup(func() {
		removeModule(route)
	})

	err := Register(&Module{Route: route, Name: "Again"})
	require.ErrorIs(t, err, errDuplicateRoute)
}

func TestRegisterRejectsInvalidDefinitions(t *testing.T) {
	require.ErrorIs(t, Register(nil), errNilModule)
	require.ErrorIs(t, Register(&Module{Route: "  "}), errEmptyRoute)
	require.ErrorIs(t, Register(&Module{Route: "loop", Parent: "loop"}), errSelfParent)
	require.ErrorIs(t, Register(&Module{Route: "dep", DependsOn: []string{"dep"}}), errSelfDependency)
}

func TestCoreModulesAreConsistent(t *testing.T) {
	require.NoError(t, ValidateDependencies())

	ordered := Ordered()
	require.NotEmpty(t, ordered)
	seenChild := false
	for _, mod := range ordered {
		if mod.Parent != "" {
			seenChild = true
			continue
		}
		require.False(t, seenChild, "root module %s listed after a child", mod.Route)
	}
}

func TestResolveDependenciesIncludesParentAndDependencies(t *testing.T) {
	deps, err := ResolveDependencies(RoutePermissions)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{RouteAdministration, RouteRoles, RouteCategories, RouteModules}, deps)

	_, err = ResolveDependencies("does-not-exist")
	require.ErrorIs(t, err, ErrUnknownModule)
}

func TestResolveDependenciesDetectsCycles(t *testing.T) {
	const (
		first  = "cycle-first"
		second = "cycle-second"
	)
	require.NoError(t, Register(&Module{Route: first, DependsOn: []string{second}}))
	require.NoError(t, Register(&Module{Route: second, DependsOn: []string{first}}))
	t.Cleanup(func() {
		removeModule(first)
		removeModule(second)
	})

	_, err := ResolveDependencies(first)
	require.ErrorIs(t, err, ErrCircularDependency)
}

func TestSyncIsIdempotentAndBuildsTree(t *testing.T) {
	db := setupPermissionTestDB(t)

	require.NoError(t, Sync(context.Background(), db))
	require.NoError(t, Sync(context.Background(), db))

	var count int64
	require.NoError(t, db.Model(&models.Module{}).Count(&count).Error)
	require.Equal(t, int64(len(GetAll())), count)

	var parent, child models.Module
	require.NoError(t, db.Take(&parent, "route = ?", RouteAdministration).Error)
	require.NoError(t, db.Take(&child, "route = ?", RouteRoles).Error)
	require.NotNil(t, child.ParentID)
	require.Equal(t, parent.ID, *child.ParentID)
	require.True(t, parent.IsRoot())
}

func TestCheckerSuperAdminBypassesAllChecks(t *testing.T) {
	db := setupPermissionTestDB(t)

	admin := &models.User{Name: "Admin", Email: "admin@erp.com", Password: "hashed", IsSuperAdmin: true, Status: true}
	require.NoError(t, db.Create(admin).Error)

	checker, err := NewChecker(db)
	require.NoError(t, err)

	ok, err := checker.Check(context.Background(), admin.ID, "anything")
	require.NoError(t, err)
	require.True(t, ok)

	routes, err := checker.GetUserModules(context.Background(), admin.ID)
	require.NoError(t, err)
	require.Contains(t, routes, RouteRoles)
}

func TestCheckerRequiresParentAndDependencies(t *testing.T) {
	db := setupPermissionTestDB(t)
	ctx := context.Background()

	category := &models.Category{Name: "Web Users", Status: true}
	require.NoError(t, db.Create(category).Error)
	role := &models.Role{Name: "Clerk", CategoryID: category.ID, Status: true}
	require.NoError(t, db.Create(role).Error)
	user := &models.User{Name: "Clerk", Email: "clerk@erp.com", Password: "hashed", RoleID: &role.ID, Status: true}
	require.NoError(t, db.Create(user).Error)

	checker, err := NewChecker(db)
	require.NoError(t, err)

	grant(t, db, role.ID, RouteRoles)

	ok, err := checker.Check(ctx, user.ID, RouteRoles)
	require.NoError(t, err)
	require.False(t, ok, "parent and dependency not granted yet")

	grant(t, db, role.ID, RouteAdministration)
	grant(t, db, role.ID, RouteCategories)

	ok, err = checker.Check(ctx, user.ID, RouteRoles)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = checker.Check(ctx, user.ID, RouteBanks)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = checker.Check(ctx, user.ID, "not-a-module")
	require.ErrorIs(t, err, ErrUnknownModule)

	routes, err := checker.GetUserModules(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{RouteAdministration, RouteCategories, RouteRoles}, routes)
}

func TestCheckerIgnoresRevokedGrants(t *testing.T) {
	db := setupPermissionTestDB(t)
	ctx := context.Background()

	category := &models.Category{Name: "Web Users", Status: true}
	require.NoError(t, db.Create(category).Error)
	role := &models.Role{Name: "Viewer", CategoryID: category.ID, Status: true}
	require.NoError(t, db.Create(role).Error)
	user := &models.User{Name: "Viewer", Email: "viewer@erp.com", Password: "hashed", RoleID: &role.ID, Status: true}
	require.NoError(t, db.Create(user).Error)

	grant(t, db, role.ID, RouteDashboard)
	require.NoError(t, db.Model(&models.Permission{}).Where("role_id = ?", role.ID).Update("status", false).Error)

	checker, err := NewChecker(db)
	require.NoError(t, err)

	ok, err := checker.Check(ctx, user.ID, RouteDashboard)
	require.NoError(t, err)
	require.False(t, ok)
}

func grant(t *testing.T, db *gorm.DB, roleID uint, route string) {
	t.Helper()
	var mod models.Module
	require.NoError(t, db.Take(&mod, "route = ?", route).Error)
	require.NoError(t, db.Create(&models.Permission{RoleID: roleID, ModuleID: mod.ID, Status: true}).Error)
}

func setupPermissionTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Category{}, &models.Role{}, &models.Module{}, &models.Permission{}, &models.User{}))
	require.NoError(t, Sync(context.Background(), db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}
