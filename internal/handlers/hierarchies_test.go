package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/dairyadmin/internal/handlers/testutil"
	"github.com/charlesng35/dairyadmin/internal/hierarchy"
)

type hierarchyPayload struct {
	ID     uint `json:"id"`
	Level  int  `json:"level"`
	Status bool `json:"status"`
	Levels []struct {
		Level  int  `json:"level"`
		RoleID uint `json:"role_id"`
	} `json:"levels"`
}

func approvalRoleIDs(t *testing.T, env *testutil.Env) []uint {
	t.Helper()
	return []uint{
		env.RoleID("MCC Supervisor"),
		env.RoleID("Area Officer"),
		env.RoleID("Zonal Manager"),
		env.RoleID("General Manager"),
	}
}

func hierarchyBody(level any, roleIDs ...uint) map[string]any {
	levels := make([]map[string]any, len(roleIDs))
	for i, id := range roleIDs {
		levels[i] = map[string]any{"level": i + 1, "role_id": id}
	}
	return map[string]any{"level": level, "levels": levels}
}

func TestHierarchyHandler_CreateAcceptsOneToFourDistinctRoles(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.LoginAdmin()
	roles := approvalRoleIDs(t, env)

	for n := 1; n <= 4; n++ {
		w := env.Request(http.MethodPost, "/api/hierarchy", hierarchyBody(n, roles[:n]...), token)
		require.Equal(t, http.StatusCreated, w.Code, "levels=%d: %s", n, w.Body.String())

		var created hierarchyPayload
		testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &created)
		require.Equal(t, n, created.Level)
		require.Len(t, created.Levels, n)
		require.True(t, created.Status)
	}
}

func TestHierarchyHandler_RejectsDuplicateRoles(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.LoginAdmin()
	roles := approvalRoleIDs(t, env)

	w := env.Request(http.MethodPost, "/api/hierarchy", hierarchyBody(3, roles[0], roles[1], roles[0]), token)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	resp := testutil.DecodeResponse(t, w)
	require.Equal(t, "HIERARCHY_DUPLICATE_ROLE", resp.Error.Code)
	require.Contains(t, resp.Error.Fields, hierarchy.RoleField(3))
}

func TestHierarchyHandler_LevelCountBoundaries(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.LoginAdmin()
	roles := approvalRoleIDs(t, env)

	cases := []struct {
		name  string
		level any
		roles []uint
	}{
		{name: "zero", level: 0, roles: nil},
		{name: "non-numeric", level: "abc", roles: roles[:1]},
		{name: "above maximum", level: 5, roles: append(append([]uint{}, roles...), env.RoleID("Field User"))},
		{name: "count mismatch", level: 3, roles: roles[:2]},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.Request(http.MethodPost, "/api/hierarchy", hierarchyBody(tc.level, tc.roles...), token)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
			resp := testutil.DecodeResponse(t, w)
			require.Equal(t, "HIERARCHY_INVALID", resp.Error.Code)
			require.NotEmpty(t, resp.Error.Fields)
		})
	}
}

func TestHierarchyHandler_RoundTripRendersLevelColumns(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.LoginAdmin()

	first, second := env.RoleID("Area Officer"), env.RoleID("General Manager")
	w := env.Request(http.MethodPost, "/api/hierarchy", hierarchyBody(2, first, second), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.Request(http.MethodGet, "/api/hierarchy/table", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var table hierarchy.TableView
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &table)
	require.Len(t, table.Columns, 2)
	require.Equal(t, "Level 1", table.Columns[0].Title)
	require.Equal(t, "Level 2", table.Columns[1].Title)
	require.Len(t, table.Rows, 1)
	require.Equal(t, []string{"Area Officer", "General Manager"}, table.Rows[0].Cells)
	require.Equal(t, "Active", table.Rows[0].Status.Label)
}

func TestHierarchyHandler_UpdateUsesSameValidation(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.LoginAdmin()
	roles := approvalRoleIDs(t, env)

	w := env.Request(http.MethodPost, "/api/hierarchy", hierarchyBody(2, roles[0], roles[1]), token)
	require.Equal(t, http.StatusCreated, w.Code)
	var created hierarchyPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &created)
	path := fmt.Sprintf("/api/hierarchy/%d", created.ID)

	w = env.Request(http.MethodPut, path, hierarchyBody(2, roles[2], roles[2]), token)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, "HIERARCHY_DUPLICATE_ROLE", testutil.DecodeResponse(t, w).Error.Code)

	w = env.Request(http.MethodPut, path, hierarchyBody(3, roles[3], roles[2], roles[1]), token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.Request(http.MethodGet, path, nil, token)
	var updated hierarchyPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &updated)
	require.Equal(t, 3, updated.Level)
	require.Len(t, updated.Levels, 3)
	require.Equal(t, roles[3], updated.Levels[0].RoleID)
}

func TestHierarchyHandler_StatusAndDelete(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.LoginAdmin()
	roles := approvalRoleIDs(t, env)

	w := env.Request(http.MethodPost, "/api/hierarchy", hierarchyBody(1, roles[0]), token)
	var created hierarchyPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &created)
	path := fmt.Sprintf("/api/hierarchy/%d", created.ID)

	w = env.Request(http.MethodPatch, path+"/status", map[string]any{"status": false}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var patched hierarchyPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &patched)
	require.False(t, patched.Status)

	require.Equal(t, http.StatusOK, env.Request(http.MethodDelete, path, nil, token).Code)
	require.Equal(t, http.StatusNotFound, env.Request(http.MethodGet, path, nil, token).Code)
}

func TestHierarchyHandler_Bounds(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.LoginAdmin()

	w := env.Request(http.MethodGet, "/api/hierarchy/bounds", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var bounds struct {
		Min int `json:"min"`
		Max int `json:"max"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &bounds)
	require.Equal(t, 1, bounds.Min)
	require.Equal(t, 4, bounds.Max)
}
