package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/dairyadmin/internal/handlers/testutil"
)

type assignmentPayload struct {
	ID          uint     `json:"id"`
	UserID      uint     `json:"user_id"`
	RoleID      uint     `json:"role_id"`
	MCCCodes    []string `json:"mcc_codes"`
	MPPCodes    []string `json:"mpp_codes"`
	FormStepIDs []uint   `json:"formsteps_ids"`
	AssignedMCC string   `json:"assigned_mcc"`
	AssignedMPP string   `json:"assigned_mpp"`
}

func TestAssignmentHandler_AssignUnionsPerUser(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.LoginAdmin()
	roleID := env.RoleID("Field User")
	user := env.CreateUser(roleID, "secret123")

	w := env.Request(http.MethodPost, "/api/assigned-permissions", map[string]any{
		"role": roleID, "user_id": user.ID, "section_ids": []uint{2, 1}, "mcc_code": "MCC001", "mpp_code": "MPP001",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.Request(http.MethodPost, "/api/assigned-permissions", map[string]any{
		"role": roleID, "user_id": user.ID, "section_ids": []uint{3, 1}, "mcc_code": "MCC002", "mpp_code": "MPP003",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var view assignmentPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &view)
	require.Equal(t, []string{"MCC001", "MCC002"}, view.MCCCodes)
	require.Equal(t, []string{"MPP001", "MPP003"}, view.MPPCodes)
	require.Equal(t, []uint{1, 2, 3}, view.FormStepIDs)
	require.Equal(t, "MCC001, MCC002", view.AssignedMCC)

	w = env.Request(http.MethodGet, "/api/assigned-permissions", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Items []assignmentPayload `json:"items"`
		Total int                 `json:"total"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &list)
	require.Equal(t, 1, list.Total)
	require.Len(t, list.Items, 1)
	require.Equal(t, view.ID, list.Items[0].ID)
}

func TestAssignmentHandler_RejectsMPPOutsideMCC(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.LoginAdmin()
	roleID := env.RoleID("Field User")
	user := env.CreateUser(roleID, "secret123")

	w := env.Request(http.MethodPost, "/api/assigned-permissions", map[string]any{
		"role": roleID, "user_id": user.ID, "section_ids": []uint{1}, "mcc_code": "MCC002", "mpp_code": "MPP001",
	}, token)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	require.Contains(t, testutil.DecodeResponse(t, w).Error.Fields, "mpp_code")
}

func TestAssignmentHandler_RequiresEveryField(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.LoginAdmin()

	w := env.Request(http.MethodPost, "/api/assigned-permissions", map[string]any{"role": 3}, token)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	fields := testutil.DecodeResponse(t, w).Error.Fields
	for _, key := range []string{"user_id", "section_ids", "mcc_code", "mpp_code"} {
		require.Contains(t, fields, key)
	}
}

func TestAssignmentHandler_UpdateReplacesAndDelete(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.LoginAdmin()
	roleID := env.RoleID("Field User")
	user := env.CreateUser(roleID, "secret123")

	w := env.Request(http.MethodPost, "/api/assigned-permissions", map[string]any{
		"role": roleID, "user_id": user.ID, "section_ids": []uint{1, 2}, "mcc_code": "MCC001", "mpp_code": "MPP002",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created assignmentPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &created)
	path := fmt.Sprintf("/api/assigned-permissions/%d", created.ID)

	w = env.Request(http.MethodPut, path, map[string]any{
		"role_id": roleID, "mcc_codes": []string{"MCC002"}, "mpp_codes": []string{"MPP003"}, "formsteps_ids": []uint{4},
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated assignmentPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &updated)
	require.Equal(t, []string{"MCC002"}, updated.MCCCodes)
	require.Equal(t, []string{"MPP003"}, updated.MPPCodes)
	require.Equal(t, []uint{4}, updated.FormStepIDs)

	require.Equal(t, http.StatusOK, env.Request(http.MethodDelete, path, nil, token).Code)
	require.Equal(t, http.StatusNotFound, env.Request(http.MethodGet, path, nil, token).Code)
}
