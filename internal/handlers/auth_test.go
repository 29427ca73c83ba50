package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/dairyadmin/internal/database"
	"github.com/charlesng35/dairyadmin/internal/handlers/testutil"
)

func TestAuthHandler_LoginRedirectsToDashboard(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    database.SuperAdminEmail,
		"password": database.SuperAdminPassword,
		"role":     "field_user",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := testutil.DecodeResponse(t, w)
	require.True(t, resp.Success)
	require.Equal(t, "Login successful", resp.Message)

	var result testutil.LoginResult
	testutil.DecodeInto(t, resp.Data, &result)
	require.NotEmpty(t, result.Token)
	require.Equal(t, "/dashboard", result.Redirect)
	require.Equal(t, "field_user", result.Role)
}

func TestAuthHandler_WrongPassword(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    database.SuperAdminEmail,
		"password": "not-the-password",
	}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	resp := testutil.DecodeResponse(t, w)
	require.False(t, resp.Success)
	require.Equal(t, "Invalid credentials", resp.Message)
	require.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)
	require.Empty(t, resp.Data)
}

func TestAuthHandler_LoginValidatesPayload(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/api/auth/login", map[string]string{"email": "not-an-email"}, "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	resp := testutil.DecodeResponse(t, w)
	require.Contains(t, resp.Error.Fields, "email")
	require.Contains(t, resp.Error.Fields, "password")
}

func TestAuthHandler_MeListsGrantedModules(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.LoginAdmin()

	w := env.Request(http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var profile struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
		Modules []string `json:"modules"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &profile)
	require.Equal(t, database.SuperAdminEmail, profile.User.Email)
	require.Contains(t, profile.Modules, "roles")
	require.Contains(t, profile.Modules, "approval-hierarchy")
}

func TestAuthHandler_EmptyBearerIsRejected(t *testing.T) {
	env := testutil.NewEnv(t)

	req, err := http.NewRequest(http.MethodGet, "/api/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer ")

	w := env.Serve(req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
