package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/dairyadmin/internal/api"
	"github.com/charlesng35/dairyadmin/internal/app"
	iauth "github.com/charlesng35/dairyadmin/internal/auth"
	"github.com/charlesng35/dairyadmin/internal/database"
	sharedtestutil "github.com/charlesng35/dairyadmin/internal/database/testutil"
	"github.com/charlesng35/dairyadmin/internal/models"
	"github.com/charlesng35/dairyadmin/pkg/crypto"
	"github.com/charlesng35/dairyadmin/pkg/response"
)

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Router *gin.Engine
	JWT    *iauth.JWTService
}

// NewEnv provisions a fresh handler test environment with migrations and seed data applied.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedData())

	jwtSecret := "test-suite-super-secret-key-32-bytes!!"
	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         jwtSecret,
		Issuer:         "test-suite",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	cfg := &app.Config{
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{Secret: jwtSecret, Issuer: "test-suite", TTL: time.Hour},
		},
		Hierarchy:  app.HierarchyConfig{MaxLevels: 4},
		Pagination: app.PaginationConfig{DefaultLimit: 10, MaxLimit: 100},
	}

	router, err := api.NewRouter(api.Dependencies{DB: db, JWT: jwtSvc, Config: cfg})
	require.NoError(t, err)

	return &Env{
		T:      t,
		DB:     db,
		Router: router,
		JWT:    jwtSvc,
	}
}

// CreateUser inserts an active user holding roleID and returns the record.
func (e *Env) CreateUser(roleID uint, password string) *models.User {
	e.T.Helper()

	hashed, err := crypto.HashPassword(password)
	require.NoError(e.T, err)

	name := "user-" + uuid.NewString()[:8]
	user := &models.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: hashed,
		RoleID:   &roleID,
		Status:   true,
	}
	require.NoError(e.T, e.DB.Create(user).Error)
	return user
}

// RoleID looks up a seeded role by name.
func (e *Env) RoleID(name string) uint {
	e.T.Helper()
	var role models.Role
	require.NoError(e.T, e.DB.Where("name = ?", name).First(&role).Error)
	return role.ID
}

// LoginResult bundles the data payload returned from POST /api/auth/login.
type LoginResult struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	Redirect string `json:"redirect"`
	User     struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// Login authenticates and returns the issued token.
func (e *Env) Login(email, password string) LoginResult {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	resp := DecodeResponse(e.T, w)
	require.True(e.T, resp.Success, w.Body.String())

	var result LoginResult
	DecodeInto(e.T, resp.Data, &result)
	require.NotEmpty(e.T, result.Token)
	require.Equal(e.T, email, result.User.Email)
	return result
}

// LoginAdmin signs in as the seeded super admin.
func (e *Env) LoginAdmin() string {
	e.T.Helper()
	return e.Login(database.SuperAdminEmail, database.SuperAdminPassword).Token
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(e.T, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	setBearer(req, token)
	return e.Serve(req)
}

// Upload posts a multipart form with a single file field.
func (e *Env) Upload(path, field, filename string, content []byte, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(e.T, err)
	_, err = part.Write(content)
	require.NoError(e.T, err)
	require.NoError(e.T, writer.Close())

	req, err := http.NewRequest(http.MethodPost, path, &buf)
	require.NoError(e.T, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	setBearer(req, token)
	return e.Serve(req)
}

// Serve runs a prepared request through the router.
func (e *Env) Serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

func setBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
