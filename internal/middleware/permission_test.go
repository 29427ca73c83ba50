package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	allowed map[string]bool
	err     error
	calls   []string
}

func (s *stubChecker) Check(_ context.Context, _ uint, route string) (bool, error) {
	s.calls = append(s.calls, route)
	if s.err != nil {
		return false, s.err
	}
	return s.allowed[route], nil
}

func withUser(id uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxUserIDKey, id)
		c.Next()
	}
}

func TestRequireModuleWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	checker := &stubChecker{}
	r := gin.New()
	r.GET("/secure", RequireModule(checker, "roles"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Empty(t, checker.calls)
}

func TestRequireModuleOutcomes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	checker := &stubChecker{allowed: map[string]bool{"roles": true}}
	r := gin.New()
	r.Use(withUser(5))
	r.GET("/roles", RequireModule(checker, "roles"), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/banks", RequireModule(checker, "banks"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/roles", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/banks", nil))
	require.Equal(t, http.StatusForbidden, w.Code)

	checker.err = errors.New("db down")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/roles", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "permission check failed")

	require.Equal(t, []string{"roles", "banks", "roles"}, checker.calls)
}
