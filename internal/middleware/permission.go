package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/pkg/errors"
	"github.com/charlesng35/dairyadmin/pkg/metrics"
	"github.com/charlesng35/dairyadmin/pkg/response"
)

// ModuleChecker resolves whether a user may access a module route.
type ModuleChecker interface {
	Check(ctx context.Context, userID uint, route string) (bool, error)
}

// RequireModule allows the request when the authenticated user's role has been
// granted the module identified by route.
func RequireModule(checker ModuleChecker, route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		allowed, err := checker.Check(c.Request.Context(), userID, route)
		if err != nil {
			metrics.PermissionChecks.WithLabelValues(route, "error").Inc()
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
				Success: false,
				Message: "permission check failed",
				Error: &response.ErrorInfo{
					Code:    errors.ErrInternalServer.Code,
					Message: "permission check failed",
				},
			})
			return
		}
		if !allowed {
			metrics.PermissionChecks.WithLabelValues(route, "denied").Inc()
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		metrics.PermissionChecks.WithLabelValues(route, "allowed").Inc()
		c.Next()
	}
}
