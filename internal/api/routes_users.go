package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/handlers"
	"github.com/charlesng35/dairyadmin/internal/middleware"
	"github.com/charlesng35/dairyadmin/internal/permissions"
)

func registerUserRoutes(api *gin.RouterGroup, users *handlers.UserHandler, assignments *handlers.AssignmentHandler, checker *permissions.Checker) {
	group := api.Group("/users")
	group.Use(middleware.RequireModule(checker, permissions.RouteUsers))
	{
		group.GET("", users.List)
		group.POST("", users.Create)
		group.GET("/:id", users.Get)
		group.PUT("/:id", users.Update)
		group.DELETE("/:id", users.Delete)
	}

	allocations := api.Group("/assigned-permissions")
	allocations.Use(middleware.RequireModule(checker, permissions.RouteAssignedPermissions))
	{
		allocations.GET("", assignments.List)
		allocations.POST("", assignments.Assign)
		allocations.GET("/:id", assignments.Get)
		allocations.PUT("/:id", assignments.Update)
		allocations.DELETE("/:id", assignments.Delete)
	}
}
