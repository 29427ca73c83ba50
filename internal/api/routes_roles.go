package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/handlers"
	"github.com/charlesng35/dairyadmin/internal/middleware"
	"github.com/charlesng35/dairyadmin/internal/permissions"
)

func registerRoleRoutes(api *gin.RouterGroup, roles *handlers.RoleHandler, categories *handlers.CategoryHandler, checker *permissions.Checker) {
	// The hierarchy editor lists approval roles without needing the roles screen.
	api.GET("/roles/approval", middleware.RequireModule(checker, permissions.RouteApprovalHierarchy), roles.ApprovalRoles)

	group := api.Group("/roles")
	group.Use(middleware.RequireModule(checker, permissions.RouteRoles))
	{
		group.GET("", roles.List)
		group.POST("", roles.Create)
		group.GET("/:id", roles.Get)
		group.PUT("/:id", roles.Update)
		group.DELETE("/:id", roles.Delete)
	}

	cats := api.Group("/categories")
	cats.Use(middleware.RequireModule(checker, permissions.RouteCategories))
	{
		cats.GET("", categories.List)
		cats.POST("", categories.Create)
		cats.GET("/:id", categories.Get)
		cats.PUT("/:id", categories.Update)
		cats.DELETE("/:id", categories.Delete)
	}
}
