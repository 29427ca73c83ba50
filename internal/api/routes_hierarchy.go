package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/handlers"
	"github.com/charlesng35/dairyadmin/internal/middleware"
	"github.com/charlesng35/dairyadmin/internal/permissions"
)

func registerHierarchyRoutes(api *gin.RouterGroup, handler *handlers.HierarchyHandler, checker *permissions.Checker) {
	group := api.Group("/hierarchy")
	group.Use(middleware.RequireModule(checker, permissions.RouteApprovalHierarchy))
	{
		group.GET("", handler.List)
		group.GET("/table", handler.Table)
		group.GET("/bounds", handler.Bounds)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", handler.Update)
		group.PATCH("/:id/status", handler.SetStatus)
		group.DELETE("/:id", handler.Delete)
	}
}
