package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/handlers"
	"github.com/charlesng35/dairyadmin/internal/middleware"
	"github.com/charlesng35/dairyadmin/internal/permissions"
)

func registerModuleRoutes(api *gin.RouterGroup, modules *handlers.ModuleHandler, perms *handlers.PermissionHandler, checker *permissions.Checker) {
	group := api.Group("/modules")
	group.Use(middleware.RequireModule(checker, permissions.RouteModules))
	{
		group.GET("", modules.List)
		group.GET("/tree", modules.Tree)
		group.POST("", modules.Create)
		group.GET("/:id", modules.Get)
		group.PUT("/:id", modules.Update)
		group.DELETE("/:id", modules.Delete)
	}

	grants := api.Group("/permissions")
	grants.Use(middleware.RequireModule(checker, permissions.RoutePermissions))
	{
		grants.GET("/:role_id", perms.Get)
		grants.PUT("/:role_id", perms.Update)
	}
}
