package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/handlers"
	"github.com/charlesng35/dairyadmin/internal/middleware"
	"github.com/charlesng35/dairyadmin/internal/permissions"
)

func registerMasterDataRoutes(api *gin.RouterGroup, handler *handlers.MasterDataHandler, checker *permissions.Checker) {
	group := api.Group("/master-data")
	{
		group.GET("/types", middleware.RequireModule(checker, permissions.RouteMasterDataExport), handler.Types)
		group.GET("/template/:type", middleware.RequireModule(checker, permissions.RouteMasterDataExport), handler.Template)
		group.GET("/export/:type", middleware.RequireModule(checker, permissions.RouteMasterDataExport), handler.Export)
		group.POST("/import/:type", middleware.RequireModule(checker, permissions.RouteMasterDataImport), handler.Import)
	}
}
