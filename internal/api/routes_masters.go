package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/handlers"
	"github.com/charlesng35/dairyadmin/internal/middleware"
	"github.com/charlesng35/dairyadmin/internal/permissions"
)

type crudRoutes struct {
	list, get, create, update, remove gin.HandlerFunc
}

func registerMasterRoutes(api *gin.RouterGroup, handler *handlers.MasterHandler, checker *permissions.Checker) {
	resources := map[string]struct {
		route  string
		routes crudRoutes
	}{
		"/banks":      {permissions.RouteBanks, crudRoutes{handler.ListBanks, handler.GetBank, handler.CreateBank, handler.UpdateBank, handler.DeleteBank}},
		"/villages":   {permissions.RouteVillages, crudRoutes{handler.ListVillages, handler.GetVillage, handler.CreateVillage, handler.UpdateVillage, handler.DeleteVillage}},
		"/mccs":       {permissions.RouteMCCs, crudRoutes{handler.ListMCCs, handler.GetMCC, handler.CreateMCC, handler.UpdateMCC, handler.DeleteMCC}},
		"/mpps":       {permissions.RouteMPPs, crudRoutes{handler.ListMPPs, handler.GetMPP, handler.CreateMPP, handler.UpdateMPP, handler.DeleteMPP}},
		"/form-steps": {permissions.RouteFormSteps, crudRoutes{handler.ListFormSteps, handler.GetFormStep, handler.CreateFormStep, handler.UpdateFormStep, handler.DeleteFormStep}},
	}

	for path, resource := range resources {
		group := api.Group(path)
		group.Use(middleware.RequireModule(checker, resource.route))
		group.GET("", resource.routes.list)
		group.POST("", resource.routes.create)
		group.GET("/:id", resource.routes.get)
		group.PUT("/:id", resource.routes.update)
		group.DELETE("/:id", resource.routes.remove)
	}
}
