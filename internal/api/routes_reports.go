package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/handlers"
	"github.com/charlesng35/dairyadmin/internal/middleware"
	"github.com/charlesng35/dairyadmin/internal/permissions"
)

func registerReportRoutes(api *gin.RouterGroup, handler *handlers.ReportHandler, checker *permissions.Checker) {
	api.GET("/reports/summary", middleware.RequireModule(checker, permissions.RouteReportsSummary), handler.Summary)
	api.GET("/audit-logs", middleware.RequireModule(checker, permissions.RouteAuditLogs), handler.AuditLogs)
	api.GET("/security/audit", middleware.RequireModule(checker, permissions.RouteAuditLogs), handler.SecurityAudit)
}
