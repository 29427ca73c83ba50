package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/handlers"
)

func registerPublicAuthRoutes(api *gin.RouterGroup, handler *handlers.AuthHandler) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", handler.Login)
	}
}

func registerAuthRoutes(api *gin.RouterGroup, handler *handlers.AuthHandler) {
	api.GET("/auth/me", handler.Me)
}
