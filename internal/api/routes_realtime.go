package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/handlers"
	"github.com/charlesng35/dairyadmin/internal/realtime"
)

// Any authenticated user may listen for invalidations; the payload only names stale query keys.
func registerRealtimeRoutes(api *gin.RouterGroup, hub *realtime.Hub) {
	if hub == nil {
		return
	}
	api.GET("/ws", handlers.NewRealtimeHandler(hub).Stream)
}
