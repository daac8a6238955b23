package routes

import (
	"goaltracker/services"

	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes mounts the live-refresh stream on an authenticated group.
func RegisterWebSocketRoutes(group *gin.RouterGroup, wsService services.WebSocketServiceInterface) {
	group.GET("/ws", func(c *gin.Context) {
		wsService.HandleConnection(c.Writer, c.Request, identity(c))
	})
}
