package routes

import (
	"context"
	"net/http"
	"time"

	"goaltracker/database"
	"goaltracker/logger"

	"github.com/gin-gonic/gin"
)

// RegisterHealthRoutes exposes the unauthenticated database probe.
func RegisterHealthRoutes(router *gin.Engine, db *database.Database) {
	router.GET("/health", func(c *gin.Context) { Health(c, db) })
}

func Health(c *gin.Context, db *database.Database) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		logger.ErrorContext(c.Request.Context(), "Health check failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "unhealthy", "error": "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "connected"})
}
