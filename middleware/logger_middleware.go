package middleware

import (
	"time"

	"goaltracker/logger"

	"github.com/gin-gonic/gin"
)

// LoggerMiddleware writes one structured line per completed request.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		logFunc := logger.InfoContext
		if status >= 500 {
			logFunc = logger.ErrorContext
		} else if status >= 400 {
			logFunc = logger.WarnContext
		}

		args := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start).String(),
			"bytes", c.Writer.Size(),
			"ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}
		logFunc(c.Request.Context(), "Request completed", args...)
	}
}
