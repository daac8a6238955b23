package middleware

import (
	"goaltracker/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags every request with an id, reusing the client's
// X-Request-ID when one is sent.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.New().String()
		}

		c.Header(RequestIDHeader, requestID)
		c.Set("request_id", requestID)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}
