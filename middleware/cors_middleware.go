package middleware

import (
	"strings"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"
)

// CORSMiddleware allows the configured origins to call the JSON endpoints
// with the session cookie.
func CORSMiddleware(allowedOrigins string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitOrigins(allowedOrigins)
	corsConfig.AllowWildcard = true
	corsConfig.AllowWebSockets = true
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders,
		"Accept",
		"X-Requested-With",
		RequestIDHeader,
	)
	corsConfig.ExposeHeaders = []string{RequestIDHeader}

	return cors.New(corsConfig)
}

func splitOrigins(origins string) []string {
	var result []string
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			result = append(result, origin)
		}
	}
	if len(result) == 0 {
		result = []string{"http://localhost:5000"}
	}
	return result
}

// OriginChecker reports whether a websocket handshake comes from the
// request's own host or one of the allowed origins.
func OriginChecker(allowedOrigins string) func(origin, host string) bool {
	allowed := splitOrigins(allowedOrigins)
	return func(origin, host string) bool {
		if origin == "" {
			return true
		}
		trimmed := strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://")
		if trimmed == host {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}
