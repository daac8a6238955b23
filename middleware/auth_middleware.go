package middleware

import (
	"errors"
	"net/http"

	"goaltracker/logger"
	"goaltracker/services"
	"goaltracker/utils/token"

	"github.com/gin-gonic/gin"
)

const IdentityKey = "identity"

// SessionMiddleware resolves the session cookie, when present, to the
// identity it was issued for. Requests without a valid session continue
// anonymously; the Require* middlewares decide what that means.
func SessionMiddleware(authService services.AuthServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := token.ExtractToken(c)
		if err != nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		identity, err := authService.Authenticate(ctx, tokenString)
		if err != nil {
			if !errors.Is(err, services.ErrUnauthenticated) {
				logger.ErrorContext(ctx, "Failed to resolve session", "error", err)
			}
			c.Next()
			return
		}

		c.Set(IdentityKey, identity)
		c.Request = c.Request.WithContext(logger.ContextWithUsername(ctx, identity.Username))
		c.Next()
	}
}

// CurrentIdentity returns the identity resolved by SessionMiddleware.
func CurrentIdentity(c *gin.Context) (services.Identity, bool) {
	value, exists := c.Get(IdentityKey)
	if !exists {
		return services.Identity{}, false
	}
	identity, ok := value.(services.Identity)
	if !ok || identity.IsZero() {
		return services.Identity{}, false
	}
	return identity, true
}

// RequirePageAuth sends anonymous visitors to the login page.
func RequirePageAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAPIAuth rejects anonymous JSON and websocket requests with 401.
func RequireAPIAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
