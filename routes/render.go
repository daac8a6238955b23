package routes

import (
	"errors"
	"net/http"
	"strconv"

	"goaltracker/logger"
	"goaltracker/middleware"
	"goaltracker/services"

	"github.com/gin-gonic/gin"
)

// CookieSettings controls the attributes of cookies set by the handlers.
type CookieSettings struct {
	Secure bool
}

type pageData struct {
	Title    string
	Username string
	BackLink bool
	Flashes  []Flash

	Mode         string
	FormUsername string
	FormGoal     string
	FormDeadline string

	Goals []services.GoalSummary
	Goal  *services.GoalDetail

	Status  int
	Message string
}

// renderPage renders template name. Messages queued by the previous response
// come first, followed by extra messages produced by this request.
func renderPage(c *gin.Context, cookies CookieSettings, status int, name string, data pageData, extra ...Flash) {
	if identity, ok := middleware.CurrentIdentity(c); ok {
		data.Username = identity.Username
	}
	data.Flashes = append(popFlashes(c, cookies), extra...)
	c.HTML(status, name, data)
}

func renderError(c *gin.Context, status int) {
	data := pageData{Status: status, BackLink: true}
	switch status {
	case http.StatusNotFound:
		data.Title = "Page Not Found"
		data.Message = "The page you are looking for does not exist."
	default:
		data.Title = "Internal Server Error"
		data.Message = "Something went wrong. Please try again later."
	}
	if identity, ok := middleware.CurrentIdentity(c); ok {
		data.Username = identity.Username
	}
	c.HTML(status, "error.html", data)
}

func errorFlash(message string) Flash {
	return Flash{Category: "error", Message: message}
}

// NotFound renders the 404 page for unknown routes.
func NotFound(c *gin.Context) {
	renderError(c, http.StatusNotFound)
}

// Recovery logs a panic and renders the 500 page.
func Recovery(c *gin.Context, recovered any) {
	logger.ErrorContext(c.Request.Context(), "Server error", "panic", recovered, "path", c.Request.URL.Path)
	renderError(c, http.StatusInternalServerError)
	c.Abort()
}

// respondJSONError maps a service error onto the JSON error contract.
func respondJSONError(c *gin.Context, op string, err error) {
	ctx := c.Request.Context()
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": services.ValidationMessage(err)})
	case errors.Is(err, services.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		logger.ErrorContext(ctx, "Request failed", "operation", op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// identity is only called behind RequirePageAuth/RequireAPIAuth.
func identity(c *gin.Context) services.Identity {
	id, _ := middleware.CurrentIdentity(c)
	return id
}
