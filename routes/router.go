package routes

import (
	"html/template"

	"goaltracker/database"
	"goaltracker/middleware"
	"goaltracker/services"

	"github.com/gin-gonic/gin"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	DB             *database.Database
	Templates      *template.Template
	AuthService    services.AuthServiceInterface
	GoalService    services.GoalServiceInterface
	TaskService    services.TaskServiceInterface
	WebSocket      services.WebSocketServiceInterface
	AllowedOrigins string
	Cookies        CookieSettings
}

// SetupRouter builds the engine with the full middleware chain and all routes.
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.SetHTMLTemplate(deps.Templates)

	router.Use(
		middleware.RequestIDMiddleware(),
		middleware.LoggerMiddleware(),
		gin.CustomRecovery(Recovery),
		middleware.CORSMiddleware(deps.AllowedOrigins),
		middleware.SessionMiddleware(deps.AuthService),
	)
	router.NoRoute(NotFound)

	RegisterHealthRoutes(router, deps.DB)
	RegisterAuthRoutes(router, deps.DB, deps.AuthService, deps.Cookies)

	pages := router.Group("/")
	pages.Use(middleware.RequirePageAuth())
	RegisterGoalRoutes(pages, deps.DB, deps.GoalService, deps.Cookies)

	api := router.Group("/")
	api.Use(middleware.RequireAPIAuth())
	RegisterTaskRoutes(api, deps.DB, deps.TaskService)
	if deps.WebSocket != nil {
		RegisterWebSocketRoutes(api, deps.WebSocket)
	}

	return router
}
