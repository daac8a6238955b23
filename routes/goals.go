package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"goaltracker/database"
	"goaltracker/logger"
	"goaltracker/services"

	"github.com/gin-gonic/gin"
)

type goalForm struct {
	Goal     string `form:"goal"`
	Deadline string `form:"deadline"`
	Tasks    string `form:"tasks"`
}

func RegisterGoalRoutes(group *gin.RouterGroup, db *database.Database, goalService services.GoalServiceInterface, cookies CookieSettings) {
	group.GET("/dashboard", func(c *gin.Context) { Dashboard(c, db, goalService, cookies) })
	group.GET("/create_goal", func(c *gin.Context) { CreateGoalPage(c, cookies) })
	group.POST("/create_goal", func(c *gin.Context) { CreateGoal(c, db, goalService, cookies) })
	group.GET("/view_goal/:id", func(c *gin.Context) { ViewGoal(c, db, goalService, cookies) })
	group.GET("/delete_goal/:id", func(c *gin.Context) { DeleteGoal(c, db, goalService, cookies) })
}

func Dashboard(c *gin.Context, db *database.Database, goalService services.GoalServiceInterface, cookies CookieSettings) {
	goals, err := goalService.ListGoals(c.Request.Context(), db, identity(c))
	if err != nil {
		logger.ErrorContext(c.Request.Context(), "Failed to list goals", "error", err)
		renderError(c, http.StatusInternalServerError)
		return
	}
	renderPage(c, cookies, http.StatusOK, "dashboard.html", pageData{Title: "Dashboard", Goals: goals})
}

func CreateGoalPage(c *gin.Context, cookies CookieSettings) {
	renderPage(c, cookies, http.StatusOK, "create_goal.html", pageData{Title: "Create Goal", BackLink: true})
}

func CreateGoal(c *gin.Context, db *database.Database, goalService services.GoalServiceInterface, cookies CookieSettings) {
	var form goalForm
	_ = c.ShouldBind(&form)
	page := pageData{Title: "Create Goal", BackLink: true, FormGoal: form.Goal, FormDeadline: form.Deadline}

	if strings.TrimSpace(form.Goal) == "" || strings.TrimSpace(form.Deadline) == "" {
		renderPage(c, cookies, http.StatusOK, "create_goal.html", page, errorFlash("Goal title and deadline are required"))
		return
	}

	var tasks []string
	if strings.TrimSpace(form.Tasks) != "" {
		if err := json.Unmarshal([]byte(form.Tasks), &tasks); err != nil {
			renderPage(c, cookies, http.StatusOK, "create_goal.html", page, errorFlash("Invalid tasks format"))
			return
		}
	}

	_, err := goalService.CreateGoal(c.Request.Context(), db, identity(c), services.GoalInput{
		Title:    form.Goal,
		Deadline: form.Deadline,
		Tasks:    tasks,
	})
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			renderPage(c, cookies, http.StatusOK, "create_goal.html", page, errorFlash(services.ValidationMessage(err)))
			return
		}
		logger.ErrorContext(c.Request.Context(), "Failed to create goal", "error", err)
		renderError(c, http.StatusInternalServerError)
		return
	}

	addFlash(c, cookies, "success", "Goal created successfully!")
	c.Redirect(http.StatusFound, "/dashboard")
}

func ViewGoal(c *gin.Context, db *database.Database, goalService services.GoalServiceInterface, cookies CookieSettings) {
	goalID, ok := parseID(c, "id")
	if !ok {
		renderError(c, http.StatusNotFound)
		return
	}

	goal, err := goalService.GetGoal(c.Request.Context(), db, identity(c), goalID)
	if err != nil {
		handleGoalPageError(c, cookies, "view goal", goalID, err)
		return
	}

	renderPage(c, cookies, http.StatusOK, "view_goal.html", pageData{Title: goal.Title, BackLink: true, Goal: &goal})
}

func DeleteGoal(c *gin.Context, db *database.Database, goalService services.GoalServiceInterface, cookies CookieSettings) {
	goalID, ok := parseID(c, "id")
	if !ok {
		renderError(c, http.StatusNotFound)
		return
	}

	if err := goalService.DeleteGoal(c.Request.Context(), db, identity(c), goalID); err != nil {
		handleGoalPageError(c, cookies, "delete goal", goalID, err)
		return
	}

	addFlash(c, cookies, "success", "Goal deleted successfully!")
	c.Redirect(http.StatusFound, "/dashboard")
}

func handleGoalPageError(c *gin.Context, cookies CookieSettings, op string, goalID uint, err error) {
	switch {
	case errors.Is(err, services.ErrForbidden):
		addFlash(c, cookies, "error", "Unauthorized access")
		c.Redirect(http.StatusFound, "/dashboard")
	case errors.Is(err, services.ErrNotFound):
		renderError(c, http.StatusNotFound)
	default:
		logger.ErrorContext(c.Request.Context(), "Goal operation failed", "operation", op, "goal_id", goalID, "error", err)
		renderError(c, http.StatusInternalServerError)
	}
}
