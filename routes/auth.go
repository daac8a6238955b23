package routes

import (
	"errors"
	"net/http"
	"time"

	"goaltracker/database"
	"goaltracker/logger"
	"goaltracker/middleware"
	"goaltracker/services"
	"goaltracker/utils/token"

	"github.com/gin-gonic/gin"
)

type credentialsForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func RegisterAuthRoutes(router *gin.Engine, db *database.Database, authService services.AuthServiceInterface, cookies CookieSettings) {
	router.GET("/", Index)
	router.GET("/login", func(c *gin.Context) { LoginPage(c, cookies) })
	router.POST("/login", func(c *gin.Context) { Login(c, db, authService, cookies) })
	router.GET("/register", func(c *gin.Context) { RegisterPage(c, cookies) })
	router.POST("/register", func(c *gin.Context) { Register(c, db, authService, cookies) })
	router.GET("/logout", func(c *gin.Context) { Logout(c, authService, cookies) })
}

func Index(c *gin.Context) {
	if _, ok := middleware.CurrentIdentity(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func LoginPage(c *gin.Context, cookies CookieSettings) {
	renderPage(c, cookies, http.StatusOK, "login.html", pageData{Title: "Login", Mode: "login"})
}

func RegisterPage(c *gin.Context, cookies CookieSettings) {
	renderPage(c, cookies, http.StatusOK, "login.html", pageData{Title: "Register", Mode: "register"})
}

func Login(c *gin.Context, db *database.Database, authService services.AuthServiceInterface, cookies CookieSettings) {
	var form credentialsForm
	_ = c.ShouldBind(&form)
	page := pageData{Title: "Login", Mode: "login", FormUsername: form.Username}

	session, err := authService.Login(c.Request.Context(), db, form.Username, form.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			renderPage(c, cookies, http.StatusOK, "login.html", page, errorFlash(services.ValidationMessage(err)))
		case errors.Is(err, services.ErrInvalidCredentials):
			renderPage(c, cookies, http.StatusOK, "login.html", page, errorFlash("Invalid credentials"))
		default:
			logger.ErrorContext(c.Request.Context(), "Login failed", "username", form.Username, "error", err)
			renderError(c, http.StatusInternalServerError)
		}
		return
	}

	setSessionCookie(c, cookies, session.Token, session.ExpiresAt)
	addFlash(c, cookies, "success", "Login successful!")
	c.Redirect(http.StatusFound, "/dashboard")
}

func Register(c *gin.Context, db *database.Database, authService services.AuthServiceInterface, cookies CookieSettings) {
	var form credentialsForm
	_ = c.ShouldBind(&form)
	page := pageData{Title: "Register", Mode: "register", FormUsername: form.Username}

	if _, err := authService.Register(c.Request.Context(), db, form.Username, form.Password); err != nil {
		if errors.Is(err, services.ErrValidation) {
			renderPage(c, cookies, http.StatusOK, "login.html", page, errorFlash(services.ValidationMessage(err)))
			return
		}
		logger.ErrorContext(c.Request.Context(), "Registration failed", "username", form.Username, "error", err)
		renderError(c, http.StatusInternalServerError)
		return
	}

	addFlash(c, cookies, "success", "Registration successful! Please login.")
	c.Redirect(http.StatusFound, "/login")
}

func Logout(c *gin.Context, authService services.AuthServiceInterface, cookies CookieSettings) {
	if tokenString, err := token.ExtractToken(c); err == nil {
		if err := authService.Logout(c.Request.Context(), tokenString); err != nil {
			// The cookie is cleared regardless; the token expires on its own.
			logger.ErrorContext(c.Request.Context(), "Failed to revoke session", "error", err)
		}
	}

	clearSessionCookie(c, cookies)
	addFlash(c, cookies, "success", "Logged out successfully")
	c.Redirect(http.StatusFound, "/login")
}

func setSessionCookie(c *gin.Context, cookies CookieSettings, value string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(token.CookieName, value, maxAge, "/", "", cookies.Secure, true)
}

func clearSessionCookie(c *gin.Context, cookies CookieSettings) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(token.CookieName, "", -1, "/", "", cookies.Secure, true)
}
