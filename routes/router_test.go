package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"goaltracker/services"
	"goaltracker/testutils"
	"goaltracker/views"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLiveServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutils.SetupTestDB(t)
	templates, err := views.Load()
	require.NoError(t, err)

	authService := services.NewAuthService("router-test-secret", time.Hour, services.NewUserService(), services.NewDBSessionStore(db))
	router := SetupRouter(Dependencies{
		DB:             db,
		Templates:      templates,
		AuthService:    authService,
		GoalService:    services.NewGoalService(),
		TaskService:    services.NewTaskService(),
		AllowedOrigins: "http://localhost:5000",
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newBrowser(t *testing.T, server *httptest.Server) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, base: server.URL, client: &http.Client{Jar: jar}}
}

func (b *browser) get(path string) (int, string) {
	resp, err := b.client.Get(b.base + path)
	require.NoError(b.t, err)
	return readResponse(b.t, resp)
}

func (b *browser) postForm(path string, values url.Values) (int, string) {
	resp, err := b.client.PostForm(b.base+path, values)
	require.NoError(b.t, err)
	return readResponse(b.t, resp)
}

func (b *browser) postJSON(path, body string) (int, map[string]interface{}) {
	resp, err := b.client.Post(b.base+path, "application/json", strings.NewReader(body))
	require.NoError(b.t, err)
	status, raw := readResponse(b.t, resp)
	var decoded map[string]interface{}
	require.NoError(b.t, json.Unmarshal([]byte(raw), &decoded), raw)
	return status, decoded
}

func readResponse(t *testing.T, resp *http.Response) (int, string) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (b *browser) signUp(username, password string) {
	_, body := b.postForm("/register", url.Values{"username": {username}, "password": {password}})
	require.Contains(b.t, body, "Registration successful! Please login.")
	_, body = b.postForm("/login", url.Values{"username": {username}, "password": {password}})
	require.Contains(b.t, body, "Login successful!")
}

func TestGoalLifecycleThroughRouter(t *testing.T) {
	server := newLiveServer(t)
	bob := newBrowser(t, server)
	bob.signUp("bobby", "correct-horse")

	status, body := bob.postForm("/create_goal", url.Values{
		"goal":     {"Ship the app"},
		"deadline": {"2030-02-01"},
		"tasks":    {`["Design","Build","Deploy"]`},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Goal created successfully!")
	assert.Contains(t, body, "0/3 tasks completed (0%)")

	status, result := bob.postJSON("/toggle_task/2", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, result["completed"])

	status, result = bob.postJSON("/reorder_task", `{"task_id":"3","target_id":"1"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, result["success"])

	_, body = bob.get("/view_goal/1")
	deploy, design, build := strings.Index(body, "Deploy"), strings.Index(body, "Design"), strings.Index(body, "Build")
	assert.True(t, deploy < design && design < build, "expected Deploy, Design, Build")
	assert.Contains(t, body, "33%")

	_, body = bob.get("/delete_goal/1")
	assert.Contains(t, body, "Goal deleted successfully!")
	assert.Contains(t, body, "No goals yet!")
}

func TestOtherUsersCannotTouchGoals(t *testing.T) {
	server := newLiveServer(t)
	owner := newBrowser(t, server)
	owner.signUp("owner", "correct-horse")
	owner.postForm("/create_goal", url.Values{"goal": {"Private"}, "deadline": {"2030-02-01"}, "tasks": {`["Secret"]`}})

	intruder := newBrowser(t, server)
	intruder.signUp("intruder", "correct-horse")

	status, result := intruder.postJSON("/toggle_task/1", "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Unauthorized", result["error"])

	_, body := intruder.get("/view_goal/1")
	assert.Contains(t, body, "Unauthorized access")
	assert.NotContains(t, body, "Secret")

	_, body = owner.get("/view_goal/1")
	assert.Contains(t, body, "Secret")
}

func TestLogoutEndsSession(t *testing.T) {
	server := newLiveServer(t)
	carol := newBrowser(t, server)
	carol.signUp("carol", "correct-horse")

	_, body := carol.get("/logout")
	assert.Contains(t, body, "Logged out successfully")

	status, result := carol.postJSON("/toggle_task/1", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", result["error"])
}
