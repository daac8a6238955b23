package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"goaltracker/database"
	"goaltracker/services"
	"goaltracker/utils/token"
	"goaltracker/views"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, db *database.Database, username, password string) (services.Identity, error) {
	args := m.Called(ctx, db, username, password)
	return args.Get(0).(services.Identity), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, db *database.Database, username, password string) (services.Session, error) {
	args := m.Called(ctx, db, username, password)
	return args.Get(0).(services.Session), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, tokenString string) error {
	return m.Called(ctx, tokenString).Error(0)
}

func (m *MockAuthService) Authenticate(ctx context.Context, tokenString string) (services.Identity, error) {
	args := m.Called(ctx, tokenString)
	return args.Get(0).(services.Identity), args.Error(1)
}

type MockGoalService struct {
	mock.Mock
}

func (m *MockGoalService) CreateGoal(ctx context.Context, db *database.Database, identity services.Identity, input services.GoalInput) (services.GoalDetail, error) {
	args := m.Called(ctx, db, identity, input)
	return args.Get(0).(services.GoalDetail), args.Error(1)
}

func (m *MockGoalService) ListGoals(ctx context.Context, db *database.Database, identity services.Identity) ([]services.GoalSummary, error) {
	args := m.Called(ctx, db, identity)
	return args.Get(0).([]services.GoalSummary), args.Error(1)
}

func (m *MockGoalService) GetGoal(ctx context.Context, db *database.Database, identity services.Identity, goalID uint) (services.GoalDetail, error) {
	args := m.Called(ctx, db, identity, goalID)
	return args.Get(0).(services.GoalDetail), args.Error(1)
}

func (m *MockGoalService) DeleteGoal(ctx context.Context, db *database.Database, identity services.Identity, goalID uint) error {
	return m.Called(ctx, db, identity, goalID).Error(0)
}

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) ToggleTask(ctx context.Context, db *database.Database, identity services.Identity, taskID uint) (bool, error) {
	args := m.Called(ctx, db, identity, taskID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskService) ReorderTask(ctx context.Context, db *database.Database, identity services.Identity, taskID, targetID uint) error {
	return m.Called(ctx, db, identity, taskID, targetID).Error(0)
}

var alice = services.Identity{UserID: 1, Username: "alice"}

const aliceToken = "alice-session"

type testApp struct {
	router *gin.Engine
	auth   *MockAuthService
	goals  *MockGoalService
	tasks  *MockTaskService
}

func setupTestRouter(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	templates, err := views.Load()
	require.NoError(t, err)

	app := &testApp{
		auth:  new(MockAuthService),
		goals: new(MockGoalService),
		tasks: new(MockTaskService),
	}
	app.auth.On("Authenticate", mock.Anything, aliceToken).Return(alice, nil).Maybe()

	app.router = SetupRouter(Dependencies{
		DB:             &database.Database{},
		Templates:      templates,
		AuthService:    app.auth,
		GoalService:    app.goals,
		TaskService:    app.tasks,
		AllowedOrigins: "http://localhost:5000",
	})
	return app
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func asAlice(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: token.CookieName, Value: aliceToken})
	return req
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func jsonRequest(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}
