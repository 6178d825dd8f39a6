package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/taskboard-api/internal/api"
	"github.com/phrazzld/taskboard-api/internal/api/middleware"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/memory"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

const adminJoinCode = "admin-join-code"

type testServer struct {
	router http.Handler
	tasks  *memory.TaskStore
	users  *memory.UserStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	users := memory.NewUserStore(nil)
	tasks := memory.NewTaskStore(nil)

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "test-secret-that-is-at-least-32-characters",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	userSvc, err := service.NewUserService(users, tasks, auth.NewBcryptHasher(bcrypt.MinCost), adminJoinCode, nil)
	require.NoError(t, err)
	taskSvc, err := service.NewTaskService(tasks, users, nil)
	require.NoError(t, err)
	dashSvc, err := service.NewDashboardService(tasks, nil, nil)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware(nil))
	api.RegisterRoutes(r, api.Handlers{
		Auth:      api.NewAuthHandler(userSvc, jwtService, nil),
		Users:     api.NewUserHandler(userSvc, nil),
		Tasks:     api.NewTaskHandler(taskSvc, nil),
		Dashboard: api.NewDashboardHandler(dashSvc, nil),
	}, middleware.NewAuthMiddleware(jwtService))

	return &testServer{router: r, tasks: tasks, users: users}
}

// do sends a JSON request. A string body is sent verbatim.
func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// signUp registers an account and returns it with its token.
func (s *testServer) signUp(t *testing.T, name, email, joinCode string) (api.UserResponse, string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/sign-up", "", api.SignUpRequest{
		Name:          name,
		Email:         email,
		Password:      "correct-horse",
		AdminJoinCode: joinCode,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp api.AuthResponse
	decode(t, w, &resp)
	return resp.User, resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error   string `json:"error"`
		TraceID string `json:"trace_id"`
	}
	decode(t, w, &body)
	require.NotEmpty(t, body.TraceID)
	return body.Error
}
