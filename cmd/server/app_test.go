package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:               8080,
			LogLevel:           "debug",
			CORSAllowedOrigins: []string{"http://localhost:5173"},
			ShutdownTimeoutSec: 1,
		},
		Database: config.DatabaseConfig{Driver: config.DriverMemory},
		Auth: config.AuthConfig{
			JWTSecret:            "test-secret-that-is-at-least-32-characters",
			TokenLifetimeMinutes: 60,
			AdminJoinCode:        "join",
			BcryptCost:           4,
		},
		Breaker: config.BreakerConfig{
			MaxRequests:         1,
			IntervalSeconds:     60,
			TimeoutSeconds:      30,
			ConsecutiveFailures: 3,
		},
	}
}

func newTestApplication(t *testing.T) *application {
	t.Helper()
	log, _ := logger.NewTestLogger()
	app, err := newApplication(context.Background(), testConfig(), log)
	require.NoError(t, err)
	return app
}

func TestNewApplicationRejectsUnknownDriver(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Database.Driver = "sqlite"

	log, _ := logger.NewTestLogger()
	_, err := newApplication(context.Background(), cfg, log)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestNewApplicationRejectsShortSecret(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Auth.JWTSecret = "short"

	log, _ := logger.NewTestLogger()
	_, err := newApplication(context.Background(), cfg, log)
	assert.ErrorContains(t, err, "JWT service")
}

func TestRunMigrationsRequiresPostgres(t *testing.T) {
	t.Parallel()
	log, _ := logger.NewTestLogger()
	err := runMigrations(context.Background(), testConfig(), "up", log)
	assert.ErrorContains(t, err, "postgres")
}

func TestRouterHealth(t *testing.T) {
	t.Parallel()
	router := newTestApplication(t).setupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouterCORS(t *testing.T) {
	t.Parallel()
	router := newTestApplication(t).setupRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterSignUpAndListTasks(t *testing.T) {
	t.Parallel()
	router := newTestApplication(t).setupRouter()

	body := `{"name":"Ada","email":"ada@example.com","password":"correct-horse","adminJoinCode":"join"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/sign-up", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var auth struct {
		Token string `json:"token"`
		User  struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))
	assert.Equal(t, "admin", auth.User.Role)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+auth.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tasks":[],"statusSummary":{"all":0,"pendingTasks":0,"inProgressTasks":0,"completedTasks":0}}`,
		w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRunServerShutsDownOnCancel(t *testing.T) {
	t.Parallel()
	app := newTestApplication(t)

	ctx, cancel := context.WithCancel(context.Background())
	server := &http.Server{Handler: app.setupRouter(), ReadHeaderTimeout: time.Second}
	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- app.runServer(ctx, server, func() error {
			close(started)
			<-ctx.Done()
			return http.ErrServerClosed
		})
	}()

	<-started
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunServerReportsListenFailure(t *testing.T) {
	t.Parallel()
	app := newTestApplication(t)

	server := &http.Server{Handler: http.NotFoundHandler(), ReadHeaderTimeout: time.Second}
	err := app.runServer(context.Background(), server, func() error {
		return errors.New("address already in use")
	})
	assert.ErrorContains(t, err, "address already in use")
}

func TestCLIParsing(t *testing.T) {
	t.Parallel()

	c := newCLI()
	command, err := c.app.Parse([]string{"migrate", "status"})
	require.NoError(t, err)
	assert.Equal(t, c.migrate.FullCommand(), command)
	assert.Equal(t, "status", *c.migrateAction)

	c = newCLI()
	command, err = c.app.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, c.serve.FullCommand(), command)

	_, err = newCLI().app.Parse([]string{"migrate", "sideways"})
	assert.Error(t, err)
}
