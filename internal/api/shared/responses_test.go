package shared_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	w := httptest.NewRecorder()
	shared.RespondWithJSON(w, req, http.StatusCreated, map[string]int{"total": 3})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"total":3}`, w.Body.String())
}

func TestRespondWithErrorIncludesTraceID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req = req.WithContext(shared.SetTraceID(req.Context()))
	w := httptest.NewRecorder()

	shared.RespondWithError(w, req, http.StatusNotFound, "Task not found")

	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task not found", body.Error)
	assert.Equal(t, shared.GetTraceID(req.Context()), body.TraceID)
}

func TestRespondWithErrorAndLogRedacts(t *testing.T) {
	t.Parallel()

	log, buf := logger.NewTestLogger()
	req := httptest.NewRequest(http.MethodPut, "/api/tasks/1", nil)
	req = req.WithContext(logger.WithLogger(req.Context(), log))
	w := httptest.NewRecorder()

	cause := errors.New("dial postgres://app:s3cret@db:5432/taskboard: connection refused")
	shared.RespondWithErrorAndLog(w, req, http.StatusInternalServerError, "An unexpected error occurred", cause)

	assert.NotContains(t, w.Body.String(), "s3cret")
	assert.NotContains(t, w.Body.String(), "postgres://")
	assert.NotContains(t, buf.String(), "s3cret")

	entries := buf.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0]["level"])
	assert.Equal(t, float64(http.StatusInternalServerError), entries[0]["status_code"])
}

func TestRespondWithErrorAndLogLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		opts   []shared.ResponseOption
		level  string
	}{
		{"client error", http.StatusBadRequest, nil, "DEBUG"},
		{"elevated", http.StatusUnauthorized, []shared.ResponseOption{shared.WithElevatedLogLevel()}, "WARN"},
		{"server error", http.StatusServiceUnavailable, nil, "ERROR"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			log, buf := logger.NewTestLogger()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(logger.WithLogger(req.Context(), log))

			shared.RespondWithErrorAndLog(httptest.NewRecorder(), req, tc.status, "msg", errors.New("boom"), tc.opts...)

			entries := buf.Entries()
			require.Len(t, entries, 1)
			assert.Equal(t, tc.level, entries[0]["level"])
		})
	}
}
