package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	storeFailure := store.NewStoreError("task", "update", "query failed",
		errors.New("dial postgres://app:s3cret@db:5432/taskboard"))

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"validation", domain.NewValidationError("title", "is required", domain.ErrEmptyTaskTitle),
			http.StatusBadRequest, "Invalid title: is required"},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest, "Invalid request"},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized, "Token expired"},
		{"forbidden", fmt.Errorf("update: %w", domain.ErrForbidden), http.StatusForbidden, "Access denied"},
		{"task not found", service.ErrTaskNotFound, http.StatusNotFound, "Task not found"},
		{"store user not found", store.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{"email exists", service.ErrEmailExists, http.StatusConflict, "User already exists"},
		{"store failure", &service.ServiceError{Service: "task", Op: "update", Err: storeFailure},
			http.StatusInternalServerError, "An unexpected error occurred"},
		{"circuit open", errors.Join(store.ErrUnavailable, errors.New("circuit breaker is open")),
			http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.wantStatus, MapErrorToStatusCode(tc.err))
			msg := GetSafeErrorMessage(tc.err)
			assert.Equal(t, tc.wantMessage, msg)
			assert.NotContains(t, msg, "s3cret")
		})
	}

	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}
