package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

func TestServiceErrorFormatting(t *testing.T) {
	t.Parallel()

	withCause := &ServiceError{Service: "task", Op: "create", Err: errors.New("pool exhausted")}
	assert.Equal(t, "task service create operation failed: pool exhausted", withCause.Error())

	bare := &ServiceError{Service: "dashboard", Op: "global"}
	assert.Equal(t, "dashboard service global operation failed", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestServiceErrorUnwrapsThroughLayers(t *testing.T) {
	t.Parallel()

	cause := store.NewStoreError("task", "count_by", "aggregate failed", store.ErrUnavailable)
	err := fmt.Errorf("dashboard: %w", &ServiceError{Service: "dashboard", Op: "member", Err: cause})

	var svcErr *ServiceError
	if assert.ErrorAs(t, err, &svcErr) {
		assert.Equal(t, "member", svcErr.Op)
	}
	var storeErr *store.StoreError
	assert.ErrorAs(t, err, &storeErr)
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

func TestNewServiceError(t *testing.T) {
	t.Parallel()

	validation := domain.NewValidationError("assignedTo", "must be a non-empty array", domain.ErrNoAssignees)
	storeFailure := store.NewStoreError("task", "count", "failed to count tasks", errors.New("timeout"))

	tests := []struct {
		name   string
		err    error
		expect error
		wraps  bool
	}{
		{name: "nil", err: nil, expect: nil},
		{name: "validation passes through", err: validation, expect: validation},
		{name: "forbidden passes through", err: domain.ErrForbidden, expect: ErrForbidden},
		{name: "store task not found", err: store.ErrTaskNotFound, expect: ErrTaskNotFound},
		{name: "store user not found", err: fmt.Errorf("x: %w", store.ErrUserNotFound), expect: ErrUserNotFound},
		{name: "store email exists", err: store.ErrEmailExists, expect: ErrEmailExists},
		{name: "invalid credentials", err: ErrInvalidCredentials, expect: ErrInvalidCredentials},
		{name: "store failure wrapped", err: storeFailure, wraps: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NewServiceError("task", "op", tt.err)
			if tt.wraps {
				var serviceErr *ServiceError
				assert.True(t, errors.As(got, &serviceErr))
				assert.ErrorIs(t, got, tt.err)
				return
			}
			assert.Equal(t, tt.expect, got)
		})
	}
}
