// Package service implements the task lifecycle, dashboard aggregation and
// user account operations on top of the store interfaces.
package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// The API layer maps them to HTTP status codes.
var (
	// ErrTaskNotFound indicates that the task does not exist. Maps to 404.
	ErrTaskNotFound = errors.New("task not found")

	// ErrUserNotFound indicates that the user does not exist. Maps to 404.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists indicates the email is registered to another account. Maps to 409.
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials indicates an unknown email or a wrong password. Maps to 401.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrForbidden is the domain authorization failure, re-exported for callers. Maps to 403.
	ErrForbidden = domain.ErrForbidden
)

// ServiceError wraps unexpected failures with the service and operation
// that produced them.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
	}
	return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Op, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError classifies err for callers. Expected conditions come back
// as sentinels (or the original validation error); anything else is wrapped
// in a *ServiceError. A nil err returns nil.
func NewServiceError(service, op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, ErrTaskNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrEmailExists),
		errors.Is(err, ErrInvalidCredentials):
		return err
	case errors.Is(err, store.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, store.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, store.ErrEmailExists):
		return ErrEmailExists
	default:
		return &ServiceError{Service: service, Op: op, Err: err}
	}
}
