package store

import (
	"errors"
	"fmt"
)

// Sentinels shared by every backend. Entity-specific variants wrap the
// generic ones so callers can match at either granularity.
var (
	ErrNotFound          = errors.New("entity not found")
	ErrDuplicate         = errors.New("entity already exists")
	ErrInvalidEntity     = errors.New("invalid entity")
	ErrUnavailable       = errors.New("store unavailable")
	ErrTransactionFailed = errors.New("transaction failed")

	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)
	ErrEmailExists  = fmt.Errorf("%w: email", ErrDuplicate)
)

// IsNotFoundError reports whether err wraps ErrNotFound.
func IsNotFoundError(err error) bool { return errors.Is(err, ErrNotFound) }

// IsDuplicateError reports whether err wraps ErrDuplicate.
func IsDuplicateError(err error) bool { return errors.Is(err, ErrDuplicate) }

// StoreError records which backend call failed. Err keeps the driver cause
// and any sentinel joined to it.
type StoreError struct {
	Entity    string
	Operation string
	Message   string
	Err       error
}

// NewStoreError builds a StoreError. err may be nil.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Message: message, Err: err}
}

func (e *StoreError) Error() string {
	head := e.Operation + " operation on " + e.Entity + " failed: " + e.Message
	if e.Err == nil {
		return head
	}
	return head + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }
