// Package breaker wraps the store interfaces in circuit breakers so a
// failing database is shed quickly instead of tying up every request.
package breaker

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sony/gobreaker"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// NewCircuitBreaker builds a breaker named name from cfg. Only collaborator
// failures count against it; see IsSuccessful.
func NewCircuitBreaker(name string, cfg config.BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(slog.String("component", "breaker"), slog.String("breaker", name))
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 1
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval(),
		Timeout:     cfg.Timeout(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
		IsSuccessful: IsSuccessful,
	})
}

// IsSuccessful reports whether err leaves the breaker's health untouched.
// Missing rows, duplicates, invalid entities and errors returned by a
// mutate callback are caller outcomes, not store failures. A cancelled
// context means the caller went away, which says nothing about the store.
func IsSuccessful(err error) bool {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return true
	case errors.Is(err, store.ErrUnavailable),
		errors.Is(err, store.ErrTransactionFailed),
		errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, store.ErrInvalidEntity):
		return true
	}
	var storeErr *store.StoreError
	return !errors.As(err, &storeErr)
}

// execute runs fn through cb and converts breaker rejections into store
// errors wrapping store.ErrUnavailable.
func execute[T any](cb *gobreaker.CircuitBreaker, entity, op string, fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, store.NewStoreError(entity, op, "circuit open", errors.Join(store.ErrUnavailable, err))
		}
		return zero, err
	}
	v, _ := res.(T)
	return v, nil
}

// none adapts an error-only call to execute.
func none(fn func() error) func() (struct{}, error) {
	return func() (struct{}, error) { return struct{}{}, fn() }
}
