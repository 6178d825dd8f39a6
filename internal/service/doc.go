// Package service contains the application use cases: task lifecycle,
// dashboard aggregation and account management. It applies the
// authorization policy from domain/policy to every task operation and
// orchestrates the store interfaces defined in internal/store.
//
// Services receive their stores through constructor injection and never
// depend on a concrete backend. Store errors are classified by
// NewServiceError: not-found and duplicate conditions become the sentinels
// in this package, validation and authorization errors pass through
// unchanged, and everything else is wrapped in a ServiceError.
package service
