// Package testutils provides fixtures and shared conformance suites for
// tests: task and user builders with functional options, and the store
// suites every store.TaskStore and store.UserStore implementation runs.
package testutils
