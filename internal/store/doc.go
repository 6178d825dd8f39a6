// Package store defines the persistence interfaces for tasks and users.
// Implementations live under internal/platform (postgres, mongo, memory)
// and must translate backend failures into the errors declared here.
package store
