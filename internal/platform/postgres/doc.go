// Package postgres provides PostgreSQL implementations of the store
// interfaces defined in internal/store, using the pgx driver through
// database/sql. It also owns the schema: migrations are embedded in the
// binary and applied with goose.
package postgres
