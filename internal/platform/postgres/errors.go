package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/phrazzld/taskboard-api/internal/store"
)

const codeUniqueViolation = "23505"

// integrityCodes are constraint failures that mean the row itself was bad.
var integrityCodes = map[string]string{
	"23503": "foreign key",
	"23514": "check constraint",
	"23502": "not null",
}

// MapError translates driver errors into store sentinels. The original error
// stays in the chain for logging. Errors with no mapping are returned as is.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	if pgErr.Code == codeUniqueViolation {
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	if kind, ok := integrityCodes[pgErr.Code]; ok {
		target := pgErr.ConstraintName
		if target == "" {
			target = pgErr.ColumnName
		}
		return fmt.Errorf("%w: %s violation on %s: %v", store.ErrInvalidEntity, kind, target, err)
	}
	return err
}

// IsUniqueViolation reports whether err carries SQLSTATE 23505.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return false
}

// CheckRowsAffected returns notFound when an UPDATE or DELETE matched nothing.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return errors.New("no result to inspect")
	}
	n, err := result.RowsAffected()
	switch {
	case err != nil:
		return fmt.Errorf("rows affected: %w", err)
	case n == 0:
		return notFound
	default:
		return nil
	}
}

// wrapFailure keeps not-found and duplicate sentinels visible to callers and
// folds everything else into a StoreError.
func wrapFailure(entity, op string, err error) error {
	mapped := MapError(err)
	if store.IsNotFoundError(mapped) || store.IsDuplicateError(mapped) {
		return mapped
	}
	return store.NewStoreError(entity, op, "database operation failed", mapped)
}
