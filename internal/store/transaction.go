package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// TxFn is the body of a transaction.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// TxBeginner starts transactions. *sql.DB satisfies it.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// RunInTransaction commits when fn succeeds and rolls back when it fails or
// panics. Errors from fn come back unwrapped; only begin and commit failures
// are tagged with ErrTransactionFailed. A panic is re-raised after rollback.
func RunInTransaction(ctx context.Context, db TxBeginner, fn TxFn) error {
	log := logger.FromContext(ctx).With(slog.String("component", "transaction"))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("begin failed", slog.String("error", err.Error()))
		return fmt.Errorf("%w: begin: %w", ErrTransactionFailed, err)
	}

	settled := false
	defer func() {
		if settled {
			return
		}
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("rollback after panic failed", slog.String("error", rbErr.Error()), slog.Any("panic", p))
			}
			panic(p)
		}
	}()

	if fnErr := fn(ctx, tx); fnErr != nil {
		settled = true
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("rollback failed",
				slog.String("rollback_error", rbErr.Error()),
				slog.String("error", fnErr.Error()))
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, fnErr)
		}
		log.Debug("transaction rolled back", slog.String("error", fnErr.Error()))
		return fnErr
	}

	settled = true
	if err := tx.Commit(); err != nil {
		log.Error("commit failed", slog.String("error", err.Error()))
		return fmt.Errorf("%w: commit: %w", ErrTransactionFailed, err)
	}
	return nil
}
