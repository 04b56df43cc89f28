package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dreamtracer/dreamtracer-api/internal/platform/logger"
	"github.com/dreamtracer/dreamtracer-api/internal/redact"
)

// TxFn is a function that executes within a database transaction.
// The transaction is committed if the function returns nil and rolled back otherwise.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// txEntity names transactions in StoreError values.
const txEntity = "transaction"

// RunInTransaction executes fn within a database transaction.
//
// An error from fn is returned unchanged after a successful rollback, so
// sentinels such as ErrEmailExists stay matchable. Begin, commit and rollback
// failures are reported as a *StoreError wrapping ErrTransactionFailed. A
// panic inside fn rolls the transaction back and is re-raised.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.ErrorContext(ctx, "failed to begin transaction", slog.String("error", redact.Error(err)))
		return NewStoreError(txEntity, "begin", "could not start",
			fmt.Errorf("%w: %w", ErrTransactionFailed, err))
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.ErrorContext(ctx, "failed to roll back transaction after panic",
					slog.String("error", redact.Error(rbErr)),
					slog.String("panic", redact.String(fmt.Sprint(p))))
			} else {
				log.ErrorContext(ctx, "rolled back transaction after panic",
					slog.String("panic", redact.String(fmt.Sprint(p))))
			}
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.ErrorContext(ctx, "failed to roll back transaction",
				slog.String("rollback_error", redact.Error(rbErr)),
				slog.String("original_error", redact.Error(err)))
			return NewStoreError(txEntity, "rollback", "could not undo failed work",
				fmt.Errorf("%w: %v (original error: %w)", ErrTransactionFailed, rbErr, err))
		}
		log.DebugContext(ctx, "rolled back transaction due to error", slog.String("error", redact.Error(err)))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.ErrorContext(ctx, "failed to commit transaction", slog.String("error", redact.Error(err)))
		return NewStoreError(txEntity, "commit", "could not persist",
			fmt.Errorf("%w: %w", ErrTransactionFailed, err))
	}
	return nil
}
