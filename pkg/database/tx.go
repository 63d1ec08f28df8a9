package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
	pgErrCodeUniqueViolation      = "23505"

	maxTxRetries = 3
)

// WithTx runs fn inside a read-committed transaction and commits it. The
// whole attempt is retried on serialization failures and deadlocks. fn must
// not perform external I/O: it may be executed more than once.
func WithTx(ctx context.Context, db PgxIface, log *zap.Logger, fn func(tx pgx.Tx) error) error {
	base := 50 * time.Millisecond

	for attempt := 0; ; attempt++ {
		err := runOnce(ctx, db, log, fn)
		if err == nil {
			return nil
		}

		if !IsRetryable(err) || attempt >= maxTxRetries {
			return err
		}

		wait := time.Duration(1<<attempt) * base
		log.Warn("Retrying transaction",
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func runOnce(ctx context.Context, db PgxIface, log *zap.Logger, fn func(tx pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}

	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Warn("Failed to rollback transaction", zap.Error(rbErr))
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation
}
