package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNestedTransaction is returned when RunInTx is called from inside
// an already running RunInTx. Nesting is a programming error, not a
// supported composition mechanism.
var ErrNestedTransaction = errors.New("db: nested transaction")

type txKey struct{}

// RunInTx executes fn inside a single database transaction. All writes
// made by fn commit together or roll back together; any error from fn
// aborts the transaction and is returned unchanged. The context passed
// to fn is marked so a nested RunInTx fails fast.
func RunInTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context, tx pgx.Tx) error) error {
	if ctx.Value(txKey{}) != nil {
		return ErrNestedTransaction
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(context.WithValue(ctx, txKey{}, struct{}{}), tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// IsTransient reports whether err is a store-level conflict worth one
// retry: serialization failures, deadlocks, lock timeouts. Validation
// and not-found errors are never transient.
func IsTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}
