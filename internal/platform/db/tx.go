package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

// DBTxKey is the context key under which an open transaction is stored.
const DBTxKey contextKey = "db_tx"

// TxFromContext returns the transaction stored in the context, or nil if none
// is present.
func TxFromContext(ctx context.Context) pgx.Tx {
	if tx, ok := ctx.Value(DBTxKey).(pgx.Tx); ok {
		return tx
	}
	return nil
}

// WithTx returns a copy of ctx carrying the given transaction. Repositories
// pick it up via TxFromContext so multi-statement operations share one
// transaction.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, DBTxKey, tx)
}

// RunInTx begins a transaction on the pool, stores it in the context, and
// invokes fn. The transaction is committed if fn returns nil and rolled back
// otherwise. If the context already carries a transaction, fn runs inside it
// and commit/rollback is left to the outer caller.
func RunInTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
