package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/leandroluk/golemfilter/core"
)

// querier is the read surface shared by the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// postgresTransaction is a read-only pgx.Tx. Reads issued with a context
// carrying it run inside the same snapshot.
type postgresTransaction struct {
	transaction pgx.Tx
}

func (transaction *postgresTransaction) Commit(ctx context.Context) error {
	return transaction.transaction.Commit(ctx)
}

// Rollback aborts the transaction. The transaction is closed even when an
// error is returned.
func (transaction *postgresTransaction) Rollback(ctx context.Context) error {
	return transaction.transaction.Rollback(ctx)
}

// querierFrom returns the transaction carried by ctx, or fallback when ctx
// holds none or one opened by another driver.
func querierFrom(ctx context.Context, fallback querier) querier {
	if pgTx, ok := core.TransactionFrom(ctx).(*postgresTransaction); ok {
		return pgTx.transaction
	}
	return fallback
}
