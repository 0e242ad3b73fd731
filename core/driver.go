// Package core provides the fundamental building blocks of the golem ORM.
// It defines abstractions for queries, models, schema handling, and drivers.
package core

import (
	"context"
	"errors"
)

// ErrUnsupportedQuery is returned by drivers for query shapes they cannot
// render, such as several primary entities on a document store.
var ErrUnsupportedQuery = errors.New("unsupported query")

// Transaction defines the contract for database transaction management.
//
// Implementations must provide atomic commit and rollback semantics.
type Transaction interface {
	// Commit finalizes the transaction and makes all changes permanent.
	Commit(ctx context.Context) error
	// Rollback reverts the transaction, discarding all changes.
	Rollback(ctx context.Context) error
}

// Driver defines the contract for database backends supported by the ORM.
//
// Each driver (e.g., PostgresDriver, MongoDriver) renders a Query, joins
// included, into its own query language and executes it.
type Driver interface {
	// Connect establishes a new connection or validates connectivity.
	Connect(ctx context.Context) error
	// Ping checks if the underlying database is reachable.
	Ping(ctx context.Context) error
	// Close terminates the connection and releases resources.
	Close(ctx context.Context) error

	// Transaction starts a new database transaction.
	Transaction(ctx context.Context) (Transaction, error)

	// Find returns the rows of the first entity of the query, keyed by column name.
	Find(ctx context.Context, query *Query) ([]map[string]any, error)
	// Count returns the number of rows matching the query, ignoring pagination.
	Count(ctx context.Context, query *Query) (int64, error)
}
