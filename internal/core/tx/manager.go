// Package tx defines the transaction management contract used by domain
// services. The order commit pipeline depends on this interface so that an
// order header, its items and their ledger facts commit or roll back as one
// unit; the concrete implementation lives in infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs functions inside a database transaction.
type Manager interface {
	// RunInTransaction executes fn within a transaction. If fn returns an
	// error the transaction is rolled back, otherwise it is committed.
	// Nested calls reuse the transaction already present in ctx.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transactions, used by the
// aggregation read path where a consistent multi-query view is needed.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Nop is a Manager that executes fn directly without a transaction.
// Used by tests and by the in-memory ledger store.
type Nop struct{}

func (Nop) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (Nop) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
