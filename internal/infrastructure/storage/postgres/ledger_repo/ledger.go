// Package ledger_repo provides the PostgreSQL implementation of the stock
// ledger store. The stock_ledger table is append-only: this package issues
// INSERT and SELECT, never UPDATE or DELETE.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stocktrail/internal/core/id"
	"stocktrail/internal/domain/ledger"
	"stocktrail/internal/infrastructure/storage/postgres"
)

const ledgerTable = "stock_ledger"

var ledgerColumns = postgres.ExtractDBColumns[ledger.Entry]()

// LedgerRepo implements ledger.Store on PostgreSQL.
type LedgerRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new ledger repository.
func NewLedgerRepo(txManager *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ ledger.Store = (*LedgerRepo)(nil)

// Append inserts a single fact. The database clock stamps created_at so all
// facts order on one clock regardless of which terminal produced them.
func (r *LedgerRepo) Append(ctx context.Context, entry ledger.Entry) (id.ID, error) {
	if err := entry.Validate(); err != nil {
		return id.Nil(), err
	}
	if id.IsNil(entry.TransactionID) {
		entry.TransactionID = id.New()
	}

	q := r.builder.Insert(ledgerTable).
		Columns("transaction_id", "product_id", "variant_id", "location_id",
			"delta", "reason", "reference_doc").
		Values(entry.TransactionID, entry.ProductID, entry.VariantID, entry.LocationID,
			entry.Delta, entry.Reason, entry.ReferenceDoc)

	sql, args, err := q.ToSql()
	if err != nil {
		return id.Nil(), fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return id.Nil(), fmt.Errorf("insert ledger fact: %w", err)
	}
	return entry.TransactionID, nil
}

// AppendBatch inserts several facts. Inside a transaction it uses the COPY
// protocol; outside it falls back to a multi-row INSERT.
func (r *LedgerRepo) AppendBatch(ctx context.Context, entries []ledger.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return err
		}
		if id.IsNil(entries[i].TransactionID) {
			entries[i].TransactionID = id.New()
		}
	}

	columns := []string{"transaction_id", "product_id", "variant_id", "location_id",
		"delta", "reason", "reference_doc", "created_at"}

	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []any{
				e.TransactionID, e.ProductID, e.VariantID, e.LocationID,
				e.Delta, e.Reason, e.ReferenceDoc, e.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, ledgerTable, columns, rows); err != nil {
			return fmt.Errorf("copy ledger facts: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(ledgerTable).Columns(columns...)
	for _, e := range entries {
		q = q.Values(e.TransactionID, e.ProductID, e.VariantID, e.LocationID,
			e.Delta, e.Reason, e.ReferenceDoc, e.CreatedAt)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert ledger facts: %w", err)
	}
	return nil
}

// Read returns matching facts ordered by created_at.
func (r *LedgerRepo) Read(ctx context.Context, filter ledger.Filter) ([]ledger.Entry, error) {
	q := r.applyFilter(r.builder.Select(ledgerColumns...).From(ledgerTable), filter).
		OrderBy("created_at", "transaction_id")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []ledger.Entry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select ledger facts: %w", err)
	}
	return entries, nil
}

// Sum returns the signed total of matching deltas. A position with no facts
// sums to zero.
func (r *LedgerRepo) Sum(ctx context.Context, filter ledger.Filter) (int64, error) {
	q := r.applyFilter(r.builder.Select("COALESCE(SUM(delta), 0)").From(ledgerTable), filter)

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var total int64
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum ledger facts: %w", err)
	}
	return total, nil
}

// Positions returns per-(product, location) aggregates for every position
// with at least one fact.
func (r *LedgerRepo) Positions(ctx context.Context) ([]ledger.Position, error) {
	q := r.builder.Select("product_id", "location_id", "SUM(delta) AS stock").
		From(ledgerTable).
		GroupBy("product_id", "location_id").
		OrderBy("product_id", "location_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var positions []ledger.Position
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &positions, sql, args...); err != nil {
		return nil, fmt.Errorf("select positions: %w", err)
	}
	return positions, nil
}

func (r *LedgerRepo) applyFilter(q squirrel.SelectBuilder, filter ledger.Filter) squirrel.SelectBuilder {
	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.VariantID != nil {
		q = q.Where(squirrel.Eq{"variant_id": *filter.VariantID})
	}
	if filter.LocationID != nil {
		q = q.Where(squirrel.Eq{"location_id": *filter.LocationID})
	}
	if len(filter.Reasons) > 0 {
		q = q.Where(squirrel.Eq{"reason": filter.Reasons})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.To})
	}
	return q
}
