// Package order_repo provides the PostgreSQL implementation of the sales
// order repository.
package order_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"stocktrail/internal/core/apperror"
	"stocktrail/internal/core/id"
	"stocktrail/internal/domain/orders"
	"stocktrail/internal/infrastructure/storage/postgres"
)

const (
	ordersTable     = "sales_orders"
	orderItemsTable = "sales_order_items"
)

var (
	orderColumns = postgres.ExtractDBColumns[orders.Order]()
	itemColumns  = postgres.ExtractDBColumns[orders.OrderItem]()
)

// OrderRepo implements orders.Repository.
type OrderRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewOrderRepo creates a new order repository.
func NewOrderRepo(txManager *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ orders.Repository = (*OrderRepo)(nil)

// Create inserts an order header. A unique violation on client_order_id
// surfaces as a duplicate error, which is how concurrent replays of the same
// offline sale lose the race cleanly.
func (r *OrderRepo) Create(ctx context.Context, order *orders.Order) error {
	q := r.builder.Insert(ordersTable).
		SetMap(postgres.StructToMap(order))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			value := order.Number
			if order.ClientOrderID != nil {
				value = order.ClientOrderID.String()
			}
			return apperror.NewDuplicate("order", "client_order_id", value).WithCause(err)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// SaveItems inserts order lines. Uses COPY inside a transaction.
func (r *OrderRepo) SaveItems(ctx context.Context, orderID id.ID, items []orders.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(items))
		for _, item := range items {
			rows = append(rows, []any{
				item.LineID, orderID, item.LineNo,
				item.ProductID, item.VariantID,
				item.Quantity, item.UnitPrice, item.Amount,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, orderItemsTable, itemColumns, rows); err != nil {
			return fmt.Errorf("copy order items: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(orderItemsTable).Columns(itemColumns...)
	for _, item := range items {
		q = q.Values(item.LineID, orderID, item.LineNo,
			item.ProductID, item.VariantID,
			item.Quantity, item.UnitPrice, item.Amount)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}
	return nil
}

// GetByID fetches an order header.
func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	return r.getOne(ctx, squirrel.Eq{"id": orderID}, orderID.String())
}

// GetByNumber fetches an order header by its document number.
func (r *OrderRepo) GetByNumber(ctx context.Context, number string) (*orders.Order, error) {
	return r.getOne(ctx, squirrel.Eq{"number": number}, number)
}

// GetByClientOrderID fetches the order committed for a terminal-generated
// order id, if any.
func (r *OrderRepo) GetByClientOrderID(ctx context.Context, clientOrderID id.ID) (*orders.Order, error) {
	return r.getOne(ctx, squirrel.Eq{"client_order_id": clientOrderID}, clientOrderID.String())
}

func (r *OrderRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*orders.Order, error) {
	q := r.builder.Select(orderColumns...).From(ordersTable).Where(where).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var order orders.Order
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &order, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", key)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &order, nil
}

// GetItems fetches order lines ordered by line number.
func (r *OrderRepo) GetItems(ctx context.Context, orderID id.ID) ([]orders.OrderItem, error) {
	q := r.builder.Select(itemColumns...).From(orderItemsTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []orders.OrderItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	return items, nil
}
