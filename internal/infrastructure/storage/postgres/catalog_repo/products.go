// Package catalog_repo provides the PostgreSQL implementation of the
// product catalog repository.
package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"stocktrail/internal/core/apperror"
	"stocktrail/internal/core/id"
	"stocktrail/internal/domain/catalog"
	"stocktrail/internal/infrastructure/storage/postgres"
)

const productsTable = "products"

var productColumns = postgres.ExtractDBColumns[catalog.Product]()

// ProductRepo implements catalog.Repository.
type ProductRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ catalog.Repository = (*ProductRepo)(nil)

// Create inserts a product. SKU is unique.
func (r *ProductRepo) Create(ctx context.Context, product *catalog.Product) error {
	q := r.builder.Insert(productsTable).
		SetMap(postgres.StructToMap(product))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("product", "sku", product.SKU).WithCause(err)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update modifies an existing product.
func (r *ProductRepo) Update(ctx context.Context, product *catalog.Product) error {
	data := postgres.StructToMap(product)
	delete(data, "id")
	delete(data, "created_at")
	delete(data, "updated_at")

	q := r.builder.Update(productsTable).
		SetMap(data).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": product.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", product.ID.String())
	}
	return nil
}

// GetByID fetches a product.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*catalog.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"id": productID}, productID.String())
}

// GetBySKU fetches a product by its SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"sku": sku}, sku)
}

func (r *ProductRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*catalog.Product, error) {
	q := r.builder.Select(productColumns...).From(productsTable).Where(where).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var product catalog.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &product, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", key)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &product, nil
}

// GetByIDs fetches several products keyed by id.
func (r *ProductRepo) GetByIDs(ctx context.Context, productIDs []id.ID) (map[id.ID]*catalog.Product, error) {
	if len(productIDs) == 0 {
		return map[id.ID]*catalog.Product{}, nil
	}

	q := r.builder.Select(productColumns...).From(productsTable).
		Where(squirrel.Eq{"id": productIDs})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []catalog.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &products, sql, args...); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}

	result := make(map[id.ID]*catalog.Product, len(products))
	for i := range products {
		result[products[i].ID] = &products[i]
	}
	return result, nil
}

// List returns products matching the filter, ordered by SKU.
func (r *ProductRepo) List(ctx context.Context, filter catalog.ListFilter) ([]catalog.Product, error) {
	q := r.builder.Select(productColumns...).From(productsTable)

	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.OnlyActive {
		q = q.Where(squirrel.Eq{"active": true})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"sku": pattern},
		})
	}

	q = q.OrderBy("sku")
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

	var products []catalog.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &products, sql, args...); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	return products, nil
}
