package catalog

import (
	"context"

	"stocktrail/internal/core/id"
)

// ListFilter narrows product listings.
type ListFilter struct {
	Category   string
	OnlyActive bool
	Search     string
	Limit      int
	Offset     int
}

// Repository defines catalog persistence operations.
type Repository interface {
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)

	// GetByIDs fetches several products at once, keyed by id. Missing ids
	// are simply absent from the result.
	GetByIDs(ctx context.Context, productIDs []id.ID) (map[id.ID]*Product, error)

	List(ctx context.Context, filter ListFilter) ([]Product, error)
}
