// Package catalog provides the product catalog consumed by the conflict
// report and the terminal snapshot. Catalog rows are reference data; stock
// is never stored here, it is always derived from the ledger.
package catalog

import (
	"context"
	"strings"
	"time"

	"stocktrail/internal/core/apperror"
	"stocktrail/internal/core/id"
	"stocktrail/internal/core/types"
)

// Product is a sellable catalog item.
type Product struct {
	ID       id.ID       `db:"id" json:"id"`
	SKU      string      `db:"sku" json:"sku"`
	Name     string      `db:"name" json:"name"`
	Category string      `db:"category" json:"category"`
	Price    types.Money `db:"price" json:"price"`
	Active   bool        `db:"active" json:"active"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewProduct creates a product with a fresh id.
func NewProduct(sku, name, category string, price types.Money) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:        id.New(),
		SKU:       sku,
		Name:      name,
		Category:  category,
		Price:     price,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks catalog invariants.
func (p *Product) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.SKU) == "" {
		return apperror.NewValidation("sku is required").WithDetail("field", "sku")
	}
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if p.Price.IsNegative() {
		return apperror.NewValidation("price must not be negative").WithDetail("field", "price")
	}
	return nil
}
