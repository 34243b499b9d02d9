// Package snapshot builds the catalog-with-stock bundle that offline POS
// terminals pull on sync. The snapshot is advisory: terminals display its
// stock figures but never enforce them.
package snapshot

import (
	"context"
	"time"

	"stocktrail/internal/core/id"
	"stocktrail/internal/core/types"
	"stocktrail/internal/domain/catalog"
	"stocktrail/internal/domain/ledger"
)

// Item is one product with its aggregate stock at snapshot time.
type Item struct {
	ProductID id.ID       `json:"productId"`
	SKU       string      `json:"sku"`
	Name      string      `json:"name"`
	Category  string      `json:"category"`
	Price     types.Money `json:"price"`
	Stock     int64       `json:"stock"`
}

// Snapshot is a point-in-time view of the active catalog with stock summed
// across all locations.
type Snapshot struct {
	TakenAt time.Time `json:"takenAt"`
	Items   []Item    `json:"items"`
}

// Builder assembles snapshots from the catalog and the ledger.
type Builder struct {
	catalog catalog.Repository
	ledger  ledger.Store
}

// NewBuilder creates a snapshot builder.
func NewBuilder(catalogRepo catalog.Repository, ledgerStore ledger.Store) *Builder {
	return &Builder{catalog: catalogRepo, ledger: ledgerStore}
}

// Build returns a snapshot of all active products. Products without any
// ledger fact appear with zero stock.
func (b *Builder) Build(ctx context.Context) (*Snapshot, error) {
	products, err := b.catalog.List(ctx, catalog.ListFilter{OnlyActive: true})
	if err != nil {
		return nil, err
	}

	positions, err := b.ledger.Positions(ctx)
	if err != nil {
		return nil, err
	}
	stockByProduct := make(map[id.ID]int64, len(positions))
	for _, p := range positions {
		stockByProduct[p.ProductID] += p.Stock
	}

	snap := &Snapshot{
		TakenAt: time.Now().UTC(),
		Items:   make([]Item, 0, len(products)),
	}
	for i := range products {
		p := &products[i]
		snap.Items = append(snap.Items, Item{
			ProductID: p.ID,
			SKU:       p.SKU,
			Name:      p.Name,
			Category:  p.Category,
			Price:     p.Price,
			Stock:     stockByProduct[p.ID],
		})
	}
	return snap, nil
}
