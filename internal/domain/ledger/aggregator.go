package ledger

import (
	"context"

	"stocktrail/internal/core/id"
)

// Aggregator derives quantity on hand by summing ledger facts. There is no
// materialized balance: every read recomputes from the committed log, so the
// result is always consistent with the latest appends and safe under
// concurrent writers (sums are commutative).
type Aggregator struct {
	store Store
}

// NewAggregator creates an aggregator over the given store.
func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// CurrentStock returns quantity on hand for a product. Variant and location
// are optional; a nil location sums across all locations.
func (a *Aggregator) CurrentStock(ctx context.Context, productID id.ID, variantID, locationID *id.ID) (int64, error) {
	return a.store.Sum(ctx, Filter{
		ProductID:  &productID,
		VariantID:  variantID,
		LocationID: locationID,
	})
}

// History returns the audit trail for a product, newest-last, restartable
// via the filter's limit and offset.
func (a *Aggregator) History(ctx context.Context, filter Filter) ([]Entry, error) {
	return a.store.Read(ctx, filter)
}

// Positions returns the grouped aggregate for every position with at least
// one fact. Used by the conflict detector and the snapshot builder.
func (a *Aggregator) Positions(ctx context.Context) ([]Position, error) {
	return a.store.Positions(ctx)
}
