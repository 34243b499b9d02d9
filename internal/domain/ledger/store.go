package ledger

import (
	"context"
	"time"

	"stocktrail/internal/core/id"
)

// Filter selects ledger facts for reads and sums. All fields are optional;
// an empty filter matches every fact.
type Filter struct {
	ProductID  *id.ID
	VariantID  *id.ID
	LocationID *id.ID
	Reasons    []ReasonCode
	From       *time.Time
	To         *time.Time

	// Limit and Offset make Read restartable for audit replay.
	Limit  int
	Offset int
}

// Position is a grouped aggregate for one (product, location) pair.
// Variants collapse into their product for conflict detection, matching
// how oversell is reported to administrators.
type Position struct {
	ProductID  id.ID `db:"product_id" json:"productId"`
	LocationID id.ID `db:"location_id" json:"locationId"`
	Stock      int64 `db:"stock" json:"stock"`
}

// Store is the append-only fact log.
//
// Append never fails on business-rule grounds: writing a fact that makes an
// aggregate negative is permitted, because blocking it would require a
// read-before-write lock per position and defeat concurrent channels. Only
// constraint violations (zero delta, nil keys, unknown reason) are rejected.
type Store interface {
	// Append persists a single fact and returns its transaction id.
	Append(ctx context.Context, entry Entry) (id.ID, error)

	// AppendBatch persists several facts. Used by the order commit
	// pipeline so one order's facts land in a single round-trip; the
	// caller is responsible for wrapping it in a transaction.
	AppendBatch(ctx context.Context, entries []Entry) error

	// Read returns facts matching the filter, ordered by created_at.
	Read(ctx context.Context, filter Filter) ([]Entry, error)

	// Sum returns the signed total of deltas matching the filter.
	Sum(ctx context.Context, filter Filter) (int64, error)

	// Positions returns the grouped sum for every (product, location)
	// pair that has at least one fact.
	Positions(ctx context.Context) ([]Position, error)
}
