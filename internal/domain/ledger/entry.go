// Package ledger provides the append-only inventory ledger: the single
// source of truth for every stock movement. Facts are never updated or
// deleted; corrections are new facts with the ADJUST reason code, so the
// current quantity on hand is always reproducible by replay.
package ledger

import (
	"time"

	"stocktrail/internal/core/apperror"
	"stocktrail/internal/core/id"
)

// ReasonCode classifies why stock changed. The set is closed: unknown codes
// are rejected at the boundary instead of being stored as free text.
type ReasonCode string

const (
	// ReasonSalePOS is a sale committed by an in-store terminal.
	ReasonSalePOS ReasonCode = "SALE_POS"
	// ReasonSaleOnline is a sale committed by the web checkout.
	ReasonSaleOnline ReasonCode = "SALE_ONLINE"
	// ReasonRestock is incoming stock from a supplier delivery.
	ReasonRestock ReasonCode = "RESTOCK"
	// ReasonInitialStock seeds the opening balance for a position.
	ReasonInitialStock ReasonCode = "INITIAL_STOCK"
	// ReasonAdjust is a corrective fact written by the conflict resolver.
	ReasonAdjust ReasonCode = "ADJUST"
	// ReasonDebugAdjust is reserved for operator-initiated test entries.
	ReasonDebugAdjust ReasonCode = "DEBUG_ADJUST"
)

var reasonCodes = map[ReasonCode]struct{}{
	ReasonSalePOS:      {},
	ReasonSaleOnline:   {},
	ReasonRestock:      {},
	ReasonInitialStock: {},
	ReasonAdjust:       {},
	ReasonDebugAdjust:  {},
}

// ParseReasonCode validates a wire-level reason code string.
func ParseReasonCode(s string) (ReasonCode, error) {
	code := ReasonCode(s)
	if _, ok := reasonCodes[code]; !ok {
		return "", apperror.NewValidation("unknown reason code").WithDetail("reason_code", s)
	}
	return code, nil
}

// Valid reports whether the reason code belongs to the closed set.
func (r ReasonCode) Valid() bool {
	_, ok := reasonCodes[r]
	return ok
}

// Entry is an immutable ledger fact: one signed quantity change for one
// (product, variant, location) position.
type Entry struct {
	// TransactionID is assigned at write time and never reused.
	TransactionID id.ID `db:"transaction_id" json:"transactionId"`

	ProductID id.ID `db:"product_id" json:"productId"`

	// VariantID is nil when the product has no variant dimension.
	VariantID *id.ID `db:"variant_id" json:"variantId,omitempty"`

	LocationID id.ID `db:"location_id" json:"locationId"`

	// Delta is the signed quantity change. Positive adds stock, negative
	// removes it. Zero is disallowed.
	Delta int64 `db:"delta" json:"delta"`

	Reason ReasonCode `db:"reason" json:"reasonCode"`

	// ReferenceDoc is a human-auditable back-reference to the order or
	// document that caused the fact. Not a foreign key.
	ReferenceDoc string `db:"reference_doc" json:"referenceDoc"`

	// CreatedAt is used for ordering and audit only, never for deriving
	// quantity.
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewEntry creates a ledger fact with a fresh transaction id.
func NewEntry(productID id.ID, variantID *id.ID, locationID id.ID, delta int64, reason ReasonCode, referenceDoc string) Entry {
	return Entry{
		TransactionID: id.New(),
		ProductID:     productID,
		VariantID:     variantID,
		LocationID:    locationID,
		Delta:         delta,
		Reason:        reason,
		ReferenceDoc:  referenceDoc,
		CreatedAt:     time.Now().UTC(),
	}
}

// Validate checks constraint-level invariants. Business rules (such as the
// resulting aggregate staying non-negative) are deliberately NOT checked
// here: conflicts are detected after the fact, not blocked at write time.
func (e *Entry) Validate() error {
	if id.IsNil(e.ProductID) {
		return apperror.NewValidation("product_id is required")
	}
	if id.IsNil(e.LocationID) {
		return apperror.NewValidation("location_id is required")
	}
	if e.VariantID != nil && id.IsNil(*e.VariantID) {
		return apperror.NewValidation("variant_id must be omitted or non-nil")
	}
	if e.Delta == 0 {
		return apperror.NewValidation("delta must be non-zero")
	}
	if !e.Reason.Valid() {
		return apperror.NewValidation("unknown reason code").WithDetail("reason_code", string(e.Reason))
	}
	return nil
}
