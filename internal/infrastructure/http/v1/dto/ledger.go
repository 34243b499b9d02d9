package dto

import (
	"time"

	"stocktrail/internal/core/apperror"
	"stocktrail/internal/core/id"
	"stocktrail/internal/domain/ledger"
)

// AppendFactRequest records a manual stock movement. Sales never come
// through here; they are written by the order pipeline.
type AppendFactRequest struct {
	ProductID    string `json:"productId" binding:"required,uuid"`
	VariantID    string `json:"variantId" binding:"omitempty,uuid"`
	LocationID   string `json:"locationId" binding:"required,uuid"`
	Delta        int64  `json:"delta" binding:"required"`
	Reason       string `json:"reason" binding:"required,oneof=RESTOCK INITIAL_STOCK ADJUST DEBUG_ADJUST"`
	ReferenceDoc string `json:"referenceDoc" binding:"omitempty,max=255"`
}

// ToModel converts the request into a ledger entry.
func (r *AppendFactRequest) ToModel() (*ledger.Entry, error) {
	productID, err := id.Parse(r.ProductID)
	if err != nil {
		return nil, apperror.NewValidation("invalid product id").WithDetail("field", "productId")
	}
	locationID, err := id.Parse(r.LocationID)
	if err != nil {
		return nil, apperror.NewValidation("invalid location id").WithDetail("field", "locationId")
	}
	reason, err := ledger.ParseReasonCode(r.Reason)
	if err != nil {
		return nil, err
	}

	var variantID *id.ID
	if r.VariantID != "" {
		v, err := id.Parse(r.VariantID)
		if err != nil {
			return nil, apperror.NewValidation("invalid variant id").WithDetail("field", "variantId")
		}
		variantID = &v
	}

	entry := ledger.NewEntry(productID, variantID, locationID, r.Delta, reason, r.ReferenceDoc)
	return &entry, nil
}

// StockQuery narrows a stock read.
type StockQuery struct {
	VariantID  string `form:"variantId" binding:"omitempty,uuid"`
	LocationID string `form:"locationId" binding:"omitempty,uuid"`
}

// StockResponse is the derived quantity on hand.
type StockResponse struct {
	ProductID  string `json:"productId"`
	VariantID  string `json:"variantId,omitempty"`
	LocationID string `json:"locationId,omitempty"`
	Stock      int64  `json:"stock"`
}

// HistoryQuery filters the audit trail of a product.
type HistoryQuery struct {
	PaginationRequest
	VariantID  string     `form:"variantId" binding:"omitempty,uuid"`
	LocationID string     `form:"locationId" binding:"omitempty,uuid"`
	Reason     string     `form:"reason" binding:"omitempty,oneof=SALE_POS SALE_ONLINE RESTOCK INITIAL_STOCK ADJUST DEBUG_ADJUST"`
	From       *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To         *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// FactResponse is one ledger fact.
type FactResponse struct {
	TransactionID string    `json:"transactionId"`
	ProductID     string    `json:"productId"`
	VariantID     string    `json:"variantId,omitempty"`
	LocationID    string    `json:"locationId"`
	Delta         int64     `json:"delta"`
	Reason        string    `json:"reason"`
	ReferenceDoc  string    `json:"referenceDoc,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// FromEntry converts a ledger entry into a response.
func FromEntry(e *ledger.Entry) FactResponse {
	resp := FactResponse{
		TransactionID: e.TransactionID.String(),
		ProductID:     e.ProductID.String(),
		LocationID:    e.LocationID.String(),
		Delta:         e.Delta,
		Reason:        string(e.Reason),
		ReferenceDoc:  e.ReferenceDoc,
		CreatedAt:     e.CreatedAt,
	}
	if e.VariantID != nil {
		resp.VariantID = e.VariantID.String()
	}
	return resp
}

// PositionResponse is one (product, location) aggregate.
type PositionResponse struct {
	ProductID  string `json:"productId"`
	LocationID string `json:"locationId"`
	Stock      int64  `json:"stock"`
}
