package dto

import (
	"stocktrail/internal/core/apperror"
	"stocktrail/internal/core/id"
	"stocktrail/internal/domain/conflicts"
)

// ConflictResponse is one oversold position.
type ConflictResponse struct {
	ProductID  string `json:"productId"`
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	LocationID string `json:"locationId"`
	Stock      int64  `json:"stock"`
	OversoldBy int64  `json:"oversoldBy"`
}

// FromConflict converts a domain conflict into a response.
func FromConflict(c *conflicts.Conflict) ConflictResponse {
	return ConflictResponse{
		ProductID:  c.ProductID.String(),
		SKU:        c.SKU,
		Name:       c.Name,
		LocationID: c.LocationID.String(),
		Stock:      c.Stock,
		OversoldBy: c.OversoldBy,
	}
}

// ResolveConflictRequest corrects an oversold position.
type ResolveConflictRequest struct {
	ProductID  string `json:"productId" binding:"required,uuid"`
	VariantID  string `json:"variantId" binding:"omitempty,uuid"`
	LocationID string `json:"locationId" binding:"required,uuid"`
	Action     string `json:"action" binding:"required,oneof=ADJUST EMERGENCY_RESTOCK"`
	Quantity   int64  `json:"quantity" binding:"required,gt=0"`
	Note       string `json:"note" binding:"omitempty,max=255"`
}

// ToModel converts the request into a domain resolve request.
func (r *ResolveConflictRequest) ToModel() (conflicts.ResolveRequest, error) {
	productID, err := id.Parse(r.ProductID)
	if err != nil {
		return conflicts.ResolveRequest{}, apperror.NewValidation("invalid product id").WithDetail("field", "productId")
	}
	locationID, err := id.Parse(r.LocationID)
	if err != nil {
		return conflicts.ResolveRequest{}, apperror.NewValidation("invalid location id").WithDetail("field", "locationId")
	}

	req := conflicts.ResolveRequest{
		ProductID:  productID,
		LocationID: locationID,
		Action:     conflicts.Action(r.Action),
		Quantity:   r.Quantity,
		Note:       r.Note,
	}
	if r.VariantID != "" {
		v, err := id.Parse(r.VariantID)
		if err != nil {
			return conflicts.ResolveRequest{}, apperror.NewValidation("invalid variant id").WithDetail("field", "variantId")
		}
		req.VariantID = &v
	}
	return req, nil
}
