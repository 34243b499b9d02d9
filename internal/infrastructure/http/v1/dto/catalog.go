package dto

import (
	"time"

	"stocktrail/internal/core/apperror"
	"stocktrail/internal/core/types"
	"stocktrail/internal/domain/catalog"
)

// CreateProductRequest adds a product to the catalog.
type CreateProductRequest struct {
	SKU      string `json:"sku" binding:"required,max=64"`
	Name     string `json:"name" binding:"required,max=255"`
	Category string `json:"category" binding:"omitempty,max=255"`
	Price    string `json:"price" binding:"required"`
}

// ToModel converts the request into a domain product.
func (r *CreateProductRequest) ToModel() (*catalog.Product, error) {
	price, err := types.NewMoneyFromString(r.Price)
	if err != nil {
		return nil, apperror.NewValidation("invalid price").WithDetail("field", "price")
	}
	return catalog.NewProduct(r.SKU, r.Name, r.Category, price), nil
}

// UpdateProductRequest modifies a catalog product.
type UpdateProductRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Category string `json:"category" binding:"omitempty,max=255"`
	Price    string `json:"price" binding:"required"`
	Active   *bool  `json:"active" binding:"required"`
}

// ListProductsQuery filters product listings.
type ListProductsQuery struct {
	PaginationRequest
	Category string `form:"category"`
	Search   string `form:"search"`
	Active   bool   `form:"active"`
}

// ProductResponse is a catalog product.
type ProductResponse struct {
	ID        string    `json:"id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     string    `json:"price"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromProduct converts a domain product into a response.
func FromProduct(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID.String(),
		SKU:       p.SKU,
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price.StringFixed(2),
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
