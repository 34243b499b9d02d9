package catalog

import (
	"context"

	"stocktrail/internal/core/id"
	"stocktrail/pkg/logger"
)

// Service provides business operations for the product catalog.
type Service struct {
	repo Repository
}

// NewService creates a catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new product.
func (s *Service) Create(ctx context.Context, product *Product) error {
	if err := product.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return err
	}
	logger.Info(ctx, "product created", "id", product.ID, "sku", product.SKU)
	return nil
}

// Update validates and persists changes to a product.
func (s *Service) Update(ctx context.Context, product *Product) error {
	if err := product.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, product)
}

// GetByID fetches a single product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// List returns products matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	return s.repo.List(ctx, filter)
}
