// Package conflicts detects oversold positions and resolves them by
// appending corrective ledger facts. Nothing here mutates history: a
// resolution is itself just another fact.
package conflicts

import (
	"context"
	"fmt"
	"time"

	"stocktrail/internal/core/apperror"
	"stocktrail/internal/core/id"
	"stocktrail/internal/domain/catalog"
	"stocktrail/internal/domain/ledger"
	"stocktrail/pkg/logger"
)

// Conflict is a position whose aggregate went negative: more units sold
// than the ledger ever received.
type Conflict struct {
	ProductID  id.ID  `json:"productId"`
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	LocationID id.ID  `json:"locationId"`
	Stock      int64  `json:"stock"`
	OversoldBy int64  `json:"oversoldBy"`
}

// Action chooses how a conflict is corrected.
type Action string

const (
	// ActionAdjust records a stock correction, e.g. after a physical
	// recount found units the ledger did not know about.
	ActionAdjust Action = "ADJUST"
	// ActionEmergencyRestock records goods rushed in to cover the
	// oversell.
	ActionEmergencyRestock Action = "EMERGENCY_RESTOCK"
)

// ResolveRequest describes a manual conflict resolution.
type ResolveRequest struct {
	ProductID  id.ID
	VariantID  *id.ID
	LocationID id.ID
	Action     Action
	Quantity   int64
	Note       string
}

// Service detects and resolves stock conflicts.
type Service struct {
	ledger  ledger.Store
	catalog catalog.Repository
}

// NewService creates a conflict service.
func NewService(ledgerStore ledger.Store, catalogRepo catalog.Repository) *Service {
	return &Service{ledger: ledgerStore, catalog: catalogRepo}
}

// Detect returns every position with a negative aggregate, enriched with
// catalog data for the report.
func (s *Service) Detect(ctx context.Context) ([]Conflict, error) {
	positions, err := s.ledger.Positions(ctx)
	if err != nil {
		return nil, err
	}

	var negative []ledger.Position
	productIDs := make([]id.ID, 0)
	for _, p := range positions {
		if p.Stock < 0 {
			negative = append(negative, p)
			productIDs = append(productIDs, p.ProductID)
		}
	}
	if len(negative) == 0 {
		return []Conflict{}, nil
	}

	products, err := s.catalog.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	conflicts := make([]Conflict, 0, len(negative))
	for _, p := range negative {
		c := Conflict{
			ProductID:  p.ProductID,
			LocationID: p.LocationID,
			Stock:      p.Stock,
			OversoldBy: -p.Stock,
		}
		if product, ok := products[p.ProductID]; ok {
			c.SKU = product.SKU
			c.Name = product.Name
		}
		conflicts = append(conflicts, c)
	}
	return conflicts, nil
}

// Resolve appends a corrective fact for an oversold position. The quantity
// is how many units to add back; the caller decides it from the recount or
// the emergency delivery, not from the current aggregate.
func (s *Service) Resolve(ctx context.Context, req ResolveRequest) (*ledger.Entry, error) {
	if req.Quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}

	switch req.Action {
	case ActionAdjust, ActionEmergencyRestock:
	default:
		return nil, apperror.NewValidation(fmt.Sprintf("unknown action: %s", req.Action)).
			WithDetail("field", "action")
	}

	if _, err := s.catalog.GetByID(ctx, req.ProductID); err != nil {
		return nil, err
	}

	// Both actions produce the same corrective fact type. The action only
	// tells the auditor what happened physically, so it travels in the
	// reference document, not in the reason code.
	reference := string(req.Action)
	if req.Note != "" {
		reference = fmt.Sprintf("%s: %s", req.Action, req.Note)
	}

	entry := ledger.Entry{
		TransactionID: id.New(),
		ProductID:     req.ProductID,
		VariantID:     req.VariantID,
		LocationID:    req.LocationID,
		Delta:         req.Quantity,
		Reason:        ledger.ReasonAdjust,
		ReferenceDoc:  reference,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := s.ledger.Append(ctx, entry); err != nil {
		return nil, err
	}

	logger.Info(ctx, "conflict resolved",
		"productId", req.ProductID, "locationId", req.LocationID,
		"action", req.Action, "quantity", req.Quantity)
	return &entry, nil
}
