package handlers

import (
	"github.com/gin-gonic/gin"

	"stocktrail/internal/core/apperror"
	"stocktrail/internal/core/id"
	"stocktrail/internal/domain/ledger"
	"stocktrail/internal/infrastructure/http/v1/dto"
)

// StockHandler serves derived stock reads and the fact history.
type StockHandler struct {
	*BaseHandler
	aggregator *ledger.Aggregator
}

// NewStockHandler creates a stock handler.
func NewStockHandler(aggregator *ledger.Aggregator) *StockHandler {
	return &StockHandler{
		BaseHandler: NewBaseHandler(),
		aggregator:  aggregator,
	}
}

// Get handles GET /stock/:productId. Stock is computed by summing ledger
// facts at read time.
func (h *StockHandler) Get(c *gin.Context) {
	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.HandleError(c, apperror.NewValidation("invalid product id"))
		return
	}

	var query dto.StockQuery
	if !h.BindQuery(c, &query) {
		return
	}

	variantID, locationID, err := parseOptionalIDs(query.VariantID, query.LocationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	stock, err := h.aggregator.CurrentStock(c.Request.Context(), productID, variantID, locationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := dto.StockResponse{
		ProductID: productID.String(),
		Stock:     stock,
	}
	if variantID != nil {
		resp.VariantID = variantID.String()
	}
	if locationID != nil {
		resp.LocationID = locationID.String()
	}
	h.OK(c, resp)
}

// History handles GET /stock/:productId/history: the complete audit trail
// of a product, oldest first.
func (h *StockHandler) History(c *gin.Context) {
	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.HandleError(c, apperror.NewValidation("invalid product id"))
		return
	}

	var query dto.HistoryQuery
	if !h.BindQuery(c, &query) {
		return
	}
	query.Defaults()

	variantID, locationID, err := parseOptionalIDs(query.VariantID, query.LocationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filter := ledger.Filter{
		ProductID:  &productID,
		VariantID:  variantID,
		LocationID: locationID,
		From:       query.From,
		To:         query.To,
		Limit:      query.PageSize,
		Offset:     query.Offset(),
	}
	if query.Reason != "" {
		reason, err := ledger.ParseReasonCode(query.Reason)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		filter.Reasons = []ledger.ReasonCode{reason}
	}

	entries, err := h.aggregator.History(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	facts := make([]dto.FactResponse, 0, len(entries))
	for i := range entries {
		facts = append(facts, dto.FromEntry(&entries[i]))
	}
	h.OK(c, gin.H{"items": facts, "page": query.Page, "pageSize": query.PageSize})
}

// Positions handles GET /stock: every (product, location) aggregate.
func (h *StockHandler) Positions(c *gin.Context) {
	positions, err := h.aggregator.Positions(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]dto.PositionResponse, 0, len(positions))
	for _, p := range positions {
		items = append(items, dto.PositionResponse{
			ProductID:  p.ProductID.String(),
			LocationID: p.LocationID.String(),
			Stock:      p.Stock,
		})
	}
	h.OK(c, gin.H{"items": items})
}

func parseOptionalIDs(variant, location string) (*id.ID, *id.ID, error) {
	var variantID, locationID *id.ID
	if variant != "" {
		v, err := id.Parse(variant)
		if err != nil {
			return nil, nil, apperror.NewValidation("invalid variant id")
		}
		variantID = &v
	}
	if location != "" {
		l, err := id.Parse(location)
		if err != nil {
			return nil, nil, apperror.NewValidation("invalid location id")
		}
		locationID = &l
	}
	return variantID, locationID, nil
}
