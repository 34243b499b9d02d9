package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stocktrail/internal/domain/orders"
	"stocktrail/internal/infrastructure/http/v1/dto"
)

// OrdersHandler serves the sales order commit pipeline.
type OrdersHandler struct {
	*BaseHandler
	service *orders.Service
}

// NewOrdersHandler creates an orders handler.
func NewOrdersHandler(service *orders.Service) *OrdersHandler {
	return &OrdersHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Commit handles POST /orders. A replayed clientOrderId answers 200 with the
// original order instead of committing twice.
func (h *OrdersHandler) Commit(c *gin.Context) {
	var req dto.CommitOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := req.ToModel()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.service.Commit(c.Request.Context(), order)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := dto.FromOrder(result.Order, result.Duplicate)
	if result.Duplicate {
		h.OK(c, resp)
		return
	}
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}

// GetByNumber handles GET /orders/:number.
func (h *OrdersHandler) GetByNumber(c *gin.Context) {
	order, err := h.service.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.FromOrder(order, false))
}
