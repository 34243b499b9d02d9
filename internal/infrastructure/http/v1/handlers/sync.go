package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stocktrail/internal/domain/orders"
	"stocktrail/internal/domain/snapshot"
	"stocktrail/internal/infrastructure/http/v1/dto"
	"stocktrail/pkg/logger"
)

// SyncHandler serves the offline terminal sync protocol: snapshot pull and
// queued order push.
type SyncHandler struct {
	*BaseHandler
	builder *snapshot.Builder
	codec   *snapshot.Codec
	orders  *orders.Service
}

// NewSyncHandler creates a sync handler.
func NewSyncHandler(builder *snapshot.Builder, codec *snapshot.Codec, orderService *orders.Service) *SyncHandler {
	return &SyncHandler{
		BaseHandler: NewBaseHandler(),
		builder:     builder,
		codec:       codec,
		orders:      orderService,
	}
}

// Snapshot handles GET /sync/snapshot: the active catalog with stock summed
// across locations, compressed for slow store links.
func (h *SyncHandler) Snapshot(c *gin.Context) {
	snap, err := h.builder.Build(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	payload, err := h.codec.Encode(snap)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, snapshot.ContentType, payload)
}

// PushOrders handles POST /sync/orders. Each queued order commits
// independently: one bad order in the batch must not block the rest of the
// terminal's backlog.
func (h *SyncHandler) PushOrders(c *gin.Context) {
	var req dto.PushOrdersRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	results := make([]dto.SyncAck, 0, len(req.Orders))
	for i := range req.Orders {
		orderReq := &req.Orders[i]
		ack := dto.SyncAck{ClientOrderID: orderReq.ClientOrderID}

		order, err := orderReq.ToModel()
		if err != nil {
			ack.Status = dto.SyncStatusRejected
			ack.Error = err.Error()
			results = append(results, ack)
			continue
		}

		result, err := h.orders.Commit(ctx, order)
		if err != nil {
			logger.Warn(ctx, "pushed order rejected",
				"clientOrderId", orderReq.ClientOrderID, "error", err)
			ack.Status = dto.SyncStatusRejected
			ack.Error = err.Error()
			results = append(results, ack)
			continue
		}

		ack.Number = result.Order.Number
		if result.Duplicate {
			ack.Status = dto.SyncStatusDuplicate
		} else {
			ack.Status = dto.SyncStatusCommitted
		}
		results = append(results, ack)
	}

	h.OK(c, dto.PushOrdersResponse{Results: results})
}
