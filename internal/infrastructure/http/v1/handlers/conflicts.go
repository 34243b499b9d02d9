package handlers

import (
	"github.com/gin-gonic/gin"

	"stocktrail/internal/domain/conflicts"
	"stocktrail/internal/infrastructure/http/v1/dto"
)

// ConflictsHandler serves the oversell report and manual resolution.
type ConflictsHandler struct {
	*BaseHandler
	service *conflicts.Service
}

// NewConflictsHandler creates a conflicts handler.
func NewConflictsHandler(service *conflicts.Service) *ConflictsHandler {
	return &ConflictsHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// List handles GET /conflicts: every position currently oversold.
func (h *ConflictsHandler) List(c *gin.Context) {
	found, err := h.service.Detect(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]dto.ConflictResponse, 0, len(found))
	for i := range found {
		items = append(items, dto.FromConflict(&found[i]))
	}
	h.OK(c, gin.H{"items": items})
}

// Resolve handles POST /conflicts/resolve: appends a corrective fact.
func (h *ConflictsHandler) Resolve(c *gin.Context) {
	var req dto.ResolveConflictRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resolveReq, err := req.ToModel()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	entry, err := h.service.Resolve(c.Request.Context(), resolveReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.FromEntry(entry))
}
