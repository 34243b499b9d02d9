package handlers

import (
	"github.com/gin-gonic/gin"

	"stocktrail/internal/domain/ledger"
	"stocktrail/internal/infrastructure/http/v1/dto"
)

// LedgerHandler records manual stock movements: restocks, opening balances
// and corrections. Sales facts never come through here.
type LedgerHandler struct {
	*BaseHandler
	store ledger.Store
}

// NewLedgerHandler creates a ledger handler.
func NewLedgerHandler(store ledger.Store) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: NewBaseHandler(),
		store:       store,
	}
}

// Append handles POST /ledger/facts.
func (h *LedgerHandler) Append(c *gin.Context) {
	var req dto.AppendFactRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entry, err := req.ToModel()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	transactionID, err := h.store.Append(c.Request.Context(), *entry)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, transactionID.String())
}
