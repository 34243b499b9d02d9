package dto

// PushOrdersRequest is the batch of locally queued sales a terminal uploads
// after a connectivity gap.
type PushOrdersRequest struct {
	Orders []CommitOrderRequest `json:"orders" binding:"required,min=1,dive"`
}

// Push ack statuses.
const (
	SyncStatusCommitted = "committed"
	SyncStatusDuplicate = "duplicate"
	SyncStatusRejected  = "rejected"
)

// SyncAck reports the outcome for one pushed order. Terminals flag their
// local outbox entry as synced on committed or duplicate; rejected entries
// stay queued for operator attention.
type SyncAck struct {
	ClientOrderID string `json:"clientOrderId"`
	Number        string `json:"number,omitempty"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
}

// PushOrdersResponse acknowledges a pushed batch per order.
type PushOrdersResponse struct {
	Results []SyncAck `json:"results"`
}
