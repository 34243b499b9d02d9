// Package orders implements the sales order commit pipeline. An order is the
// write path into the stock ledger: committing it persists the header, its
// items and one ledger fact per item inside a single transaction.
package orders

import (
	"context"
	"fmt"
	"time"

	"stocktrail/internal/core/apperror"
	"stocktrail/internal/core/id"
	"stocktrail/internal/core/types"
	"stocktrail/internal/domain/ledger"
)

// Channel is the sales channel an order arrived through.
type Channel string

const (
	ChannelPOS    Channel = "pos"
	ChannelOnline Channel = "online"
)

var channels = map[Channel]struct{}{
	ChannelPOS:    {},
	ChannelOnline: {},
}

// ParseChannel validates a channel string.
func ParseChannel(s string) (Channel, error) {
	c := Channel(s)
	if _, ok := channels[c]; !ok {
		return "", apperror.NewValidation(fmt.Sprintf("unknown channel: %s", s)).
			WithDetail("field", "channel")
	}
	return c, nil
}

// Reason returns the ledger reason code facts from this channel carry.
func (c Channel) Reason() ledger.ReasonCode {
	if c == ChannelOnline {
		return ledger.ReasonSaleOnline
	}
	return ledger.ReasonSalePOS
}

// Status of a committed order.
type Status string

const (
	// StatusCompleted is assigned to POS orders: payment already happened
	// at the till.
	StatusCompleted Status = "COMPLETED"
	// StatusPending is assigned to online orders awaiting fulfilment.
	StatusPending Status = "PENDING"
)

// Order is a sales order header.
type Order struct {
	ID            id.ID   `db:"id" json:"id"`
	Number        string  `db:"number" json:"number"`
	ClientOrderID *id.ID  `db:"client_order_id" json:"clientOrderId,omitempty"`
	Channel       Channel `db:"channel" json:"channel"`
	Status        Status  `db:"status" json:"status"`
	LocationID    id.ID   `db:"location_id" json:"locationId"`

	Total types.Money `db:"total" json:"total"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	Items []OrderItem `db:"-" json:"items,omitempty"`
}

// OrderItem is one sold line of an order.
type OrderItem struct {
	LineID  id.ID `db:"line_id" json:"lineId"`
	OrderID id.ID `db:"order_id" json:"-"`
	LineNo  int   `db:"line_no" json:"lineNo"`

	ProductID id.ID  `db:"product_id" json:"productId"`
	VariantID *id.ID `db:"variant_id" json:"variantId,omitempty"`

	Quantity  int64       `db:"quantity" json:"quantity"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	Amount    types.Money `db:"amount" json:"amount"`
}

// New creates an order header for the given channel. Status follows the
// channel: POS sales are complete at the till, online sales start pending.
func New(channel Channel, locationID id.ID) *Order {
	status := StatusPending
	if channel == ChannelPOS {
		status = StatusCompleted
	}
	return &Order{
		ID:         id.New(),
		Channel:    channel,
		Status:     status,
		LocationID: locationID,
		Total:      types.ZeroMoney(),
		CreatedAt:  time.Now().UTC(),
	}
}

// AddLine appends an item and recalculates the line amount and order total.
func (o *Order) AddLine(productID id.ID, variantID *id.ID, quantity int64, unitPrice types.Money) {
	item := OrderItem{
		LineID:    id.New(),
		OrderID:   o.ID,
		LineNo:    len(o.Items) + 1,
		ProductID: productID,
		VariantID: variantID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Amount:    types.LineAmount(quantity, unitPrice),
	}
	o.Items = append(o.Items, item)
	o.recalculateTotal()
}

func (o *Order) recalculateTotal() {
	total := types.ZeroMoney()
	for i := range o.Items {
		total = total.Add(o.Items[i].Amount)
	}
	o.Total = total
}

// Validate checks structural invariants. Stock sufficiency is deliberately
// not checked here: sales are never rejected for lack of stock, oversell
// surfaces later as a conflict.
func (o *Order) Validate(ctx context.Context) error {
	if _, ok := channels[o.Channel]; !ok {
		return apperror.NewValidation(fmt.Sprintf("unknown channel: %s", o.Channel)).
			WithDetail("field", "channel")
	}
	if id.IsNil(o.LocationID) {
		return apperror.NewValidation("location is required").WithDetail("field", "locationId")
	}
	if len(o.Items) == 0 {
		return apperror.NewValidation("order must contain at least one item")
	}
	for i := range o.Items {
		item := &o.Items[i]
		if id.IsNil(item.ProductID) {
			return apperror.NewValidation("item product is required").
				WithDetail("lineNo", item.LineNo)
		}
		if item.Quantity <= 0 {
			return apperror.NewValidation("item quantity must be positive").
				WithDetail("lineNo", item.LineNo)
		}
		if item.UnitPrice.IsNegative() {
			return apperror.NewValidation("item price must not be negative").
				WithDetail("lineNo", item.LineNo)
		}
	}
	return nil
}

// LedgerEntries builds one negative-delta fact per item. Each fact gets its
// own transaction id; the order number in the reference document is what
// ties the facts back to the order.
func (o *Order) LedgerEntries() []ledger.Entry {
	entries := make([]ledger.Entry, 0, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		entries = append(entries, ledger.Entry{
			TransactionID: id.New(),
			ProductID:     item.ProductID,
			VariantID:     item.VariantID,
			LocationID:    o.LocationID,
			Delta:         -item.Quantity,
			Reason:        o.Channel.Reason(),
			ReferenceDoc:  o.Number,
			CreatedAt:     o.CreatedAt,
		})
	}
	return entries
}
