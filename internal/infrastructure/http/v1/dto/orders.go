package dto

import (
	"time"

	"stocktrail/internal/core/apperror"
	"stocktrail/internal/core/id"
	"stocktrail/internal/core/types"
	"stocktrail/internal/domain/orders"
)

// OrderItemRequest is one line of an order commit.
type OrderItemRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	VariantID string `json:"variantId" binding:"omitempty,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
	UnitPrice string `json:"unitPrice" binding:"required"`
}

// CommitOrderRequest creates a sales order. clientOrderId is the terminal's
// locally generated id; sending the same one twice commits only once.
type CommitOrderRequest struct {
	ClientOrderID string             `json:"clientOrderId" binding:"omitempty,uuid"`
	Channel       string             `json:"channel" binding:"required,oneof=pos online"`
	LocationID    string             `json:"locationId" binding:"required,uuid"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ToModel converts the request into a domain order.
func (r *CommitOrderRequest) ToModel() (*orders.Order, error) {
	channel, err := orders.ParseChannel(r.Channel)
	if err != nil {
		return nil, err
	}
	locationID, err := id.Parse(r.LocationID)
	if err != nil {
		return nil, apperror.NewValidation("invalid location id").WithDetail("field", "locationId")
	}

	order := orders.New(channel, locationID)

	if r.ClientOrderID != "" {
		clientOrderID, err := id.Parse(r.ClientOrderID)
		if err != nil {
			return nil, apperror.NewValidation("invalid client order id").WithDetail("field", "clientOrderId")
		}
		order.ClientOrderID = &clientOrderID
	}

	for i, item := range r.Items {
		productID, err := id.Parse(item.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid product id").WithDetail("lineNo", i+1)
		}
		var variantID *id.ID
		if item.VariantID != "" {
			v, err := id.Parse(item.VariantID)
			if err != nil {
				return nil, apperror.NewValidation("invalid variant id").WithDetail("lineNo", i+1)
			}
			variantID = &v
		}
		price, err := types.NewMoneyFromString(item.UnitPrice)
		if err != nil {
			return nil, apperror.NewValidation("invalid unit price").WithDetail("lineNo", i+1)
		}
		order.AddLine(productID, variantID, item.Quantity, price)
	}
	return order, nil
}

// OrderItemResponse is one committed order line.
type OrderItemResponse struct {
	LineNo    int    `json:"lineNo"`
	ProductID string `json:"productId"`
	VariantID string `json:"variantId,omitempty"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Amount    string `json:"amount"`
}

// OrderResponse is a committed order.
type OrderResponse struct {
	ID            string              `json:"id"`
	Number        string              `json:"number"`
	ClientOrderID string              `json:"clientOrderId,omitempty"`
	Channel       string              `json:"channel"`
	Status        string              `json:"status"`
	LocationID    string              `json:"locationId"`
	Total         string              `json:"total"`
	Duplicate     bool                `json:"duplicate,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	Items         []OrderItemResponse `json:"items,omitempty"`
}

// FromOrder converts a domain order into a response.
func FromOrder(order *orders.Order, duplicate bool) OrderResponse {
	resp := OrderResponse{
		ID:         order.ID.String(),
		Number:     order.Number,
		Channel:    string(order.Channel),
		Status:     string(order.Status),
		LocationID: order.LocationID.String(),
		Total:      order.Total.StringFixed(2),
		Duplicate:  duplicate,
		CreatedAt:  order.CreatedAt,
	}
	if order.ClientOrderID != nil {
		resp.ClientOrderID = order.ClientOrderID.String()
	}
	for _, item := range order.Items {
		itemResp := OrderItemResponse{
			LineNo:    item.LineNo,
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Amount:    item.Amount.StringFixed(2),
		}
		if item.VariantID != nil {
			itemResp.VariantID = item.VariantID.String()
		}
		resp.Items = append(resp.Items, itemResp)
	}
	return resp
}
