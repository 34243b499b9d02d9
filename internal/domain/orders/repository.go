package orders

import (
	"context"

	"stocktrail/internal/core/id"
)

// Repository defines order persistence. Create must surface a unique
// violation on client_order_id as a duplicate apperror so the service can
// treat replays as idempotent.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	SaveItems(ctx context.Context, orderID id.ID, items []OrderItem) error

	GetByID(ctx context.Context, orderID id.ID) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	GetByClientOrderID(ctx context.Context, clientOrderID id.ID) (*Order, error)

	GetItems(ctx context.Context, orderID id.ID) ([]OrderItem, error)
}
