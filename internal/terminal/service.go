package terminal

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"stocktrail/internal/domain/snapshot"
	"stocktrail/internal/infrastructure/http/v1/dto"
	"stocktrail/pkg/logger"
)

// Gateway is the server side of the sync protocol as the terminal sees it.
// The HTTP client implements it; tests use a fake.
type Gateway interface {
	PullSnapshot(ctx context.Context) (*snapshot.Snapshot, error)
	PushOrders(ctx context.Context, sales []dto.CommitOrderRequest) ([]dto.SyncAck, error)
}

// Service runs the terminal: queueing sales while offline and syncing with
// the server whenever it can.
type Service struct {
	replica  *Replica
	gateway  Gateway
	validate *validator.Validate

	locationID string
}

// NewService creates a terminal service.
func NewService(replica *Replica, gateway Gateway, locationID string) *Service {
	return &Service{
		replica:    replica,
		gateway:    gateway,
		validate:   validator.New(),
		locationID: locationID,
	}
}

// SaleLine is one local checkout line.
type SaleLine struct {
	ProductID string `validate:"required,uuid"`
	VariantID string `validate:"omitempty,uuid"`
	Quantity  int64  `validate:"required,gt=0"`
	UnitPrice string `validate:"required"`
}

// QueueSale records a checkout locally. It always succeeds for valid input:
// no stock check can reject a sale that already happened at the till. When
// cached stock looks insufficient the sale is queued anyway and a warning
// is logged for the operator.
func (s *Service) QueueSale(ctx context.Context, lines []SaleLine) (string, error) {
	for i := range lines {
		if err := s.validate.Struct(&lines[i]); err != nil {
			return "", err
		}
	}

	sale := dto.CommitOrderRequest{
		ClientOrderID: uuid.New().String(),
		Channel:       "pos",
		LocationID:    s.locationID,
	}
	for _, line := range lines {
		sale.Items = append(sale.Items, dto.OrderItemRequest{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})

		cached, err := s.replica.GetProduct(ctx, line.ProductID)
		if err != nil {
			return "", err
		}
		if cached != nil && cached.Stock < line.Quantity {
			logger.Warn(ctx, "cached stock insufficient, queueing sale anyway",
				"sku", cached.SKU, "cached_stock", cached.Stock, "quantity", line.Quantity)
		}
	}

	if err := s.replica.Enqueue(ctx, sale); err != nil {
		return "", err
	}

	// Keep the displayed stock roughly current between syncs.
	for _, line := range lines {
		if err := s.replica.AdjustCachedStock(ctx, line.ProductID, -line.Quantity); err != nil {
			logger.Warn(ctx, "failed to adjust cached stock", "productId", line.ProductID, "error", err)
		}
	}

	logger.Info(ctx, "sale queued", "clientOrderId", sale.ClientOrderID, "lines", len(lines))
	return sale.ClientOrderID, nil
}

// SyncOnce pushes the outbox, then pulls a fresh snapshot. Push first so
// the pulled stock figures already include this terminal's backlog.
func (s *Service) SyncOnce(ctx context.Context) error {
	pending, err := s.replica.Pending(ctx)
	if err != nil {
		return err
	}

	if len(pending) > 0 {
		acks, err := s.gateway.PushOrders(ctx, pending)
		if err != nil {
			return err
		}
		for _, ack := range acks {
			switch ack.Status {
			case dto.SyncStatusCommitted, dto.SyncStatusDuplicate:
				if err := s.replica.MarkSynced(ctx, ack.ClientOrderID, ack.Number); err != nil {
					return err
				}
			default:
				// Rejected sales stay queued for operator attention.
				logger.Error(ctx, "pushed sale rejected by server",
					"clientOrderId", ack.ClientOrderID, "error", ack.Error)
			}
		}
		logger.Info(ctx, "outbox pushed", "count", len(pending))
	}

	snap, err := s.gateway.PullSnapshot(ctx)
	if err != nil {
		return err
	}
	if err := s.replica.ApplySnapshot(ctx, snap); err != nil {
		return err
	}

	logger.Info(ctx, "snapshot applied", "items", len(snap.Items), "takenAt", snap.TakenAt)
	return nil
}

// Run syncs on the given interval until ctx is cancelled. Sync failures are
// logged and retried on the next tick; they never stop the loop.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SyncOnce(ctx); err != nil {
				logger.Warn(ctx, "sync failed, will retry", "error", err)
			}
		}
	}
}
