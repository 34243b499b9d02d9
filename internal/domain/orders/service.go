package orders

import (
	"context"
	"fmt"
	"time"

	"stocktrail/internal/core/apperror"
	"stocktrail/internal/core/id"
	"stocktrail/internal/core/tx"
	"stocktrail/internal/domain/ledger"
	"stocktrail/pkg/logger"
	"stocktrail/pkg/numerator"
)

// CommitResult reports the outcome of an order commit. Duplicate is set when
// the client order id was seen before; the returned order is then the one
// committed by the first attempt.
type CommitResult struct {
	Order     *Order
	Duplicate bool
}

// Service commits sales orders atomically with their ledger facts.
type Service struct {
	repo      Repository
	ledger    ledger.Store
	txManager tx.Manager
	numerator *numerator.Service
}

// NewService creates an order service.
func NewService(repo Repository, ledgerStore ledger.Store, txManager tx.Manager, num *numerator.Service) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledgerStore,
		txManager: txManager,
		numerator: num,
	}
}

// Commit validates and persists an order together with its stock facts.
//
// The pipeline is: validate, replay check on client order id, assign a
// number, then one transaction writing header + items + facts. Either all of
// it lands or none of it does, so the ledger can never show a sale whose
// order vanished. No stock check happens anywhere on this path.
func (s *Service) Commit(ctx context.Context, order *Order) (*CommitResult, error) {
	if err := order.Validate(ctx); err != nil {
		return nil, err
	}

	// Replay short-circuit. The unique index on client_order_id still
	// backstops the race where two replays pass this check concurrently.
	if order.ClientOrderID != nil {
		existing, err := s.repo.GetByClientOrderID(ctx, *order.ClientOrderID)
		if err != nil && !apperror.IsNotFound(err) {
			return nil, err
		}
		if existing != nil {
			logger.Info(ctx, "order replay ignored",
				"clientOrderId", *order.ClientOrderID, "number", existing.Number)
			return &CommitResult{Order: existing, Duplicate: true}, nil
		}
	}

	// Number is taken outside the transaction; a rollback leaves a gap,
	// which is acceptable for order numbers.
	number, err := s.numerator.GetNextNumber(ctx,
		numerator.DefaultConfig("SO"),
		&numerator.Options{Strategy: numerator.StrategyCached},
		time.Now())
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("generate order number: %w", err))
	}
	order.Number = number

	err = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, order); err != nil {
			return err
		}
		if err := s.repo.SaveItems(txCtx, order.ID, order.Items); err != nil {
			return err
		}
		return s.ledger.AppendBatch(txCtx, order.LedgerEntries())
	})
	if err != nil {
		// Lost the replay race: another writer committed the same client
		// order id first. Return their order.
		if apperror.IsDuplicate(err) && order.ClientOrderID != nil {
			existing, getErr := s.repo.GetByClientOrderID(ctx, *order.ClientOrderID)
			if getErr != nil {
				return nil, err
			}
			return &CommitResult{Order: existing, Duplicate: true}, nil
		}
		return nil, err
	}

	logger.Info(ctx, "order committed",
		"number", order.Number, "channel", order.Channel,
		"items", len(order.Items), "total", order.Total)
	return &CommitResult{Order: order}, nil
}

// GetByNumber returns an order with its items loaded.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Order, error) {
	order, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// GetByID returns an order with its items loaded.
func (s *Service) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}
