package orders

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"

	"stocktrail/internal/core/apperror"
	"stocktrail/internal/core/id"
	"stocktrail/internal/core/tx"
	"stocktrail/internal/core/types"
	"stocktrail/internal/domain/ledger"
	"stocktrail/pkg/numerator"
)

// fakeRepo is an in-memory Repository. Create enforces the client_order_id
// unique index the same way the database does.
type fakeRepo struct {
	mu      sync.Mutex
	orders  map[id.ID]*Order
	items   map[id.ID][]OrderItem
	failNow error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders: make(map[id.ID]*Order),
		items:  make(map[id.ID][]OrderItem),
	}
}

func (r *fakeRepo) Create(ctx context.Context, order *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNow != nil {
		return r.failNow
	}
	if order.ClientOrderID != nil {
		for _, existing := range r.orders {
			if existing.ClientOrderID != nil && *existing.ClientOrderID == *order.ClientOrderID {
				return apperror.NewDuplicate("order", "client_order_id", order.ClientOrderID.String())
			}
		}
	}
	stored := *order
	r.orders[order.ID] = &stored
	return nil
}

func (r *fakeRepo) SaveItems(ctx context.Context, orderID id.ID, items []OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[orderID] = append([]OrderItem(nil), items...)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[orderID]; ok {
		copied := *o
		return &copied, nil
	}
	return nil, apperror.NewNotFound("order", orderID.String())
}

func (r *fakeRepo) GetByNumber(ctx context.Context, number string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.Number == number {
			copied := *o
			return &copied, nil
		}
	}
	return nil, apperror.NewNotFound("order", number)
}

func (r *fakeRepo) GetByClientOrderID(ctx context.Context, clientOrderID id.ID) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ClientOrderID != nil && *o.ClientOrderID == clientOrderID {
			copied := *o
			return &copied, nil
		}
	}
	return nil, apperror.NewNotFound("order", clientOrderID.String())
}

func (r *fakeRepo) GetItems(ctx context.Context, orderID id.ID) ([]OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]OrderItem(nil), r.items[orderID]...), nil
}

// seqRow and seqQuerier emulate the sys_sequences upsert.
type seqRow struct {
	val int64
	err error
}

func (r *seqRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if p, ok := dest[0].(*int64); ok {
		*p = r.val
	}
	return nil
}

type seqQuerier struct {
	mu      sync.Mutex
	current int64
}

func (q *seqQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.mu.Lock()
	defer q.mu.Unlock()
	increment := int64(1)
	if len(args) >= 2 {
		if size, ok := args[1].(int64); ok {
			increment = size
		}
	}
	q.current += increment
	return &seqRow{val: q.current}
}

func newTestService(repo Repository, store ledger.Store) *Service {
	return NewService(repo, store, tx.Nop{}, numerator.New(&seqQuerier{}))
}

func posOrder(t *testing.T) *Order {
	t.Helper()
	order := New(ChannelPOS, id.New())
	order.AddLine(id.New(), nil, 2, types.MustMoney("19.99"))
	order.AddLine(id.New(), nil, 1, types.MustMoney("5.00"))
	return order
}

func TestCommit_WritesOneFactPerItem(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	store := ledger.NewMemoryStore()
	svc := newTestService(repo, store)

	order := posOrder(t)
	result, err := svc.Commit(ctx, order)
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if result.Duplicate {
		t.Error("fresh order reported as duplicate")
	}
	if !strings.HasPrefix(result.Order.Number, "SO-") {
		t.Errorf("number %q lacks SO- prefix", result.Order.Number)
	}
	if result.Order.Status != StatusCompleted {
		t.Errorf("POS order status = %s, want COMPLETED", result.Order.Status)
	}
	if want := types.MustMoney("44.98"); !result.Order.Total.Equal(want) {
		t.Errorf("total = %s, want %s", result.Order.Total, want)
	}

	facts, err := store.Read(ctx, ledger.Filter{})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(facts) != 2 {
		t.Fatalf("got %d facts, want 2", len(facts))
	}
	seenTx := make(map[id.ID]struct{})
	for _, f := range facts {
		if id.IsNil(f.TransactionID) {
			t.Error("fact missing transaction id")
		}
		if _, dup := seenTx[f.TransactionID]; dup {
			t.Errorf("transaction id %s reused across facts", f.TransactionID)
		}
		seenTx[f.TransactionID] = struct{}{}
		if f.Reason != ledger.ReasonSalePOS {
			t.Errorf("fact reason = %s, want SALE_POS", f.Reason)
		}
		if f.Delta >= 0 {
			t.Errorf("sale fact delta = %d, want negative", f.Delta)
		}
		if f.ReferenceDoc != result.Order.Number {
			t.Errorf("fact reference = %q, want %q", f.ReferenceDoc, result.Order.Number)
		}
	}
}

func TestCommit_OnlineChannel(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	svc := newTestService(newFakeRepo(), store)

	order := New(ChannelOnline, id.New())
	order.AddLine(id.New(), nil, 1, types.MustMoney("10.00"))

	result, err := svc.Commit(ctx, order)
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if result.Order.Status != StatusPending {
		t.Errorf("online order status = %s, want PENDING", result.Order.Status)
	}

	facts, _ := store.Read(ctx, ledger.Filter{})
	if len(facts) != 1 || facts[0].Reason != ledger.ReasonSaleOnline {
		t.Errorf("expected one SALE_ONLINE fact, got %+v", facts)
	}
}

func TestCommit_ReplayReturnsOriginal(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	store := ledger.NewMemoryStore()
	svc := newTestService(repo, store)

	clientOrderID := id.New()
	first := posOrder(t)
	first.ClientOrderID = &clientOrderID

	firstResult, err := svc.Commit(ctx, first)
	if err != nil {
		t.Fatalf("first Commit failed: %v", err)
	}

	replay := New(ChannelPOS, first.LocationID)
	replay.ClientOrderID = &clientOrderID
	replay.AddLine(first.Items[0].ProductID, nil, 2, types.MustMoney("19.99"))
	replay.AddLine(first.Items[1].ProductID, nil, 1, types.MustMoney("5.00"))

	replayResult, err := svc.Commit(ctx, replay)
	if err != nil {
		t.Fatalf("replay Commit failed: %v", err)
	}
	if !replayResult.Duplicate {
		t.Error("replay not flagged as duplicate")
	}
	if replayResult.Order.Number != firstResult.Order.Number {
		t.Errorf("replay returned number %q, want original %q",
			replayResult.Order.Number, firstResult.Order.Number)
	}

	// The replay must not have written new facts.
	facts, _ := store.Read(ctx, ledger.Filter{})
	if len(facts) != 2 {
		t.Errorf("got %d facts after replay, want 2", len(facts))
	}
}

func TestCommit_DuplicateRaceFallsBackToOriginal(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	store := ledger.NewMemoryStore()
	svc := newTestService(repo, store)

	clientOrderID := id.New()
	first := posOrder(t)
	first.ClientOrderID = &clientOrderID
	if _, err := svc.Commit(ctx, first); err != nil {
		t.Fatalf("first Commit failed: %v", err)
	}

	// Simulate the race: the replay check misses, Create hits the unique
	// index. The fake repo enforces the index, so committing a second
	// order object with the same client id behaves exactly like two
	// concurrent writers.
	second := posOrder(t)
	second.ClientOrderID = &clientOrderID
	result, err := svc.Commit(ctx, second)
	if err != nil {
		t.Fatalf("racing Commit failed: %v", err)
	}
	if !result.Duplicate {
		t.Error("racing commit not flagged as duplicate")
	}
	if result.Order.ID != first.ID {
		t.Errorf("racing commit returned order %s, want original %s", result.Order.ID, first.ID)
	}
}

func TestCommit_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeRepo(), ledger.NewMemoryStore())

	tests := []struct {
		name  string
		order *Order
	}{
		{"no items", New(ChannelPOS, id.New())},
		{"unknown channel", func() *Order {
			o := New(Channel("phone"), id.New())
			o.AddLine(id.New(), nil, 1, types.MustMoney("1.00"))
			return o
		}()},
		{"nil location", func() *Order {
			o := New(ChannelPOS, id.Nil())
			o.AddLine(id.New(), nil, 1, types.MustMoney("1.00"))
			return o
		}()},
		{"zero quantity", func() *Order {
			o := New(ChannelPOS, id.New())
			o.AddLine(id.New(), nil, 0, types.MustMoney("1.00"))
			return o
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Commit(ctx, tt.order); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

// A commit that fails at the header write must leave the ledger untouched:
// no partial facts without an order.
func TestCommit_FailedCreateWritesNoFacts(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.failNow = apperror.NewDatabase(errors.New("connection reset"))
	store := ledger.NewMemoryStore()
	svc := newTestService(repo, store)

	if _, err := svc.Commit(ctx, posOrder(t)); err == nil {
		t.Fatal("expected commit error")
	}

	facts, err := store.Read(ctx, ledger.Filter{})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(facts) != 0 {
		t.Errorf("failed commit left %d facts behind", len(facts))
	}
}

// Committing against an empty ledger must succeed: sales are never blocked
// by stock levels, oversell surfaces later as a conflict.
func TestCommit_NoStockCheck(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	svc := newTestService(newFakeRepo(), store)

	productID := id.New()
	order := New(ChannelPOS, id.New())
	order.AddLine(productID, nil, 10, types.MustMoney("2.50"))

	if _, err := svc.Commit(ctx, order); err != nil {
		t.Fatalf("Commit with no stock failed: %v", err)
	}

	stock, err := store.Sum(ctx, ledger.Filter{ProductID: &productID})
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}
	if stock != -10 {
		t.Errorf("stock = %d, want -10 (oversold)", stock)
	}
}
