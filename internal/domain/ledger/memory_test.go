package ledger

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"stocktrail/internal/core/id"
)

func TestMemoryStore_SumAndPositions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	productA := id.New()
	productB := id.New()
	locMain := id.New()
	locWeb := id.New()

	facts := []Entry{
		NewEntry(productA, nil, locMain, 100, ReasonInitialStock, ""),
		NewEntry(productA, nil, locMain, -3, ReasonSalePOS, "SO-1"),
		NewEntry(productA, nil, locWeb, -5, ReasonSaleOnline, "SO-2"),
		NewEntry(productB, nil, locMain, 20, ReasonRestock, "PO-1"),
		NewEntry(productB, nil, locMain, -25, ReasonSaleOnline, "SO-3"),
	}
	if err := store.AppendBatch(ctx, facts); err != nil {
		t.Fatalf("AppendBatch failed: %v", err)
	}

	sumA, err := store.Sum(ctx, Filter{ProductID: &productA})
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}
	if sumA != 92 {
		t.Errorf("product A stock = %d, want 92", sumA)
	}

	sumAMain, err := store.Sum(ctx, Filter{ProductID: &productA, LocationID: &locMain})
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}
	if sumAMain != 97 {
		t.Errorf("product A main stock = %d, want 97", sumAMain)
	}

	positions, err := store.Positions(ctx)
	if err != nil {
		t.Fatalf("Positions failed: %v", err)
	}
	if len(positions) != 3 {
		t.Fatalf("got %d positions, want 3", len(positions))
	}
	for _, p := range positions {
		if p.ProductID == productB && p.Stock != -5 {
			t.Errorf("product B position = %d, want -5 (oversold)", p.Stock)
		}
	}
}

func TestMemoryStore_ReadFilters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	product := id.New()
	location := id.New()

	if _, err := store.Append(ctx, NewEntry(product, nil, location, 10, ReasonInitialStock, "")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := store.Append(ctx, NewEntry(product, nil, location, -1, ReasonSalePOS, "SO")); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	sales, err := store.Read(ctx, Filter{Reasons: []ReasonCode{ReasonSalePOS}})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(sales) != 4 {
		t.Errorf("got %d sale facts, want 4", len(sales))
	}

	page, err := store.Read(ctx, Filter{ProductID: &product, Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("got %d facts, want 2", len(page))
	}

	future := time.Now().Add(time.Hour)
	none, err := store.Read(ctx, Filter{From: &future})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("got %d future facts, want 0", len(none))
	}
}

func TestMemoryStore_RejectsInvalidBatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	product := id.New()
	location := id.New()

	batch := []Entry{
		NewEntry(product, nil, location, 5, ReasonRestock, ""),
		NewEntry(product, nil, location, 0, ReasonRestock, ""), // invalid
	}
	if err := store.AppendBatch(ctx, batch); err == nil {
		t.Fatal("expected batch validation error")
	}

	sum, err := store.Sum(ctx, Filter{})
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}
	if sum != 0 {
		t.Errorf("invalid batch left %d units behind, want 0", sum)
	}
}

// Independent appends commute: the aggregate only depends on the set of
// facts, never on arrival order. Two channels racing on the same position
// therefore cannot produce divergent stock figures.
func TestAppend_OrderIndependence(t *testing.T) {
	ctx := context.Background()
	product := id.New()
	location := id.New()

	facts := []Entry{
		NewEntry(product, nil, location, 5, ReasonInitialStock, ""),
		NewEntry(product, nil, location, -3, ReasonSalePOS, "SO-1"),
		NewEntry(product, nil, location, -3, ReasonSaleOnline, "SO-2"),
		NewEntry(product, nil, location, 2, ReasonAdjust, "recount"),
	}

	forward := NewMemoryStore()
	for _, f := range facts {
		if _, err := forward.Append(ctx, f); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	reversed := NewMemoryStore()
	for i := len(facts) - 1; i >= 0; i-- {
		if _, err := reversed.Append(ctx, facts[i]); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	a, _ := forward.Sum(ctx, Filter{ProductID: &product})
	b, _ := reversed.Sum(ctx, Filter{ProductID: &product})
	if a != b {
		t.Errorf("sum depends on order: %d vs %d", a, b)
	}
	if a != 1 {
		t.Errorf("sum = %d, want 1", a)
	}
}

// TestAggregator_ReplayConservation drives random signed facts through the
// store and checks that every derived figure matches an independently kept
// running total. Stock is a pure fold over the log, so no sequence of
// appends may ever disagree with replay.
func TestAggregator_ReplayConservation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	agg := NewAggregator(store)

	rng := rand.New(rand.NewSource(42))
	products := []id.ID{id.New(), id.New(), id.New()}
	locations := []id.ID{id.New(), id.New()}
	reasons := []ReasonCode{ReasonSalePOS, ReasonSaleOnline, ReasonRestock, ReasonAdjust}

	type key struct{ p, l id.ID }
	expected := make(map[key]int64)

	for i := 0; i < 500; i++ {
		p := products[rng.Intn(len(products))]
		l := locations[rng.Intn(len(locations))]
		r := reasons[rng.Intn(len(reasons))]

		delta := rng.Int63n(20) + 1
		if r == ReasonSalePOS || r == ReasonSaleOnline {
			delta = -delta
		}

		if _, err := store.Append(ctx, NewEntry(p, nil, l, delta, r, "")); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		expected[key{p, l}] += delta
	}

	for _, p := range products {
		var want int64
		for _, l := range locations {
			want += expected[key{p, l}]

			perLoc, err := agg.CurrentStock(ctx, p, nil, &l)
			if err != nil {
				t.Fatalf("CurrentStock failed: %v", err)
			}
			if perLoc != expected[key{p, l}] {
				t.Errorf("stock(%s, %s) = %d, want %d", p, l, perLoc, expected[key{p, l}])
			}
		}

		got, err := agg.CurrentStock(ctx, p, nil, nil)
		if err != nil {
			t.Fatalf("CurrentStock failed: %v", err)
		}
		if got != want {
			t.Errorf("stock(%s) = %d, want %d", p, got, want)
		}
	}

	positions, err := agg.Positions(ctx)
	if err != nil {
		t.Fatalf("Positions failed: %v", err)
	}
	var posTotal, expTotal int64
	for _, pos := range positions {
		posTotal += pos.Stock
	}
	for _, v := range expected {
		expTotal += v
	}
	if posTotal != expTotal {
		t.Errorf("positions total = %d, want %d", posTotal, expTotal)
	}
}
