package snapshot

import (
	"context"
	"testing"
	"time"

	"stocktrail/internal/core/apperror"
	"stocktrail/internal/core/id"
	"stocktrail/internal/core/types"
	"stocktrail/internal/domain/catalog"
	"stocktrail/internal/domain/ledger"
)

type stubCatalog struct {
	products []catalog.Product
}

func (s *stubCatalog) Create(ctx context.Context, p *catalog.Product) error { return nil }
func (s *stubCatalog) Update(ctx context.Context, p *catalog.Product) error { return nil }

func (s *stubCatalog) GetByID(ctx context.Context, productID id.ID) (*catalog.Product, error) {
	for i := range s.products {
		if s.products[i].ID == productID {
			return &s.products[i], nil
		}
	}
	return nil, apperror.NewNotFound("product", productID.String())
}

func (s *stubCatalog) GetBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	return nil, apperror.NewNotFound("product", sku)
}

func (s *stubCatalog) GetByIDs(ctx context.Context, productIDs []id.ID) (map[id.ID]*catalog.Product, error) {
	result := make(map[id.ID]*catalog.Product)
	for i := range s.products {
		for _, pid := range productIDs {
			if s.products[i].ID == pid {
				result[pid] = &s.products[i]
			}
		}
	}
	return result, nil
}

func (s *stubCatalog) List(ctx context.Context, filter catalog.ListFilter) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range s.products {
		if filter.OnlyActive && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func TestBuild_SumsStockAcrossLocations(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()

	shirt := catalog.NewProduct("TSHIRT-M", "T-Shirt M", "apparel", types.MustMoney("15.00"))
	mug := catalog.NewProduct("MUG-01", "Mug", "kitchen", types.MustMoney("8.00"))
	retired := catalog.NewProduct("OLD-01", "Retired", "misc", types.MustMoney("1.00"))
	retired.Active = false

	locA := id.New()
	locB := id.New()
	seed := []ledger.Entry{
		ledger.NewEntry(shirt.ID, nil, locA, 10, ledger.ReasonInitialStock, ""),
		ledger.NewEntry(shirt.ID, nil, locB, 4, ledger.ReasonRestock, "PO-1"),
		ledger.NewEntry(shirt.ID, nil, locA, -3, ledger.ReasonSalePOS, "SO-1"),
		ledger.NewEntry(retired.ID, nil, locA, 99, ledger.ReasonInitialStock, ""),
	}
	if err := store.AppendBatch(ctx, seed); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	builder := NewBuilder(&stubCatalog{products: []catalog.Product{*shirt, *mug, *retired}}, store)
	snap, err := builder.Build(ctx)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(snap.Items) != 2 {
		t.Fatalf("got %d items, want 2 (inactive product excluded)", len(snap.Items))
	}
	byID := make(map[id.ID]Item)
	for _, item := range snap.Items {
		byID[item.ProductID] = item
	}

	if got := byID[shirt.ID].Stock; got != 11 {
		t.Errorf("shirt stock = %d, want 11 (10 + 4 - 3 across locations)", got)
	}
	// A product with no ledger facts still ships, at zero.
	if got := byID[mug.ID].Stock; got != 0 {
		t.Errorf("mug stock = %d, want 0", got)
	}
	if snap.TakenAt.IsZero() {
		t.Error("TakenAt not set")
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	codec, err := NewCodec()
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	original := &Snapshot{
		TakenAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Items: []Item{
			{ProductID: id.New(), SKU: "TSHIRT-M", Name: "T-Shirt M", Category: "apparel", Price: types.MustMoney("15.00"), Stock: 11},
			{ProductID: id.New(), SKU: "MUG-01", Name: "Mug", Category: "kitchen", Price: types.MustMoney("8.00"), Stock: -2},
		},
	}

	payload, err := codec.Encode(original)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := codec.Decode(payload)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !decoded.TakenAt.Equal(original.TakenAt) {
		t.Errorf("TakenAt = %v, want %v", decoded.TakenAt, original.TakenAt)
	}
	if len(decoded.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(decoded.Items))
	}
	for i := range original.Items {
		want, got := original.Items[i], decoded.Items[i]
		if got.ProductID != want.ProductID || got.SKU != want.SKU || got.Stock != want.Stock {
			t.Errorf("item %d mismatch: got %+v want %+v", i, got, want)
		}
		if !got.Price.Equal(want.Price) {
			t.Errorf("item %d price = %s, want %s", i, got.Price, want.Price)
		}
	}
}

func TestCodec_RejectsGarbage(t *testing.T) {
	codec, err := NewCodec()
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	if _, err := codec.Decode([]byte("not zstd at all")); err == nil {
		t.Error("expected decode error on garbage input")
	}
}
