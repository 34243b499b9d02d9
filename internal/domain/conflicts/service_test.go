package conflicts

import (
	"context"
	"testing"

	"stocktrail/internal/core/apperror"
	"stocktrail/internal/core/id"
	"stocktrail/internal/core/types"
	"stocktrail/internal/domain/catalog"
	"stocktrail/internal/domain/ledger"
)

type fakeCatalog struct {
	products map[id.ID]*catalog.Product
}

func newFakeCatalog(products ...*catalog.Product) *fakeCatalog {
	f := &fakeCatalog{products: make(map[id.ID]*catalog.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeCatalog) Create(ctx context.Context, p *catalog.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeCatalog) Update(ctx context.Context, p *catalog.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeCatalog) GetByID(ctx context.Context, productID id.ID) (*catalog.Product, error) {
	if p, ok := f.products[productID]; ok {
		return p, nil
	}
	return nil, apperror.NewNotFound("product", productID.String())
}

func (f *fakeCatalog) GetBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	for _, p := range f.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("product", sku)
}

func (f *fakeCatalog) GetByIDs(ctx context.Context, productIDs []id.ID) (map[id.ID]*catalog.Product, error) {
	result := make(map[id.ID]*catalog.Product)
	for _, pid := range productIDs {
		if p, ok := f.products[pid]; ok {
			result[pid] = p
		}
	}
	return result, nil
}

func (f *fakeCatalog) List(ctx context.Context, filter catalog.ListFilter) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range f.products {
		if filter.OnlyActive && !p.Active {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

// Two channels selling the same last units: 5 on hand, two sales of 3 each.
// The second sale commits fine and the position goes to -1; detection must
// report exactly that oversell.
func TestDetect_Oversell(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()

	product := catalog.NewProduct("TSHIRT-M", "T-Shirt M", "apparel", types.MustMoney("15.00"))
	location := id.New()
	svc := NewService(store, newFakeCatalog(product))

	seed := []ledger.Entry{
		ledger.NewEntry(product.ID, nil, location, 5, ledger.ReasonInitialStock, ""),
		ledger.NewEntry(product.ID, nil, location, -3, ledger.ReasonSalePOS, "SO-1"),
		ledger.NewEntry(product.ID, nil, location, -3, ledger.ReasonSaleOnline, "SO-2"),
	}
	if err := store.AppendBatch(ctx, seed); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	found, err := svc.Detect(ctx)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(found))
	}

	c := found[0]
	if c.ProductID != product.ID || c.LocationID != location {
		t.Errorf("conflict keys mismatch: %+v", c)
	}
	if c.Stock != -1 || c.OversoldBy != 1 {
		t.Errorf("stock = %d oversoldBy = %d, want -1 and 1", c.Stock, c.OversoldBy)
	}
	if c.SKU != "TSHIRT-M" || c.Name != "T-Shirt M" {
		t.Errorf("catalog enrichment missing: %+v", c)
	}
}

func TestDetect_CleanLedger(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	product := catalog.NewProduct("MUG-01", "Mug", "kitchen", types.MustMoney("8.00"))
	svc := NewService(store, newFakeCatalog(product))

	location := id.New()
	if _, err := store.Append(ctx, ledger.NewEntry(product.ID, nil, location, 10, ledger.ReasonRestock, "PO-1")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	found, err := svc.Detect(ctx)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("got %d conflicts on a clean ledger, want 0", len(found))
	}
}

func TestResolve_AppendsCorrectiveFact(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	product := catalog.NewProduct("TSHIRT-M", "T-Shirt M", "apparel", types.MustMoney("15.00"))
	location := id.New()
	svc := NewService(store, newFakeCatalog(product))

	seed := []ledger.Entry{
		ledger.NewEntry(product.ID, nil, location, 5, ledger.ReasonInitialStock, ""),
		ledger.NewEntry(product.ID, nil, location, -6, ledger.ReasonSaleOnline, "SO-9"),
	}
	if err := store.AppendBatch(ctx, seed); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	entry, err := svc.Resolve(ctx, ResolveRequest{
		ProductID:  product.ID,
		LocationID: location,
		Action:     ActionAdjust,
		Quantity:   1,
		Note:       "recount found 1 unit",
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if entry.Reason != ledger.ReasonAdjust {
		t.Errorf("reason = %s, want ADJUST", entry.Reason)
	}
	if entry.Delta != 1 {
		t.Errorf("delta = %d, want 1", entry.Delta)
	}
	if entry.ReferenceDoc != "ADJUST: recount found 1 unit" {
		t.Errorf("reference = %q", entry.ReferenceDoc)
	}

	// Resolution is a new fact, never a rewrite: the sale history stays.
	facts, _ := store.Read(ctx, ledger.Filter{ProductID: &product.ID})
	if len(facts) != 3 {
		t.Errorf("got %d facts after resolve, want 3", len(facts))
	}

	found, err := svc.Detect(ctx)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("conflict persists after resolution: %+v", found)
	}
}

// An emergency restock resolution is still an ADJUST fact. The action is
// informational only, so audit queries over reason = ADJUST see every
// resolution regardless of how the units came back.
func TestResolve_EmergencyRestockIsAdjustFact(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	product := catalog.NewProduct("MUG-01", "Mug", "kitchen", types.MustMoney("8.00"))
	svc := NewService(store, newFakeCatalog(product))

	entry, err := svc.Resolve(ctx, ResolveRequest{
		ProductID:  product.ID,
		LocationID: id.New(),
		Action:     ActionEmergencyRestock,
		Quantity:   12,
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if entry.Reason != ledger.ReasonAdjust {
		t.Errorf("reason = %s, want ADJUST", entry.Reason)
	}
	if entry.ReferenceDoc != "EMERGENCY_RESTOCK" {
		t.Errorf("reference = %q, want the action recorded", entry.ReferenceDoc)
	}

	adjusts, err := store.Read(ctx, ledger.Filter{Reasons: []ledger.ReasonCode{ledger.ReasonAdjust}})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(adjusts) != 1 {
		t.Errorf("ADJUST filter found %d facts, want 1", len(adjusts))
	}
}

func TestResolve_Rejections(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	product := catalog.NewProduct("MUG-01", "Mug", "kitchen", types.MustMoney("8.00"))
	svc := NewService(store, newFakeCatalog(product))
	location := id.New()

	tests := []struct {
		name string
		req  ResolveRequest
	}{
		{"zero quantity", ResolveRequest{ProductID: product.ID, LocationID: location, Action: ActionAdjust}},
		{"negative quantity", ResolveRequest{ProductID: product.ID, LocationID: location, Action: ActionAdjust, Quantity: -2}},
		{"unknown action", ResolveRequest{ProductID: product.ID, LocationID: location, Action: Action("WRITE_OFF"), Quantity: 1}},
		{"unknown product", ResolveRequest{ProductID: id.New(), LocationID: location, Action: ActionAdjust, Quantity: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Resolve(ctx, tt.req); err == nil {
				t.Error("expected error")
			}
		})
	}
}
