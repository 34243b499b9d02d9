package ledger

import (
	"testing"

	"stocktrail/internal/core/id"
)

func TestEntryValidate(t *testing.T) {
	productID := id.New()
	locationID := id.New()
	variantID := id.New()
	nilID := id.Nil()

	tests := []struct {
		name    string
		entry   Entry
		wantErr bool
	}{
		{
			name:  "valid sale",
			entry: NewEntry(productID, nil, locationID, -3, ReasonSalePOS, "SO-2026-00001"),
		},
		{
			name:  "valid restock with variant",
			entry: NewEntry(productID, &variantID, locationID, 100, ReasonRestock, "PO-77"),
		},
		{
			name:    "zero delta",
			entry:   NewEntry(productID, nil, locationID, 0, ReasonAdjust, ""),
			wantErr: true,
		},
		{
			name:    "missing product",
			entry:   NewEntry(id.Nil(), nil, locationID, 1, ReasonRestock, ""),
			wantErr: true,
		},
		{
			name:    "missing location",
			entry:   NewEntry(productID, nil, id.Nil(), 1, ReasonRestock, ""),
			wantErr: true,
		},
		{
			name:    "nil variant pointer value",
			entry:   NewEntry(productID, &nilID, locationID, 1, ReasonRestock, ""),
			wantErr: true,
		},
		{
			name:    "unknown reason",
			entry:   NewEntry(productID, nil, locationID, 1, ReasonCode("STOLEN"), ""),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseReasonCode(t *testing.T) {
	for _, valid := range []string{"SALE_POS", "SALE_ONLINE", "RESTOCK", "INITIAL_STOCK", "ADJUST", "DEBUG_ADJUST"} {
		if _, err := ParseReasonCode(valid); err != nil {
			t.Errorf("ParseReasonCode(%q) failed: %v", valid, err)
		}
	}

	for _, invalid := range []string{"", "sale_pos", "SALE", "RETURN"} {
		if _, err := ParseReasonCode(invalid); err == nil {
			t.Errorf("ParseReasonCode(%q) should fail", invalid)
		}
	}
}
