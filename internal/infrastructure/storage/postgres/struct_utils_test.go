package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stocktrail/internal/core/id"
	"stocktrail/internal/domain/ledger"
	"stocktrail/internal/domain/orders"
)

func TestExtractDBColumns_LedgerEntry(t *testing.T) {
	cols := ExtractDBColumns[ledger.Entry]()

	expected := []string{
		"transaction_id", "product_id", "variant_id", "location_id",
		"delta", "reason", "reference_doc", "created_at",
	}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}
}

func TestStructToMap_OrderItem(t *testing.T) {
	item := orders.OrderItem{
		LineID:    id.New(),
		OrderID:   id.New(),
		LineNo:    3,
		ProductID: id.New(),
		Quantity:  2,
	}

	m := StructToMap(item)

	assert.Equal(t, item.LineID, m["line_id"])
	assert.Equal(t, item.OrderID, m["order_id"])
	assert.Equal(t, 3, m["line_no"])
	assert.Equal(t, item.ProductID, m["product_id"])
	assert.Equal(t, int64(2), m["quantity"])
}

func TestStructToMap_SkipsUntaggedFields(t *testing.T) {
	order := orders.Order{
		ID:    id.New(),
		Items: []orders.OrderItem{{LineNo: 1}},
	}

	m := StructToMap(order)

	assert.Equal(t, order.ID, m["id"])
	assert.NotContains(t, m, "items")
	assert.NotContains(t, m, "-")
}
