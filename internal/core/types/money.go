// Package types provides shared value types.
//
// Quantities in the ledger are whole sales units and use plain int64,
// since retail stock is counted, not measured. Monetary values use
// decimal.Decimal to avoid floating-point drift in totals.
package types

import (
	"github.com/shopspring/decimal"
)

// Money is a monetary value with full decimal precision.
type Money = decimal.Decimal

// NewMoneyFromString parses a Money value from its decimal string form.
// Preferred constructor for prices coming off the wire.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney parses a Money value, panicking on error. Constants and tests only.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ZeroMoney returns the zero Money value.
func ZeroMoney() Money {
	return decimal.Zero
}

// LineAmount computes quantity * unitPrice.
func LineAmount(quantity int64, unitPrice Money) Money {
	return unitPrice.Mul(decimal.NewFromInt(quantity))
}
