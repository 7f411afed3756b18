// Package money holds the cart's fixed-point price arithmetic.
// Amounts are decimal values (NUMERIC-style, never float); rounding to
// two places happens only when a value is formatted for display.
package money

import "github.com/shopspring/decimal"

// DeliveryFee is charged exactly once per checkout, regardless of how
// many restaurants the cart spans.
var DeliveryFee = decimal.NewFromInt(40)

// LineTotal is price times quantity for a single cart entry.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// GrandTotal adds the flat delivery fee to a subtotal.
func GrandTotal(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Add(DeliveryFee)
}

// Display renders an amount with exactly two decimal places.
func Display(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
