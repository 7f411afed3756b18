// Package cart owns the shopping cart: the canonical entry list, its
// mutation rules, and the mirroring of that list into the durable and
// session key-value scopes.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/Divy2095/Foodie/internal/money"
)

// PlaceholderImage is shown for entries whose dish has no image.
const PlaceholderImage = "images/placeholder.jpg"

// Entry is one line item. Identity within a cart is the exact dish
// name; two sellers offering an identically named dish are
// indistinguishable here, which is why checkout re-resolves seller
// ownership (see the checkout package).
//
// JSON field names match the payload the storefront has always stored,
// so carts written before this version still load.
type Entry struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	ImageURL string          `json:"imageUrl,omitempty"`
	SellerID string          `json:"restaurantid,omitempty"`
}

// LineTotal is the entry's price times its quantity.
func (e Entry) LineTotal() decimal.Decimal {
	return money.LineTotal(e.Price, e.Quantity)
}

// Subtotal sums line totals without intermediate rounding.
func Subtotal(entries []Entry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.LineTotal())
	}
	return sum
}

// Count is the badge count: total quantity across entries.
func Count(entries []Entry) int {
	n := 0
	for _, e := range entries {
		n += e.Quantity
	}
	return n
}
