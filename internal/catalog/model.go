// Package catalog manages sellers: restaurant documents with their
// embedded menus, and the order arrays sellers receive at commit time.
package catalog

import "github.com/shopspring/decimal"

// Dish is one purchasable menu item. Within a single restaurant the
// name doubles as the dish identity; there is no separate dish id.
type Dish struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

// Restaurant is a seller document. Menu and orders live embedded in the
// document, mirroring the hosted-database layout the storefront has
// always used.
type Restaurant struct {
	ID      string  `json:"id,omitempty"`
	Name    string  `json:"name"`
	Address string  `json:"address,omitempty"`
	Open    string  `json:"open,omitempty"`
	Close   string  `json:"close,omitempty"`
	Rating  float64 `json:"rating,omitempty"`
	OwnerID string  `json:"ownerId,omitempty"`
	Menu    []Dish  `json:"menu"`
}
