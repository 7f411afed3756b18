// Package checkout turns a cart snapshot into persisted order records:
// it resolves each entry to its owning restaurant, takes payment, and
// commits the finalized set to the buyer and every affected seller.
package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Divy2095/Foodie/internal/cart"
	"github.com/Divy2095/Foodie/internal/identity"
)

// StatusPaid is the status every order record starts with. Later
// transitions belong to the seller-facing workflow, not to checkout.
const StatusPaid = "Paid"

// DeliveryInfo is collected on the payment form. It travels only on the
// seller-visible copy of an order.
type DeliveryInfo struct {
	Address        string `json:"address"`
	Landmark       string `json:"landmark,omitempty"`
	Phone          string `json:"phone"`
	DeliveryStatus string `json:"deliveryStatus"`
}

// OrderRecord is write-once. ItemTotal is computed here and frozen;
// displayed totals are always recomputed from it, never rewritten.
//
// The seller copy keeps SellerID and DeliveryInfo; the buyer copy drops
// both and carries RestaurantName instead.
type OrderRecord struct {
	OrderID        string          `json:"orderId"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	ImageURL       string          `json:"imageUrl,omitempty"`
	SellerID       string          `json:"restaurantid,omitempty"`
	RestaurantName string          `json:"restaurantName,omitempty"`
	ItemTotal      decimal.Decimal `json:"itemTotal"`
	OrderedBy      string          `json:"orderedBy"`
	OrderedAt      string          `json:"orderedAt"`
	UserName       string          `json:"userName"`
	Status         string          `json:"orderStatus"`
	DeliveryInfo   *DeliveryInfo   `json:"deliveryInfo,omitempty"`
}

// Finalize builds one order record per resolved cart entry, attaching
// buyer identity and timestamp metadata. Entries must already carry a
// seller id.
func Finalize(entries []cart.Entry, buyer identity.User, info DeliveryInfo, now time.Time) []OrderRecord {
	if info.DeliveryStatus == "" {
		info.DeliveryStatus = "Pending"
	}
	orderedAt := now.UTC().Format(time.RFC3339)
	records := make([]OrderRecord, 0, len(entries))
	for _, e := range entries {
		rec := OrderRecord{
			OrderID:      uuid.NewString(),
			Name:         e.Name,
			Price:        e.Price,
			Quantity:     e.Quantity,
			ImageURL:     e.ImageURL,
			SellerID:     e.SellerID,
			ItemTotal:    e.LineTotal(),
			OrderedBy:    buyer.Email,
			OrderedAt:    orderedAt,
			UserName:     buyer.Name(),
			Status:       StatusPaid,
			DeliveryInfo: &info,
		}
		records = append(records, rec)
	}
	return records
}
