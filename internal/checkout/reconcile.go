package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/Divy2095/Foodie/internal/cart"
	"github.com/Divy2095/Foodie/internal/catalog"
)

var ErrEmptyCart = errors.New("checkout: cart is empty")

// UnresolvedDishError reports a cart entry whose owning restaurant
// could not be determined. The whole checkout fails; no partial order
// is emitted.
type UnresolvedDishError struct {
	Dish string
}

func (e *UnresolvedDishError) Error() string {
	return fmt.Sprintf("could not find restaurant for item %q, please try adding it to the cart again", e.Dish)
}

// Reconciler backfills missing seller associations at checkout time.
// Entries restored from storage written before a seller binding was
// recorded are the only expected source of such gaps.
type Reconciler struct {
	catalog *catalog.Service
}

func NewReconciler(c *catalog.Service) *Reconciler { return &Reconciler{catalog: c} }

// Resolve returns a copy of the entries in which every entry carries a
// seller id. An entry already bound is accepted as-is; an unbound entry
// is matched against every seller's menu by exact name and price, first
// match wins. Two sellers coincidentally offering an identically named,
// identically priced dish are inherently ambiguous here.
func (r *Reconciler) Resolve(ctx context.Context, entries []cart.Entry) ([]cart.Entry, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCart
	}

	var sellers []catalog.Restaurant // fetched only if an entry needs backfill
	out := make([]cart.Entry, 0, len(entries))
	for _, e := range entries {
		if e.SellerID != "" {
			out = append(out, e)
			continue
		}
		if sellers == nil {
			var err error
			sellers, err = r.catalog.List(ctx)
			if err != nil {
				return nil, fmt.Errorf("load restaurants: %w", err)
			}
		}
		id := findOwner(sellers, e)
		if id == "" {
			return nil, &UnresolvedDishError{Dish: e.Name}
		}
		e.SellerID = id
		out = append(out, e)
	}
	return out, nil
}

func findOwner(sellers []catalog.Restaurant, e cart.Entry) string {
	for _, r := range sellers {
		for _, dish := range r.Menu {
			if dish.Name == e.Name && dish.Price.Equal(e.Price) {
				return r.ID
			}
		}
	}
	return ""
}
