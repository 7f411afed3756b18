package cart

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/Divy2095/Foodie/internal/kvstore"
)

// Storage keys, suffixed per user. The cart and its count live under
// independent durable keys and are always written together so the badge
// never drifts from the cart it summarizes.
const (
	durableCartKey  = "cart"
	durableCountKey = "cartCount"
	sessionCartKey  = "checkoutCart"
)

// Synchronizer mirrors one user's cart into the durable scope (survives
// restarts) and the session scope (hands the cart off to checkout).
type Synchronizer struct {
	durable kvstore.Store
	session kvstore.Store
	userID  string
}

func NewSynchronizer(durable, session kvstore.Store, userID string) *Synchronizer {
	return &Synchronizer{durable: durable, session: session, userID: userID}
}

func (y *Synchronizer) key(base string) string { return base + ":" + y.userID }

// Save writes the serialized cart and its derived count to the durable
// scope and mirrors the cart into the session scope.
func (y *Synchronizer) Save(ctx context.Context, entries []Entry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if err := y.durable.Set(ctx, y.key(durableCartKey), string(payload)); err != nil {
		return err
	}
	if err := y.durable.Set(ctx, y.key(durableCountKey), strconv.Itoa(Count(entries))); err != nil {
		return err
	}
	return y.session.Set(ctx, y.key(sessionCartKey), string(payload))
}

// Load restores a saved cart: session scope is preferred, the durable
// scope is the fallback and backfills the session scope when used. A
// corrupt payload reads as an empty cart, never as an error.
func (y *Synchronizer) Load(ctx context.Context) ([]Entry, error) {
	raw, err := y.session.Get(ctx, y.key(sessionCartKey))
	if errors.Is(err, kvstore.ErrNoValue) {
		raw, err = y.durable.Get(ctx, y.key(durableCartKey))
		if errors.Is(err, kvstore.ErrNoValue) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		_ = y.session.Set(ctx, y.key(sessionCartKey), raw)
	} else if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, nil
	}
	// Payloads written before the quantity field existed omit it; such
	// entries have always meant quantity 1.
	for i := range entries {
		if entries[i].Quantity < 1 {
			entries[i].Quantity = 1
		}
	}
	return entries, nil
}

// Stage refreshes both scopes right before the checkout hand-off.
func (y *Synchronizer) Stage(ctx context.Context, entries []Entry) error {
	return y.Save(ctx, entries)
}

// Count reads the badge count from the durable scope. Anything missing
// or unparseable counts as zero.
func (y *Synchronizer) Count(ctx context.Context) int {
	raw, err := y.durable.Get(ctx, y.key(durableCountKey))
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// Clear removes the cart from both scopes along with the count key.
// Called after a successful commit or an explicit cancel-to-home.
func (y *Synchronizer) Clear(ctx context.Context) error {
	if err := y.session.Remove(ctx, y.key(sessionCartKey)); err != nil {
		return err
	}
	if err := y.durable.Remove(ctx, y.key(durableCartKey)); err != nil {
		return err
	}
	return y.durable.Remove(ctx, y.key(durableCountKey))
}
