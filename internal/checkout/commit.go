package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Divy2095/Foodie/internal/cart"
	"github.com/Divy2095/Foodie/internal/catalog"
	"github.com/Divy2095/Foodie/internal/docstore"
	"github.com/Divy2095/Foodie/internal/identity"
	"github.com/Divy2095/Foodie/internal/money"
	"github.com/Divy2095/Foodie/internal/payment"
)

const (
	buyersCollection = "users"
	ordersField      = "orders"
)

// Committer persists a finalized order set: one de-duplicating append
// per affected seller plus a single batched append to the buyer's
// history. The appends are independent writes, not a transaction; if
// one fails after another succeeded the stores are torn and the caller
// can only retry.
type Committer struct {
	docs docstore.Store
}

func NewCommitter(docs docstore.Store) *Committer { return &Committer{docs: docs} }

func (c *Committer) Commit(ctx context.Context, buyerID string, records []OrderRecord) error {
	if len(records) == 0 {
		return ErrEmptyCart
	}

	sellerCopies := make(map[string][]any)
	buyerCopies := make([]any, 0, len(records))
	for _, rec := range records {
		if rec.SellerID == "" {
			return fmt.Errorf("order record %q has no restaurant id", rec.Name)
		}

		sellerFields, err := c.docs.GetDocument(ctx, catalog.Collection, rec.SellerID)
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("restaurant %s not found", rec.SellerID)
		}
		if err != nil {
			return err
		}

		sellerCopy, err := docstore.Encode(rec)
		if err != nil {
			return err
		}
		sellerCopies[rec.SellerID] = append(sellerCopies[rec.SellerID], sellerCopy)

		buyerRec := rec
		buyerRec.SellerID = ""
		buyerRec.DeliveryInfo = nil
		buyerRec.RestaurantName, _ = sellerFields["name"].(string)
		buyerCopy, err := docstore.Encode(buyerRec)
		if err != nil {
			return err
		}
		buyerCopies = append(buyerCopies, buyerCopy)
	}

	// Per-seller appends go out concurrently; the buyer history lands as
	// one batched append covering every record.
	g, gctx := errgroup.WithContext(ctx)
	for sellerID, copies := range sellerCopies {
		sellerID, copies := sellerID, copies
		g.Go(func() error {
			if err := c.docs.AppendToArrayField(gctx, catalog.Collection, sellerID, ordersField, copies...); err != nil {
				return fmt.Errorf("append orders to restaurant %s: %w", sellerID, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		if err := c.docs.AppendToArrayField(gctx, buyersCollection, buyerID, ordersField, buyerCopies...); err != nil {
			return fmt.Errorf("append orders to user %s: %w", buyerID, err)
		}
		return nil
	})
	return g.Wait()
}

// Service runs the whole checkout: reconcile, charge, commit, clear.
type Service struct {
	reconciler *Reconciler
	payments   payment.Processor
	committer  *Committer
}

func NewService(r *Reconciler, p payment.Processor, c *Committer) *Service {
	return &Service{reconciler: r, payments: p, committer: c}
}

// Checkout processes the cart session's current snapshot. On any
// failure the cart and its storage mirrors are left intact so the user
// can correct and retry; only a fully committed order clears them.
func (s *Service) Checkout(ctx context.Context, session *cart.Session, buyer identity.User, info DeliveryInfo) ([]OrderRecord, error) {
	entries := session.Store.Snapshot()
	resolved, err := s.reconciler.Resolve(ctx, entries)
	if err != nil {
		return nil, err
	}
	// Hand the resolved cart off through both scopes before paying.
	if err := session.Sync.Stage(ctx, resolved); err != nil {
		return nil, err
	}

	total := money.GrandTotal(cart.Subtotal(resolved))
	if err := s.payments.Charge(ctx, total); err != nil {
		return nil, fmt.Errorf("payment failed: %w", err)
	}

	records := Finalize(resolved, buyer, info, time.Now())
	if err := s.committer.Commit(ctx, buyer.ID, records); err != nil {
		return nil, err
	}

	session.Store.Clear()
	if err := session.Sync.Clear(ctx); err != nil {
		// The order is committed; a stale mirror must not fail it.
		log.Printf("[checkout] clear cart storage for %s: %v", buyer.ID, err)
	}
	return records, nil
}
