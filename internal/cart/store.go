package cart

import "sync"

// Store holds the canonical entry list for one user. All mutations keep
// the invariants: at most one entry per dish name, quantity >= 1.
//
// The caller is responsible for requiring an authenticated user before
// mutating; the store itself has no notion of identity.
type Store struct {
	mu      sync.Mutex
	entries []Entry
}

func NewStore() *Store { return &Store{} }

// AddItem increments the quantity of an existing entry with the same
// name, or appends a new entry with quantity 1. The seller association
// is overwritten either way: last writer wins.
func (s *Store) AddItem(dish Entry, sellerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].Name == dish.Name {
			s.entries[i].Quantity++
			s.entries[i].SellerID = sellerID
			return
		}
	}
	dish.Quantity = 1
	dish.SellerID = sellerID
	if dish.ImageURL == "" {
		dish.ImageURL = PlaceholderImage
	}
	s.entries = append(s.entries, dish)
}

// SetQuantity sets the quantity of the named entry, removing it when
// quantity drops below 1. No-op when no entry matches.
func (s *Store) SetQuantity(name string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quantity < 1 {
		kept := s.entries[:0]
		for _, e := range s.entries {
			if e.Name != name {
				kept = append(kept, e)
			}
		}
		s.entries = kept
		return
	}
	for i := range s.entries {
		if s.entries[i].Name == name {
			s.entries[i].Quantity = quantity
			return
		}
	}
}

// RemoveItem drops the named entry.
func (s *Store) RemoveItem(name string) { s.SetQuantity(name, 0) }

// Snapshot returns an independent ordered copy of the entries, safe to
// hand to rendering or checkout.
func (s *Store) Snapshot() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

// Restore replaces the entries wholesale, used when loading a saved
// cart from storage.
func (s *Store) Restore(entries []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]Entry(nil), entries...)
}

// Clear empties the cart. Called only after a confirmed order commit.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// ItemCount is the total quantity across entries (the badge count).
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Count(s.entries)
}
