package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/Divy2095/Foodie/internal/docstore"
)

// Collection is the seller collection in the document store.
const Collection = "restaurants"

var (
	ErrNotFound     = errors.New("restaurant not found")
	ErrDishNotFound = errors.New("dish not found")
)

// Service reads and writes restaurant documents. Full listings (used by
// the homepage and by checkout's seller backfill) go through
// singleflight so concurrent requests share one store round trip.
type Service struct {
	docs docstore.Store
	sfg  singleflight.Group
}

func NewService(docs docstore.Store) *Service {
	return &Service{docs: docs}
}

// Register creates or replaces a seller document. A missing ID is
// assigned here.
func (s *Service) Register(ctx context.Context, r *Restaurant) error {
	if r.Name == "" {
		return errors.New("restaurant name is required")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Menu == nil {
		r.Menu = []Dish{}
	}
	fields, err := docstore.Encode(r)
	if err != nil {
		return err
	}
	delete(fields, "id")
	return s.docs.SetFields(ctx, Collection, r.ID, fields)
}

func (s *Service) Get(ctx context.Context, id string) (*Restaurant, error) {
	fields, err := s.docs.GetDocument(ctx, Collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var r Restaurant
	if err := docstore.Decode(fields, &r); err != nil {
		return nil, err
	}
	r.ID = id
	return &r, nil
}

// List returns every seller with its menu. The fetch is shared across
// concurrent callers and detached from the initiating request, so one
// cancelled caller does not fail the others joined to it.
func (s *Service) List(ctx context.Context) ([]Restaurant, error) {
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := s.sfg.Do("list", func() (interface{}, error) {
		docs, err := s.docs.ListDocuments(fetchCtx, Collection)
		if err != nil {
			return nil, err
		}
		out := make([]Restaurant, 0, len(docs))
		for _, d := range docs {
			var r Restaurant
			if err := docstore.Decode(d.Fields, &r); err != nil {
				return nil, err
			}
			r.ID = d.ID
			out = append(out, r)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Restaurant), nil
}

// AddDish appends a dish to the menu array. The store's append
// de-duplicates, so re-submitting the same dish is harmless.
func (s *Service) AddDish(ctx context.Context, restaurantID string, dish Dish) error {
	if dish.Name == "" {
		return errors.New("dish name is required")
	}
	if _, err := s.Get(ctx, restaurantID); err != nil {
		return err
	}
	fields, err := docstore.Encode(dish)
	if err != nil {
		return err
	}
	return s.docs.AppendToArrayField(ctx, Collection, restaurantID, "menu", fields)
}

// UpdateDish replaces the dish at the given menu position and writes
// the whole menu back, the same shape the edit flow has always used.
func (s *Service) UpdateDish(ctx context.Context, restaurantID string, index int, dish Dish) error {
	r, err := s.Get(ctx, restaurantID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(r.Menu) {
		return ErrDishNotFound
	}
	if dish.ImageURL == "" {
		dish.ImageURL = r.Menu[index].ImageURL
	}
	r.Menu[index] = dish
	return s.writeMenu(ctx, restaurantID, r.Menu)
}

// RemoveDish deletes the dish at the given menu position.
func (s *Service) RemoveDish(ctx context.Context, restaurantID string, index int) error {
	r, err := s.Get(ctx, restaurantID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(r.Menu) {
		return ErrDishNotFound
	}
	r.Menu = append(r.Menu[:index], r.Menu[index+1:]...)
	return s.writeMenu(ctx, restaurantID, r.Menu)
}

// Orders returns the seller's received order records, raw.
func (s *Service) Orders(ctx context.Context, restaurantID string) ([]any, error) {
	fields, err := s.docs.GetDocument(ctx, Collection, restaurantID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	orders, _ := fields["orders"].([]any)
	return orders, nil
}

func (s *Service) writeMenu(ctx context.Context, restaurantID string, menu []Dish) error {
	fields, err := docstore.Encode(map[string]any{"menu": menu})
	if err != nil {
		return fmt.Errorf("encode menu: %w", err)
	}
	return s.docs.SetFields(ctx, Collection, restaurantID, fields)
}
