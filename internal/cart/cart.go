package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ilmekten/shop-backend/internal/catalog"
	"github.com/ilmekten/shop-backend/pkg/kvstore"
)

const storageKey = "cart"

// Line is a cart entry. Only the product reference and the quantity live
// here; prices are resolved against the live catalog at pricing time.
type Line struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// ProductFinder is the slice of the catalog the cart needs.
type ProductFinder interface {
	FindByID(ctx context.Context, id int64) (*catalog.Product, error)
}

// Service holds the single shopper's cart. Mutations persist the whole line
// slice; on a failed write the in-memory state is rolled back so memory and
// storage stay in step.
type Service struct {
	store    kvstore.Store
	products ProductFinder

	mu    sync.Mutex
	lines []Line
}

func NewService(ctx context.Context, store kvstore.Store, products ProductFinder) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	s := &Service{store: store, products: products}
	if err := store.Get(ctx, storageKey, &s.lines); err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, err
	}
	return s, nil
}

// Add increments the line for productID by qty, creating it if absent. Adding
// a product that no longer exists in the catalog is a silent no-op; the
// storefront may hold stale product cards.
func (s *Service) Add(ctx context.Context, productID int64, qty int64) error {
	if qty <= 0 {
		qty = 1
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copyLines()
	found := false
	for i := range next {
		if next[i].ProductID == productID {
			next[i].Quantity += qty
			found = true
			break
		}
	}
	if !found {
		next = append(next, Line{ProductID: productID, Quantity: qty})
	}
	return s.persist(ctx, next)
}

// SetQuantity pins the line's quantity; zero or negative removes the line.
func (s *Service) SetQuantity(ctx context.Context, productID int64, qty int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty <= 0 {
		return s.persist(ctx, s.linesWithout(productID))
	}

	next := s.copyLines()
	for i := range next {
		if next[i].ProductID == productID {
			next[i].Quantity = qty
			return s.persist(ctx, next)
		}
	}
	return nil
}

// Remove drops the line entirely.
func (s *Service) Remove(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx, s.linesWithout(productID))
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx, []Line{})
}

// Snapshot returns a copy of the cart lines; callers may not mutate cart
// state through it.
func (s *Service) Snapshot(ctx context.Context) []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLines()
}

func (s *Service) copyLines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Service) linesWithout(productID int64) []Line {
	next := make([]Line, 0, len(s.lines))
	for _, l := range s.lines {
		if l.ProductID != productID {
			next = append(next, l)
		}
	}
	return next
}

// persist writes next and only then adopts it. Caller holds s.mu.
func (s *Service) persist(ctx context.Context, next []Line) error {
	if err := s.store.Set(ctx, storageKey, next); err != nil {
		return err
	}
	s.lines = next
	return nil
}
