package favorites

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ilmekten/shop-backend/pkg/kvstore"
)

const storageKey = "favorites"

// Service keeps the shopper's favorite product IDs. Favorites are pure
// bookmarks; a favorited product that later disappears from the catalog
// simply renders as nothing.
type Service struct {
	store kvstore.Store

	mu  sync.Mutex
	ids []int64
}

func NewService(ctx context.Context, store kvstore.Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	s := &Service{store: store}
	if err := store.Get(ctx, storageKey, &s.ids); err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, err
	}
	return s, nil
}

// Toggle flips a product's favorite state and reports whether it is now
// favorited.
func (s *Service) Toggle(ctx context.Context, productID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]int64, 0, len(s.ids)+1)
	removed := false
	for _, id := range s.ids {
		if id == productID {
			removed = true
			continue
		}
		next = append(next, id)
	}
	if !removed {
		next = append(next, productID)
	}

	if err := s.store.Set(ctx, storageKey, next); err != nil {
		return false, err
	}
	s.ids = next
	return !removed, nil
}

// List returns the favorited product IDs in insertion order.
func (s *Service) List(ctx context.Context) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.ids))
	copy(out, s.ids)
	return out
}
