package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	pkgerrors "github.com/ilmekten/shop-backend/pkg/errors"
	"github.com/ilmekten/shop-backend/pkg/kvstore"
)

const storageKey = "products"

// Service owns the product catalog: reads for the storefront, writes for the
// single admin operator. The catalog payload carries product imagery in the
// original store, so writes go through the backup-then-write path.
type Service struct {
	store kvstore.Store

	mu       sync.RWMutex
	products []Product
	lastID   int64

	now func() time.Time
}

// NewService loads the persisted catalog; a missing key yields an empty one.
func NewService(ctx context.Context, store kvstore.Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	s := &Service{store: store, now: time.Now}
	if err := store.Get(ctx, storageKey, &s.products); err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, err
	}
	for _, p := range s.products {
		if p.ID > s.lastID {
			s.lastID = p.ID
		}
	}
	return s, nil
}

// List returns a copy of every product.
func (s *Service) List(ctx context.Context) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

// FindByID returns the product or a NOT_FOUND error.
func (s *Service) FindByID(ctx context.Context, id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %d not found", id)
}

// ProductInput carries the admin-editable product fields.
type ProductInput struct {
	Name           string
	Category       string
	Price          int64
	Discount       int64
	ProductionDays int
}

func (in ProductInput) validate() error {
	if in.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if in.Price <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product price must be positive")
	}
	if in.Discount < 0 || in.Discount > 100 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product discount must be between 0 and 100")
	}
	if in.ProductionDays <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "production days must be positive")
	}
	return nil
}

// Create appends a new product and persists the catalog.
func (s *Service) Create(ctx context.Context, input ProductInput) (*Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}

	product := Product{
		ID:             id,
		Name:           input.Name,
		Category:       input.Category,
		Price:          input.Price,
		Discount:       input.Discount,
		ProductionDays: input.ProductionDays,
	}

	next := append(append([]Product{}, s.products...), product)
	if err := kvstore.SetWithBackup(ctx, s.store, storageKey, next); err != nil {
		return nil, err
	}
	s.products = next
	s.lastID = id
	return &product, nil
}

// Update overwrites the editable fields of an existing product.
func (s *Service) Update(ctx context.Context, id int64, input ProductInput) (*Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.products {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %d not found", id)
	}

	next := make([]Product, len(s.products))
	copy(next, s.products)
	next[idx].Name = input.Name
	next[idx].Category = input.Category
	next[idx].Price = input.Price
	next[idx].Discount = input.Discount
	next[idx].ProductionDays = input.ProductionDays

	if err := kvstore.SetWithBackup(ctx, s.store, storageKey, next); err != nil {
		return nil, err
	}
	s.products = next
	updated := next[idx]
	return &updated, nil
}

// Delete removes a product. Carts referencing it keep their lines; pricing
// skips them.
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Product, 0, len(s.products))
	found := false
	for _, p := range s.products {
		if p.ID == id {
			found = true
			continue
		}
		next = append(next, p)
	}
	if !found {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "product %d not found", id)
	}

	if err := kvstore.SetWithBackup(ctx, s.store, storageKey, next); err != nil {
		return err
	}
	s.products = next
	return nil
}

// Seed replaces the catalog wholesale; used by fixtures and tests.
func (s *Service) Seed(ctx context.Context, products []Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Product, len(products))
	copy(next, products)
	if err := kvstore.SetWithBackup(ctx, s.store, storageKey, next); err != nil {
		return err
	}
	s.products = next
	for _, p := range next {
		if p.ID > s.lastID {
			s.lastID = p.ID
		}
	}
	return nil
}
