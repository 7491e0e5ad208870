package campaigns

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ilmekten/shop-backend/pkg/enums"
	pkgerrors "github.com/ilmekten/shop-backend/pkg/errors"
	"github.com/ilmekten/shop-backend/pkg/kvstore"
)

const storageKey = "campaigns"

// Campaign is a storewide promotion. Gift campaigns trigger on cart unit
// count and add an informational gift line; discount campaigns trigger on the
// pre-campaign subtotal and shave a percentage off it.
type Campaign struct {
	ID              int64              `json:"id"`
	Kind            enums.CampaignKind `json:"type"`
	Name            string             `json:"name"`
	Active          bool               `json:"active"`
	MinQuantity     int64              `json:"minQuantity,omitempty"`
	GiftProductID   int64              `json:"giftProductId,omitempty"`
	MinAmount       int64              `json:"minAmount,omitempty"`
	DiscountPercent int64              `json:"discountPercent,omitempty"`
}

// Registry persists campaign definitions and hands the active set to the
// pricing engine.
type Registry struct {
	store kvstore.Store

	mu        sync.RWMutex
	campaigns []Campaign
	lastID    int64

	now func() time.Time
}

func NewRegistry(ctx context.Context, store kvstore.Store) (*Registry, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	r := &Registry{store: store, now: time.Now}
	if err := store.Get(ctx, storageKey, &r.campaigns); err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, err
	}
	for _, c := range r.campaigns {
		if c.ID > r.lastID {
			r.lastID = c.ID
		}
	}
	return r, nil
}

// List returns every campaign, active or not.
func (r *Registry) List(ctx context.Context) []Campaign {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Campaign, len(r.campaigns))
	copy(out, r.campaigns)
	return out
}

// Active returns only the campaigns the engine should evaluate.
func (r *Registry) Active(ctx context.Context) []Campaign {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Campaign, 0, len(r.campaigns))
	for _, c := range r.campaigns {
		if c.Active {
			out = append(out, c)
		}
	}
	return out
}

// CampaignInput carries the admin-editable campaign fields.
type CampaignInput struct {
	Kind            enums.CampaignKind
	Name            string
	Active          bool
	MinQuantity     int64
	GiftProductID   int64
	MinAmount       int64
	DiscountPercent int64
}

func (in CampaignInput) validate() error {
	if !in.Kind.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown campaign type %q", in.Kind)
	}
	switch in.Kind {
	case enums.CampaignKindGift:
		if in.MinQuantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "gift campaign requires a positive minimum quantity")
		}
		if in.GiftProductID == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "gift campaign requires a gift product")
		}
	case enums.CampaignKindDiscount:
		if in.MinAmount <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "discount campaign requires a positive minimum amount")
		}
		if in.DiscountPercent <= 0 || in.DiscountPercent > 100 {
			return pkgerrors.New(pkgerrors.CodeValidation, "discount percent must be between 1 and 100")
		}
	}
	return nil
}

// Create persists a new campaign.
func (r *Registry) Create(ctx context.Context, input CampaignInput) (*Campaign, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.now().UnixMilli()
	if id <= r.lastID {
		id = r.lastID + 1
	}

	campaign := Campaign{
		ID:              id,
		Kind:            input.Kind,
		Name:            input.Name,
		Active:          input.Active,
		MinQuantity:     input.MinQuantity,
		GiftProductID:   input.GiftProductID,
		MinAmount:       input.MinAmount,
		DiscountPercent: input.DiscountPercent,
	}

	next := append(append([]Campaign{}, r.campaigns...), campaign)
	if err := r.store.Set(ctx, storageKey, next); err != nil {
		return nil, err
	}
	r.campaigns = next
	r.lastID = id
	return &campaign, nil
}

// Update overwrites an existing campaign's definition.
func (r *Registry) Update(ctx context.Context, id int64, input CampaignInput) (*Campaign, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, c := range r.campaigns {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "campaign %d not found", id)
	}

	next := make([]Campaign, len(r.campaigns))
	copy(next, r.campaigns)
	next[idx] = Campaign{
		ID:              id,
		Kind:            input.Kind,
		Name:            input.Name,
		Active:          input.Active,
		MinQuantity:     input.MinQuantity,
		GiftProductID:   input.GiftProductID,
		MinAmount:       input.MinAmount,
		DiscountPercent: input.DiscountPercent,
	}

	if err := r.store.Set(ctx, storageKey, next); err != nil {
		return nil, err
	}
	r.campaigns = next
	updated := next[idx]
	return &updated, nil
}

// Toggle flips a campaign's active flag.
func (r *Registry) Toggle(ctx context.Context, id int64) (*Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, c := range r.campaigns {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "campaign %d not found", id)
	}

	next := make([]Campaign, len(r.campaigns))
	copy(next, r.campaigns)
	next[idx].Active = !next[idx].Active

	if err := r.store.Set(ctx, storageKey, next); err != nil {
		return nil, err
	}
	r.campaigns = next
	updated := next[idx]
	return &updated, nil
}

// Delete removes a campaign definition.
func (r *Registry) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]Campaign, 0, len(r.campaigns))
	found := false
	for _, c := range r.campaigns {
		if c.ID == id {
			found = true
			continue
		}
		next = append(next, c)
	}
	if !found {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "campaign %d not found", id)
	}

	if err := r.store.Set(ctx, storageKey, next); err != nil {
		return err
	}
	r.campaigns = next
	return nil
}
