package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ilmekten/shop-backend/pkg/enums"
	pkgerrors "github.com/ilmekten/shop-backend/pkg/errors"
	"github.com/ilmekten/shop-backend/pkg/kvstore"
	"github.com/ilmekten/shop-backend/pkg/metrics"
)

const storageKey = "coupons"

// Service manages coupon definitions and the shopper's single applied-coupon
// slot. Validation runs the checks in a fixed order so rejections are
// deterministic; usage is committed only when a checkout completes.
type Service struct {
	store   kvstore.Store
	metrics *metrics.ShopMetrics

	mu      sync.Mutex
	coupons []Coupon
	applied *Coupon

	now func() time.Time
}

func NewService(ctx context.Context, store kvstore.Store, m *metrics.ShopMetrics) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	s := &Service{store: store, metrics: m, now: time.Now}
	if err := store.Get(ctx, storageKey, &s.coupons); err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, err
	}
	return s, nil
}

// List returns every coupon definition.
func (s *Service) List(ctx context.Context) []Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Coupon, len(s.coupons))
	copy(out, s.coupons)
	return out
}

// Validate checks a code against a pre-campaign subtotal. The check order is
// fixed: existence, active flag, usage limit, start date, end date, minimum
// amount. The first failing check wins.
func (s *Service) Validate(ctx context.Context, code string, subtotal int64) (*Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateLocked(code, subtotal)
}

func (s *Service) validateLocked(code string, subtotal int64) (*Coupon, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	reject := func(reason Reason) (*Coupon, error) {
		s.metrics.IncCouponValidation(string(reason))
		return nil, &RejectionError{Code: normalized, Reason: reason}
	}

	var coupon *Coupon
	for i := range s.coupons {
		if s.coupons[i].Code == normalized {
			found := s.coupons[i]
			coupon = &found
			break
		}
	}
	if coupon == nil {
		return reject(ReasonNotFound)
	}
	if !coupon.Active {
		return reject(ReasonInactive)
	}
	if coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit {
		return reject(ReasonUsageLimitReached)
	}
	now := s.now()
	if coupon.StartDate != nil && now.Before(*coupon.StartDate) {
		return reject(ReasonNotYetValid)
	}
	if coupon.EndDate != nil && now.After(*coupon.EndDate) {
		return reject(ReasonExpired)
	}
	if subtotal < coupon.MinAmount {
		return reject(ReasonBelowMinimum)
	}

	s.metrics.IncCouponValidation("ok")
	return coupon, nil
}

// Apply validates the code and, on success, installs it in the single
// applied-coupon slot. Applying a second coupon replaces the first. The
// returned discount is computed against the given subtotal.
func (s *Service) Apply(ctx context.Context, code string, subtotal int64) (*Coupon, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coupon, err := s.validateLocked(code, subtotal)
	if err != nil {
		return nil, 0, err
	}
	applied := *coupon
	s.applied = &applied
	return coupon, ComputeDiscount(*coupon, subtotal), nil
}

// Applied returns the currently applied coupon, or nil.
func (s *Service) Applied(ctx context.Context) *Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applied == nil {
		return nil
	}
	c := *s.applied
	return &c
}

// RemoveApplied clears the applied-coupon slot.
func (s *Service) RemoveApplied(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = nil
}

// CommitUsage increments the coupon's usage count and persists it. Called
// once per completed checkout; a coupon missing from the registry by commit
// time is ignored.
func (s *Service) CommitUsage(ctx context.Context, code string) error {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.coupons {
		if s.coupons[i].Code == normalized {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	next := make([]Coupon, len(s.coupons))
	copy(next, s.coupons)
	next[idx].UsageCount++

	if err := s.store.Set(ctx, storageKey, next); err != nil {
		return err
	}
	s.coupons = next
	return nil
}

// CouponInput carries the admin-editable coupon fields.
type CouponInput struct {
	Code       string
	Type       enums.CouponType
	Amount     int64
	MinAmount  int64
	UsageLimit *int64
	StartDate  *time.Time
	EndDate    *time.Time
	Active     bool
}

func (in CouponInput) validate() error {
	if strings.TrimSpace(in.Code) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if !in.Type.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown coupon type %q", in.Type)
	}
	if in.Amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon amount must be positive")
	}
	if in.Type == enums.CouponTypePercentage && in.Amount > 100 {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentage coupon amount must not exceed 100")
	}
	if in.MinAmount < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum amount must not be negative")
	}
	if in.UsageLimit != nil && *in.UsageLimit <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage limit must be positive")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end date must not precede start date")
	}
	return nil
}

// Create persists a new coupon. Codes are unique after uppercasing.
func (s *Service) Create(ctx context.Context, input CouponInput) (*Coupon, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	normalized := strings.ToUpper(strings.TrimSpace(input.Code))

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.coupons {
		if c.Code == normalized {
			return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "coupon %s already exists", normalized)
		}
	}

	coupon := Coupon{
		Code:       normalized,
		Type:       input.Type,
		Amount:     input.Amount,
		MinAmount:  input.MinAmount,
		UsageLimit: input.UsageLimit,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Active:     input.Active,
	}

	next := append(append([]Coupon{}, s.coupons...), coupon)
	if err := s.store.Set(ctx, storageKey, next); err != nil {
		return nil, err
	}
	s.coupons = next
	return &coupon, nil
}

// Update overwrites a coupon's definition; the usage count survives.
func (s *Service) Update(ctx context.Context, code string, input CouponInput) (*Coupon, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	normalized := strings.ToUpper(strings.TrimSpace(code))

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.coupons {
		if s.coupons[i].Code == normalized {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "coupon %s not found", normalized)
	}

	next := make([]Coupon, len(s.coupons))
	copy(next, s.coupons)
	next[idx] = Coupon{
		Code:       normalized,
		Type:       input.Type,
		Amount:     input.Amount,
		MinAmount:  input.MinAmount,
		UsageLimit: input.UsageLimit,
		UsageCount: next[idx].UsageCount,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Active:     input.Active,
	}

	if err := s.store.Set(ctx, storageKey, next); err != nil {
		return nil, err
	}
	s.coupons = next
	updated := next[idx]
	return &updated, nil
}

// Toggle flips a coupon's active flag.
func (s *Service) Toggle(ctx context.Context, code string) (*Coupon, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.coupons {
		if s.coupons[i].Code == normalized {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "coupon %s not found", normalized)
	}

	next := make([]Coupon, len(s.coupons))
	copy(next, s.coupons)
	next[idx].Active = !next[idx].Active

	if err := s.store.Set(ctx, storageKey, next); err != nil {
		return nil, err
	}
	s.coupons = next
	updated := next[idx]
	return &updated, nil
}

// Delete removes a coupon definition. An applied coupon for the deleted code
// stays in its slot; checkout tolerates the mismatch.
func (s *Service) Delete(ctx context.Context, code string) error {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Coupon, 0, len(s.coupons))
	found := false
	for _, c := range s.coupons {
		if c.Code == normalized {
			found = true
			continue
		}
		next = append(next, c)
	}
	if !found {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "coupon %s not found", normalized)
	}

	if err := s.store.Set(ctx, storageKey, next); err != nil {
		return err
	}
	s.coupons = next
	return nil
}
