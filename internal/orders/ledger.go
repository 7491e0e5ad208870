package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ilmekten/shop-backend/internal/campaigns"
	"github.com/ilmekten/shop-backend/pkg/enums"
	pkgerrors "github.com/ilmekten/shop-backend/pkg/errors"
	"github.com/ilmekten/shop-backend/pkg/kvstore"
)

const storageKey = "orders"

// allowedTransitions spells out every status move the admin panel may make.
// Today every move is allowed, cancelled and completed included; keeping the
// matrix explicit means tightening it later is a one-line change here rather
// than new logic.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusPending, enums.OrderStatusProcessing, enums.OrderStatusCompleted, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusPending, enums.OrderStatusProcessing, enums.OrderStatusCompleted, enums.OrderStatusCancelled},
	enums.OrderStatusCompleted:  {enums.OrderStatusPending, enums.OrderStatusProcessing, enums.OrderStatusCompleted, enums.OrderStatusCancelled},
	enums.OrderStatusCancelled:  {enums.OrderStatusPending, enums.OrderStatusProcessing, enums.OrderStatusCompleted, enums.OrderStatusCancelled},
}

func transitionAllowed(from, to enums.OrderStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Ledger is the append-mostly order record. Orders enter through Create and
// after that only their status changes; the admin may also delete them
// outright.
type Ledger struct {
	store kvstore.Store

	mu     sync.Mutex
	orders []Order

	now func() time.Time
}

func NewLedger(ctx context.Context, store kvstore.Store) (*Ledger, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	l := &Ledger{store: store, now: time.Now}
	if err := store.Get(ctx, storageKey, &l.orders); err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, err
	}
	return l, nil
}

// Draft is an order minus its identity; Create fills in ID, date and the
// initial pending status.
type Draft struct {
	Customer         Customer
	Items            []Item
	Gifts            []Gift
	Subtotal         int64
	Discount         int64
	CampaignDiscount int64
	Coupon           *CouponInfo
	Total            int64
	PaymentMethod    enums.PaymentMethod
	Campaigns        []campaigns.Applied
}

// Create assigns the order its millisecond-timestamp ID and persists it. Two
// orders in the same millisecond get consecutive IDs.
func (l *Ledger) Create(ctx context.Context, draft Draft) (*Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.now().UnixMilli()
	for l.idTaken(id) {
		id++
	}

	order := Order{
		ID:               id,
		Date:             l.now().UTC(),
		Customer:         draft.Customer,
		Items:            append([]Item{}, draft.Items...),
		Gifts:            append([]Gift{}, draft.Gifts...),
		Subtotal:         draft.Subtotal,
		Discount:         draft.Discount,
		CampaignDiscount: draft.CampaignDiscount,
		Coupon:           draft.Coupon,
		Total:            draft.Total,
		Status:           enums.OrderStatusPending,
		PaymentMethod:    draft.PaymentMethod,
		Campaigns:        append([]campaigns.Applied{}, draft.Campaigns...),
	}

	next := append(append([]Order{}, l.orders...), order)
	if err := l.store.Set(ctx, storageKey, next); err != nil {
		return nil, err
	}
	l.orders = next
	return &order, nil
}

func (l *Ledger) idTaken(id int64) bool {
	for _, o := range l.orders {
		if o.ID == id {
			return true
		}
	}
	return false
}

// FindByID returns the order or a NOT_FOUND error.
func (l *Ledger) FindByID(ctx context.Context, id int64) (*Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, o := range l.orders {
		if o.ID == id {
			found := o
			return &found, nil
		}
	}
	return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "order %d not found", id)
}

// SetStatus moves an order to a new status if the transition matrix allows
// it.
func (l *Ledger) SetStatus(ctx context.Context, id int64, status enums.OrderStatus) (*Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown order status %q", status)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i := range l.orders {
		if l.orders[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "order %d not found", id)
	}
	if !transitionAllowed(l.orders[idx].Status, status) {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "order %d cannot move from %s to %s", id, l.orders[idx].Status, status)
	}

	next := make([]Order, len(l.orders))
	copy(next, l.orders)
	next[idx].Status = status

	if err := l.store.Set(ctx, storageKey, next); err != nil {
		return nil, err
	}
	l.orders = next
	updated := next[idx]
	return &updated, nil
}

// Delete removes an order permanently.
func (l *Ledger) Delete(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]Order, 0, len(l.orders))
	found := false
	for _, o := range l.orders {
		if o.ID == id {
			found = true
			continue
		}
		next = append(next, o)
	}
	if !found {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "order %d not found", id)
	}

	if err := l.store.Set(ctx, storageKey, next); err != nil {
		return err
	}
	l.orders = next
	return nil
}

// Query filters the ledger for the admin list view.
type Query struct {
	Status enums.OrderStatus
	Search string
}

// List returns matching orders, newest first. Search matches the order ID or
// any item name, case-insensitively.
func (l *Ledger) List(ctx context.Context, q Query) []Order {
	l.mu.Lock()
	defer l.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]Order, 0, len(l.orders))
	for _, o := range l.orders {
		if q.Status != "" && o.Status != q.Status {
			continue
		}
		if needle != "" && !orderMatches(o, needle) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func orderMatches(o Order, needle string) bool {
	if strings.Contains(strconv.FormatInt(o.ID, 10), needle) {
		return true
	}
	for _, item := range o.Items {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			return true
		}
	}
	return false
}
