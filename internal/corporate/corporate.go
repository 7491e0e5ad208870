package corporate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/ilmekten/shop-backend/pkg/errors"
	"github.com/ilmekten/shop-backend/pkg/kvstore"
)

const (
	storageKey = "corporate_orders"
	maxImages  = 3
)

// Record is a custom bulk-order request from a company: free-text wishes
// plus the requested piece dimensions and up to three reference images.
type Record struct {
	ID          int64    `json:"id"`
	Company     string   `json:"company"`
	Description string   `json:"description"`
	Width       string   `json:"width"`
	Height      string   `json:"height"`
	Images      []string `json:"images"`
}

// Service manages corporate order requests. Image payloads ride along as
// opaque strings; the storefront submits them as data URLs.
type Service struct {
	store kvstore.Store

	mu      sync.Mutex
	records []Record
	lastID  int64

	now func() time.Time
}

func NewService(ctx context.Context, store kvstore.Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	s := &Service{store: store, now: time.Now}
	if err := store.Get(ctx, storageKey, &s.records); err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, err
	}
	for _, r := range s.records {
		if r.ID > s.lastID {
			s.lastID = r.ID
		}
	}
	return s, nil
}

// RecordInput carries the submitted request fields.
type RecordInput struct {
	Company     string
	Description string
	Width       string
	Height      string
	Images      []string
}

func (in RecordInput) validate() error {
	if strings.TrimSpace(in.Company) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "company name is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	if len(in.Images) > maxImages {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "at most %d images are allowed", maxImages)
	}
	return nil
}

// List returns every request, newest last.
func (s *Service) List(ctx context.Context) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Create stores a new request. Image payloads can be large, so the write
// goes through the backup path like the catalog's.
func (s *Service) Create(ctx context.Context, input RecordInput) (*Record, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}

	record := Record{
		ID:          id,
		Company:     input.Company,
		Description: input.Description,
		Width:       input.Width,
		Height:      input.Height,
		Images:      append([]string{}, input.Images...),
	}

	next := append(append([]Record{}, s.records...), record)
	if err := kvstore.SetWithBackup(ctx, s.store, storageKey, next); err != nil {
		return nil, err
	}
	s.records = next
	s.lastID = id
	return &record, nil
}

// Update overwrites an existing request.
func (s *Service) Update(ctx context.Context, id int64, input RecordInput) (*Record, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, r := range s.records {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "corporate order %d not found", id)
	}

	next := make([]Record, len(s.records))
	copy(next, s.records)
	next[idx] = Record{
		ID:          id,
		Company:     input.Company,
		Description: input.Description,
		Width:       input.Width,
		Height:      input.Height,
		Images:      append([]string{}, input.Images...),
	}

	if err := kvstore.SetWithBackup(ctx, s.store, storageKey, next); err != nil {
		return nil, err
	}
	s.records = next
	updated := next[idx]
	return &updated, nil
}

// Delete removes a request.
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Record, 0, len(s.records))
	found := false
	for _, r := range s.records {
		if r.ID == id {
			found = true
			continue
		}
		next = append(next, r)
	}
	if !found {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "corporate order %d not found", id)
	}

	if err := kvstore.SetWithBackup(ctx, s.store, storageKey, next); err != nil {
		return err
	}
	s.records = next
	return nil
}
