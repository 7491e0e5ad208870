package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/ilmekten/shop-backend/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrKeyNotFound is returned when a key has never been written or was removed.
var ErrKeyNotFound = errors.New("kvstore: key not found")

// Store is the durable key-value abstraction every domain repository
// persists through. Writes are atomic per key; there are no cross-key
// transactions.
type Store interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
}

type entry struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (entry) TableName() string { return "kv_entries" }

// GormStore persists JSON-encoded values in the kv_entries table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore binds a store to the shared client.
func NewGormStore(client *Client) *GormStore {
	return &GormStore{db: client.DB()}
}

// Get unmarshals the stored value for key into dest.
func (s *GormStore) Get(ctx context.Context, key string, dest any) error {
	var e entry
	err := s.db.WithContext(ctx).First(&e, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrKeyNotFound
		}
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "read "+key)
	}
	if err := json.Unmarshal([]byte(e.Value), dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "decode "+key)
	}
	return nil
}

// Set JSON-encodes value and upserts it under key. A failed write leaves the
// previously stored value intact.
func (s *GormStore) Set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "encode "+key)
	}
	e := entry{Key: key, Value: string(payload), UpdatedAt: time.Now().UTC()}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&e).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "write "+key)
	}
	return nil
}

// Remove deletes the key; removing an absent key is not an error.
func (s *GormStore) Remove(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&entry{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "remove "+key)
	}
	return nil
}

// AutoMigrate creates the kv_entries table when goose has not run yet.
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&entry{})
}
