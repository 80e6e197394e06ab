// Package repo implements the data persistence layer backed by GORM. This
// file provides the durable key-value backend: one row per key in the
// kv_entries table, overwritten with an upsert on every Set.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-rental-core/internal/domain"
	"github.com/tbourn/go-rental-core/internal/kv"
)

var _ kv.Store = (*KVStore)(nil)

// KVStore implements kv.Store on top of a GORM handle.
type KVStore struct {
	DB *gorm.DB
}

// NewKVStore returns a KVStore using db.
func NewKVStore(db *gorm.DB) *KVStore {
	return &KVStore{DB: db}
}

// Get returns the raw value for key. found is false when no row exists.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row domain.KVEntry
	err := s.DB.WithContext(ctx).Where("key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(row.Value), true, nil
}

// Set inserts or replaces the value for key in a single statement.
func (s *KVStore) Set(ctx context.Context, key string, raw []byte) error {
	row := domain.KVEntry{
		Key:       key,
		Value:     string(raw),
		UpdatedAt: time.Now().UTC(),
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}
