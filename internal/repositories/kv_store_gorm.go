package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wholesale/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMKVStore is a GORM implementation of KVStore backed by the records table.
type GORMKVStore struct {
	db *gorm.DB
}

// NewGORMKVStore creates a new instance of GORMKVStore.
func NewGORMKVStore(db *gorm.DB) *GORMKVStore {
	return &GORMKVStore{
		db: db,
	}
}

// Get retrieves the value stored under key.
func (s *GORMKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var rec models.Record
	if err := s.db.WithContext(ctx).First(&rec, "record_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get record %s: %w", key, err)
	}
	return rec.Value, nil
}

// Set inserts or replaces the value stored under key.
func (s *GORMKVStore) Set(ctx context.Context, key string, value []byte) error {
	rec := models.Record{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to set record %s: %w", key, err)
	}
	return nil
}

// Clear deletes the record stored under key, if any.
func (s *GORMKVStore) Clear(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Record{}, "record_key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to clear record %s: %w", key, err)
	}
	return nil
}
