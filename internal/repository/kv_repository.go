package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mvp-foundry/internal/model"
)

// KVRepository implements the document store's key-value capability on
// top of the kv_entries table.
type KVRepository struct {
	db *gorm.DB
}

func NewKVRepository(db *gorm.DB) *KVRepository {
	return &KVRepository{db: db}
}

func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry model.KVEntry
	if err := r.db.WithContext(ctx).Where("`key` = ?", key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get kv entry failed: %w", err)
	}
	return entry.Value, true, nil
}

func (r *KVRepository) Set(ctx context.Context, key string, value []byte) error {
	return upsertEntry(r.db.WithContext(ctx), key, value)
}

// Update locks the row with SELECT ... FOR UPDATE inside a transaction, so
// concurrent writers on the same key are applied one after another.
func (r *KVRepository) Update(ctx context.Context, key string, fn func(current []byte, found bool) ([]byte, error)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry model.KVEntry
		found := true
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("`key` = ?", key).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			found = false
		} else if err != nil {
			return fmt.Errorf("lock kv entry failed: %w", err)
		}

		next, err := fn(entry.Value, found)
		if err != nil {
			return err
		}
		return upsertEntry(tx, key, next)
	})
}

func upsertEntry(db *gorm.DB, key string, value []byte) error {
	entry := model.KVEntry{Key: key, Value: value}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("upsert kv entry failed: %w", err)
	}
	return nil
}
