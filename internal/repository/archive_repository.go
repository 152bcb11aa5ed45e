package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mvp-foundry/internal/model"
)

type ArchiveRepository struct {
	db *gorm.DB
}

func NewArchiveRepository(db *gorm.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

// Append stores row once per event id; redelivered events are ignored.
func (r *ArchiveRepository) Append(ctx context.Context, row *model.BlueprintArchive) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
		return fmt.Errorf("append blueprint archive failed: %w", err)
	}
	return nil
}

func (r *ArchiveRepository) ListByBlueprintID(ctx context.Context, blueprintID string) ([]model.BlueprintArchive, error) {
	var rows []model.BlueprintArchive
	if err := r.db.WithContext(ctx).Where("blueprint_id = ?", blueprintID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list blueprint archive failed: %w", err)
	}
	return rows, nil
}
