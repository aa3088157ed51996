package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/hotel/backoffice/internal/domain/shared"
	"github.com/hotel/backoffice/internal/infrastructure/persistence/models"
)

// GormOutboxRepository implements shared.OutboxRepository using GORM
type GormOutboxRepository struct {
	db *gorm.DB
}

// NewGormOutboxRepository creates a new GormOutboxRepository
func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// Save inserts an outbox entry. Called inside the transaction that
// produced the event.
func (r *GormOutboxRepository) Save(ctx context.Context, entry *shared.OutboxEntry) error {
	return r.db.WithContext(ctx).Create(models.OutboxEntryModelFromDomain(entry)).Error
}

// Update persists status changes made by the processor
func (r *GormOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	return r.db.WithContext(ctx).Save(models.OutboxEntryModelFromDomain(entry)).Error
}

// FindDue returns up to limit deliverable entries, claiming each with a
// conditional status update so a concurrent processor skips them.
func (r *GormOutboxRepository) FindDue(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	now := time.Now()
	var entryModels []models.OutboxEntryModel
	if err := r.db.WithContext(ctx).
		Where("status = ? OR (status = ? AND (next_retry_at IS NULL OR next_retry_at <= ?))",
			string(shared.OutboxStatusPending), string(shared.OutboxStatusFailed), now).
		Order("created_at ASC").
		Limit(limit).
		Find(&entryModels).Error; err != nil {
		return nil, err
	}

	claimed := make([]*shared.OutboxEntry, 0, len(entryModels))
	for i := range entryModels {
		m := &entryModels[i]
		result := r.db.WithContext(ctx).
			Model(&models.OutboxEntryModel{}).
			Where("id = ? AND status = ?", m.ID, m.Status).
			Updates(map[string]any{
				"status":     string(shared.OutboxStatusProcessing),
				"updated_at": now,
			})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			// another processor claimed it first
			continue
		}
		entry := m.ToDomain()
		entry.MarkProcessing()
		claimed = append(claimed, entry)
	}
	return claimed, nil
}

var _ shared.OutboxRepository = (*GormOutboxRepository)(nil)
