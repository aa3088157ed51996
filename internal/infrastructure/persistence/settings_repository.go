package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hotel/backoffice/internal/domain/billing"
	"github.com/hotel/backoffice/internal/infrastructure/persistence/models"
)

// GormSettingsRepository implements billing.SettingsRepository using
// GORM. The settings table holds a single row.
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// Get returns the settings row, creating the default one if the table
// is empty.
func (r *GormSettingsRepository) Get(ctx context.Context) (*billing.PaymentSettings, error) {
	var model models.PaymentSettingsModel
	err := r.db.WithContext(ctx).Order("created_at ASC").First(&model).Error
	if err == nil {
		return model.ToDomain(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	settings := billing.NewPaymentSettings()
	if err := r.db.WithContext(ctx).Create(models.PaymentSettingsModelFromDomain(settings)).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// Save persists the settings row
func (r *GormSettingsRepository) Save(ctx context.Context, settings *billing.PaymentSettings) error {
	return r.db.WithContext(ctx).Save(models.PaymentSettingsModelFromDomain(settings)).Error
}

var _ billing.SettingsRepository = (*GormSettingsRepository)(nil)
