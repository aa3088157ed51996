package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hotel/backoffice/internal/domain/billing"
	"github.com/hotel/backoffice/internal/domain/shared"
	"github.com/hotel/backoffice/internal/infrastructure/persistence/models"
)

// GormPaymentRepository implements billing.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Save inserts a new payment row. The unique constraints on
// payment_reference and receipt_number are the backstop for the
// generate-then-probe window; a violation surfaces as ErrDuplicateCode.
func (r *GormPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return billing.ErrDuplicateCode
		}
		return err
	}
	return nil
}

// SaveWithLock updates an existing payment with an optimistic version check
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, payment *billing.Payment, expectedVersion int) error {
	model := models.PaymentModelFromDomain(payment)
	result := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("id = ? AND version = ?", payment.ID, expectedVersion).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID finds a payment by ID, including soft-deleted rows
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns a filtered page of non-deleted payments
func (r *GormPaymentRepository) List(ctx context.Context, filter billing.PaymentFilter) (*shared.Paginated[*billing.Payment], error) {
	query := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("deleted_at IS NULL")

	if filter.BookingKind != nil {
		query = query.Where("booking_type = ?", string(*filter.BookingKind))
	}
	if filter.BookingID != nil {
		query = query.Where("booking_id = ?", *filter.BookingID)
	}
	if filter.Status != nil {
		query = query.Where("payment_status = ?", string(*filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	query = query.Order(paymentOrderClause(filter.Filter))

	var paymentModels []models.PaymentModel
	if err := query.Find(&paymentModels).Error; err != nil {
		return nil, err
	}

	items := make([]*billing.Payment, len(paymentModels))
	for i := range paymentModels {
		items[i] = paymentModels[i].ToDomain()
	}
	return &shared.Paginated[*billing.Payment]{Items: items, Total: total}, nil
}

// paymentSortColumns whitelists the columns clients may sort the
// ledger listing by.
var paymentSortColumns = map[string]string{
	"payment_date":   "payment_date",
	"payment_amount": "payment_amount",
	"created_at":     "created_at",
}

func paymentOrderClause(f shared.Filter) string {
	column, ok := paymentSortColumns[f.SortBy]
	if !ok {
		return "payment_date DESC"
	}
	if f.Desc {
		return column + " DESC"
	}
	return column + " ASC"
}

// ListByBooking returns all non-deleted payments for one booking account
func (r *GormPaymentRepository) ListByBooking(ctx context.Context, kind billing.BookingKind, bookingID uuid.UUID) ([]*billing.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("booking_type = ? AND booking_id = ? AND deleted_at IS NULL", string(kind), bookingID).
		Order("payment_date ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}

	payments := make([]*billing.Payment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = paymentModels[i].ToDomain()
	}
	return payments, nil
}

// ReferenceExists checks whether a payment reference is already taken
func (r *GormPaymentRepository) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("payment_reference = ?", reference).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ReceiptNumberExists checks whether a receipt number is already taken
func (r *GormPaymentRepository) ReceiptNumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("receipt_number = ?", number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
