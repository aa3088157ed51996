package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hotel/backoffice/internal/domain/billing"
	"github.com/hotel/backoffice/internal/domain/shared"
	"github.com/hotel/backoffice/internal/infrastructure/persistence/models"
)

// GormRoomBookingRepository implements billing.RoomBookingRepository
// using GORM.
type GormRoomBookingRepository struct {
	db *gorm.DB
}

// NewGormRoomBookingRepository creates a new GormRoomBookingRepository
func NewGormRoomBookingRepository(db *gorm.DB) *GormRoomBookingRepository {
	return &GormRoomBookingRepository{db: db}
}

// FindByID finds a room booking by ID
func (r *GormRoomBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.RoomBooking, error) {
	var model models.RoomBookingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads the booking under SELECT ... FOR UPDATE so
// concurrent reconciliations for the same booking serialize on its row.
func (r *GormRoomBookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*billing.RoomBooking, error) {
	var model models.RoomBookingModel
	if err := lockingClause(r.db.WithContext(ctx)).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a room booking
func (r *GormRoomBookingRepository) Save(ctx context.Context, booking *billing.RoomBooking) error {
	model := models.RoomBookingModelFromDomain(booking)
	return r.db.WithContext(ctx).Save(model).Error
}

// UpdateFinancials writes the derived financial columns back in a
// single UPDATE.
func (r *GormRoomBookingRepository) UpdateFinancials(ctx context.Context, booking *billing.RoomBooking) error {
	result := r.db.WithContext(ctx).
		Model(&models.RoomBookingModel{}).
		Where("id = ?", booking.ID).
		Updates(map[string]any{
			"amount_paid":       booking.Financials.AmountPaid.Amount(),
			"amount_due":        booking.Financials.AmountDue.Amount(),
			"vat_rate":          booking.Financials.VATRate,
			"vat_amount":        booking.Financials.VATAmount.Amount(),
			"total_with_vat":    booking.Financials.TotalWithVAT.Amount(),
			"last_payment_date": booking.Financials.LastPaymentDate,
			"version":           booking.GetVersion(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormConferenceInquiryRepository implements
// billing.ConferenceInquiryRepository using GORM.
type GormConferenceInquiryRepository struct {
	db *gorm.DB
}

// NewGormConferenceInquiryRepository creates a new GormConferenceInquiryRepository
func NewGormConferenceInquiryRepository(db *gorm.DB) *GormConferenceInquiryRepository {
	return &GormConferenceInquiryRepository{db: db}
}

// FindByID finds a conference inquiry by ID
func (r *GormConferenceInquiryRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.ConferenceInquiry, error) {
	var model models.ConferenceInquiryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads the inquiry under SELECT ... FOR UPDATE
func (r *GormConferenceInquiryRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*billing.ConferenceInquiry, error) {
	var model models.ConferenceInquiryModel
	if err := lockingClause(r.db.WithContext(ctx)).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a conference inquiry
func (r *GormConferenceInquiryRepository) Save(ctx context.Context, inquiry *billing.ConferenceInquiry) error {
	model := models.ConferenceInquiryModelFromDomain(inquiry)
	return r.db.WithContext(ctx).Save(model).Error
}

// UpdateFinancials writes the derived financial columns back in a
// single UPDATE, including the capped deposit.
func (r *GormConferenceInquiryRepository) UpdateFinancials(ctx context.Context, inquiry *billing.ConferenceInquiry) error {
	result := r.db.WithContext(ctx).
		Model(&models.ConferenceInquiryModel{}).
		Where("id = ?", inquiry.ID).
		Updates(map[string]any{
			"amount_paid":       inquiry.Financials.AmountPaid.Amount(),
			"amount_due":        inquiry.Financials.AmountDue.Amount(),
			"deposit_paid":      inquiry.DepositPaid.Amount(),
			"vat_rate":          inquiry.Financials.VATRate,
			"vat_amount":        inquiry.Financials.VATAmount.Amount(),
			"total_with_vat":    inquiry.Financials.TotalWithVAT.Amount(),
			"last_payment_date": inquiry.Financials.LastPaymentDate,
			"version":           inquiry.GetVersion(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// lockingClause adds FOR UPDATE on dialects that support it. SQLite
// serializes writers on its own, so the clause is skipped there.
func lockingClause(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

var (
	_ billing.RoomBookingRepository       = (*GormRoomBookingRepository)(nil)
	_ billing.ConferenceInquiryRepository = (*GormConferenceInquiryRepository)(nil)
)
