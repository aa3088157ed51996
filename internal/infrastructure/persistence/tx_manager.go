package persistence

import (
	"context"

	"gorm.io/gorm"

	appbilling "github.com/hotel/backoffice/internal/application/billing"
	"github.com/hotel/backoffice/internal/domain/billing"
)

// GormTxManager implements the application TxManager over gorm
// transactions. All repositories handed to the unit of work share one
// transaction; any returned error rolls it back.
type GormTxManager struct {
	db *gorm.DB
}

// NewGormTxManager creates the transaction manager
func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

// WithinTransaction runs fn inside a single database transaction
func (m *GormTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context, r billing.Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewRepositories(tx))
	})
}

// NewRepositories builds the repository bundle over one gorm handle
func NewRepositories(db *gorm.DB) billing.Repositories {
	return billing.Repositories{
		Payments:            NewGormPaymentRepository(db),
		RoomBookings:        NewGormRoomBookingRepository(db),
		ConferenceInquiries: NewGormConferenceInquiryRepository(db),
		Settings:            NewGormSettingsRepository(db),
		Outbox:              NewGormOutboxRepository(db),
	}
}

var _ appbilling.TxManager = (*GormTxManager)(nil)
