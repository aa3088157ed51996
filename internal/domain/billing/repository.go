package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/hotel/backoffice/internal/domain/shared"
)

// ErrDuplicateCode is returned by PaymentRepository.Save when the
// unique constraint on payment_reference or receipt_number rejects an
// insert. The caller regenerates the code and retries once.
var ErrDuplicateCode = shared.NewDomainError(shared.ErrCodeConcurrencyConflict, "Generated code already in use")

// PaymentFilter narrows payment listings
type PaymentFilter struct {
	shared.Filter
	BookingKind *BookingKind
	BookingID   *uuid.UUID
	Status      *PaymentStatus
}

// PaymentRepository persists the payment ledger
type PaymentRepository interface {
	// Save inserts a new payment. A duplicate reference or receipt
	// number surfaces as a CONCURRENCY_CONFLICT domain error so the
	// caller can retry generation once.
	Save(ctx context.Context, payment *Payment) error

	// SaveWithLock updates an existing payment with an optimistic
	// version check.
	SaveWithLock(ctx context.Context, payment *Payment, expectedVersion int) error

	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	List(ctx context.Context, filter PaymentFilter) (*shared.Paginated[*Payment], error)

	// ListByBooking returns all non-deleted payments for one account
	ListByBooking(ctx context.Context, kind BookingKind, bookingID uuid.UUID) ([]*Payment, error)

	ReferenceExists(ctx context.Context, reference string) (bool, error)
	ReceiptNumberExists(ctx context.Context, number string) (bool, error)
}

// RoomBookingRepository reads room bookings and writes back their
// derived financial fields.
type RoomBookingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RoomBooking, error)
	// FindByIDForUpdate loads the booking under a row-level lock so
	// concurrent reconciliations for the same booking serialize.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*RoomBooking, error)
	Save(ctx context.Context, booking *RoomBooking) error
	UpdateFinancials(ctx context.Context, booking *RoomBooking) error
}

// ConferenceInquiryRepository is the conference analogue of
// RoomBookingRepository.
type ConferenceInquiryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ConferenceInquiry, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ConferenceInquiry, error)
	Save(ctx context.Context, inquiry *ConferenceInquiry) error
	UpdateFinancials(ctx context.Context, inquiry *ConferenceInquiry) error
}

// SettingsRepository persists the single global payment settings row
type SettingsRepository interface {
	// Get returns the settings, creating the default row if none exists
	Get(ctx context.Context) (*PaymentSettings, error)
	Save(ctx context.Context, settings *PaymentSettings) error
}

// Repositories bundles the stores that participate in one ledger
// transaction.
type Repositories struct {
	Payments            PaymentRepository
	RoomBookings        RoomBookingRepository
	ConferenceInquiries ConferenceInquiryRepository
	Settings            SettingsRepository
	Outbox              shared.OutboxRepository
}
