package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hotel/backoffice/internal/domain/shared"
	"github.com/hotel/backoffice/internal/domain/shared/valueobject"
)

// BookingKind discriminates which table a payment's booking_id points into
type BookingKind string

const (
	BookingKindRoom       BookingKind = "room"
	BookingKindConference BookingKind = "conference"
)

// ParseBookingKind validates a raw booking kind value
func ParseBookingKind(raw string) (BookingKind, error) {
	switch BookingKind(raw) {
	case BookingKindRoom:
		return BookingKindRoom, nil
	case BookingKindConference:
		return BookingKindConference, nil
	default:
		return "", shared.NewValidationError("booking_type must be 'room' or 'conference'")
	}
}

// FinancialSummary holds the derived fields owned by reconciliation.
// These are a cached projection over the payment ledger and are only
// ever written back wholesale.
type FinancialSummary struct {
	AmountPaid      valueobject.Money
	AmountDue       valueobject.Money
	VATRate         decimal.Decimal
	VATAmount       valueobject.Money
	TotalWithVAT    valueobject.Money
	LastPaymentDate *time.Time
}

// BookingAccount is the capability a payment owner exposes to the
// reconciliation engine. Room bookings and conference inquiries both
// implement it; conference inquiries additionally carry a deposit.
type BookingAccount interface {
	AccountID() uuid.UUID
	Kind() BookingKind
	Reference() string
	ContractTotal() valueobject.Money
	DepositRequired() (valueobject.Money, bool)
	ApplyProjection(p Projection)
}

// RoomBooking is a guest reservation with a fixed contract price.
// Bookings are created elsewhere; only the financial summary is
// mutated here.
type RoomBooking struct {
	shared.BaseAggregateRoot
	BookingReference string
	GuestName        string
	RoomName         string
	CheckIn          time.Time
	CheckOut         time.Time
	TotalAmount      valueobject.Money
	Financials       FinancialSummary
}

// AccountID returns the booking's identifier
func (b *RoomBooking) AccountID() uuid.UUID { return b.ID }

// Kind returns the room discriminator
func (b *RoomBooking) Kind() BookingKind { return BookingKindRoom }

// Reference returns the human-facing booking reference
func (b *RoomBooking) Reference() string { return b.BookingReference }

// ContractTotal returns the agreed price, independent of payments
func (b *RoomBooking) ContractTotal() valueobject.Money { return b.TotalAmount }

// DepositRequired reports that room bookings carry no deposit concept
func (b *RoomBooking) DepositRequired() (valueobject.Money, bool) {
	return valueobject.Money{}, false
}

// ApplyProjection writes the recomputed financial summary back
func (b *RoomBooking) ApplyProjection(p Projection) {
	b.Financials = p.Summary
	b.IncrementVersion()
}

// ConferenceInquiry is the conference-room analogue of a booking,
// with a deposit that payments accrue toward.
type ConferenceInquiry struct {
	shared.BaseAggregateRoot
	InquiryReference string
	OrganizerName    string
	EventName        string
	EventDate        time.Time
	TotalAmount      valueobject.Money
	Deposit          valueobject.Money
	DepositPaid      valueobject.Money
	Financials       FinancialSummary
}

// AccountID returns the inquiry's identifier
func (c *ConferenceInquiry) AccountID() uuid.UUID { return c.ID }

// Kind returns the conference discriminator
func (c *ConferenceInquiry) Kind() BookingKind { return BookingKindConference }

// Reference returns the human-facing inquiry reference
func (c *ConferenceInquiry) Reference() string { return c.InquiryReference }

// ContractTotal returns the agreed price, independent of payments
func (c *ConferenceInquiry) ContractTotal() valueobject.Money { return c.TotalAmount }

// DepositRequired returns the deposit the organizer must pay up front
func (c *ConferenceInquiry) DepositRequired() (valueobject.Money, bool) {
	return c.Deposit, true
}

// ApplyProjection writes the recomputed financial summary back,
// including the capped deposit_paid figure.
func (c *ConferenceInquiry) ApplyProjection(p Projection) {
	c.Financials = p.Summary
	if p.DepositPaid != nil {
		c.DepositPaid = *p.DepositPaid
	}
	c.IncrementVersion()
}

var (
	_ BookingAccount = (*RoomBooking)(nil)
	_ BookingAccount = (*ConferenceInquiry)(nil)
)
