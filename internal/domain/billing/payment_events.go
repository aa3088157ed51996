package billing

import (
	"github.com/google/uuid"

	"github.com/hotel/backoffice/internal/domain/shared"
)

// Event types emitted by the payment ledger
const (
	EventTypePaymentRecorded  = "billing.payment.recorded"
	EventTypePaymentCompleted = "billing.payment.completed"
)

// PaymentRecordedEvent is emitted whenever a payment row is created
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID        uuid.UUID   `json:"payment_id"`
	PaymentReference string      `json:"payment_reference"`
	BookingKind      BookingKind `json:"booking_kind"`
	BookingID        uuid.UUID   `json:"booking_id"`
	BookingReference string      `json:"booking_reference"`
	TotalAmount      string      `json:"total_amount"`
	Status           string      `json:"status"`
}

// NewPaymentRecordedEvent creates the event from a freshly created payment
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypePaymentRecorded, "Payment", p.ID),
		PaymentID:        p.ID,
		PaymentReference: p.PaymentReference,
		BookingKind:      p.BookingKind,
		BookingID:        p.BookingID,
		BookingReference: p.BookingReference,
		TotalAmount:      p.TotalAmount.Amount().StringFixed(2),
		Status:           string(p.Status),
	}
}

// PaymentCompletedEvent is emitted on a payment's first transition to
// completed. The notification dispatcher consumes it to send the
// receipt email after the transaction has committed.
type PaymentCompletedEvent struct {
	shared.BaseDomainEvent
	PaymentID        uuid.UUID   `json:"payment_id"`
	PaymentReference string      `json:"payment_reference"`
	ReceiptNumber    string      `json:"receipt_number"`
	BookingKind      BookingKind `json:"booking_kind"`
	BookingID        uuid.UUID   `json:"booking_id"`
	BookingReference string      `json:"booking_reference"`
	TotalAmount      string      `json:"total_amount"`
	CCEmails         []string    `json:"cc_emails"`
}

// NewPaymentCompletedEvent creates the event from a payment that has
// just been assigned its receipt number.
func NewPaymentCompletedEvent(p *Payment) *PaymentCompletedEvent {
	receipt := ""
	if p.ReceiptNumber != nil {
		receipt = *p.ReceiptNumber
	}
	return &PaymentCompletedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypePaymentCompleted, "Payment", p.ID),
		PaymentID:        p.ID,
		PaymentReference: p.PaymentReference,
		ReceiptNumber:    receipt,
		BookingKind:      p.BookingKind,
		BookingID:        p.BookingID,
		BookingReference: p.BookingReference,
		TotalAmount:      p.TotalAmount.Amount().StringFixed(2),
		CCEmails:         p.CCEmails,
	}
}
