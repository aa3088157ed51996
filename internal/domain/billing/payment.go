package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hotel/backoffice/internal/domain/shared"
	"github.com/hotel/backoffice/internal/domain/shared/valueobject"
)

// PaymentStatus is the lifecycle state of a recorded payment
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusCompleted         PaymentStatus = "completed"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
)

// ParsePaymentStatus validates a raw status value
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	switch PaymentStatus(raw) {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed,
		PaymentStatusRefunded, PaymentStatusPartiallyRefunded:
		return PaymentStatus(raw), nil
	default:
		return "", shared.NewValidationError("invalid payment status: " + raw)
	}
}

// Payment is one recorded payment attempt or settlement against a
// booking account. The ledger of payments is the source of truth;
// booking totals are projections derived from it.
type Payment struct {
	shared.BaseAggregateRoot
	PaymentReference     string
	ReceiptNumber        *string
	BookingKind          BookingKind
	BookingID            uuid.UUID
	BookingReference     string
	PaymentDate          time.Time
	Amount               valueobject.Money
	VATRate              decimal.Decimal
	VATAmount            valueobject.Money
	TotalAmount          valueobject.Money
	Method               string
	Status               PaymentStatus
	TransactionReference string
	CCEmails             []string
	ProcessedBy          string
	Notes                string
	DeletedAt            *time.Time
}

// PaymentDraft carries the validated admin input for a new payment
type PaymentDraft struct {
	BookingKind          BookingKind
	BookingID            uuid.UUID
	BookingReference     string
	PaymentDate          time.Time
	Amount               valueobject.Money
	Method               string
	Status               PaymentStatus
	TransactionReference string
	CCEmails             []string
	ProcessedBy          string
	Notes                string
}

// NewPayment creates a payment from a draft, snapshotting the effective
// VAT rate at creation time. The rate snapshot is never rewritten,
// even if the global rate changes later.
func NewPayment(draft PaymentDraft, reference string, effectiveVATRate decimal.Decimal) (*Payment, error) {
	if draft.BookingID == uuid.Nil {
		return nil, shared.NewValidationError("booking_id is required")
	}
	if _, err := ParseBookingKind(string(draft.BookingKind)); err != nil {
		return nil, err
	}
	if !draft.Amount.IsPositive() {
		return nil, shared.NewValidationError("payment_amount must be greater than zero")
	}
	if draft.Method == "" {
		return nil, shared.NewValidationError("payment_method is required")
	}
	if reference == "" {
		return nil, shared.NewValidationError("payment_reference is required")
	}
	status := draft.Status
	if status == "" {
		status = PaymentStatusPending
	}
	if _, err := ParsePaymentStatus(string(status)); err != nil {
		return nil, err
	}
	date := draft.PaymentDate
	if date.IsZero() {
		date = time.Now()
	}

	vat, total := ComputeVAT(draft.Amount, effectiveVATRate)
	p := &Payment{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		PaymentReference:     reference,
		BookingKind:          draft.BookingKind,
		BookingID:            draft.BookingID,
		BookingReference:     draft.BookingReference,
		PaymentDate:          date,
		Amount:               draft.Amount,
		VATRate:              effectiveVATRate,
		VATAmount:            vat,
		TotalAmount:          total,
		Method:               draft.Method,
		Status:               status,
		TransactionReference: draft.TransactionReference,
		CCEmails:             draft.CCEmails,
		ProcessedBy:          draft.ProcessedBy,
		Notes:                draft.Notes,
	}
	p.AddDomainEvent(NewPaymentRecordedEvent(p))
	return p, nil
}

// PaymentPatch carries the fields an admin may change on an existing
// payment. Nil pointers mean "leave unchanged".
type PaymentPatch struct {
	PaymentDate          *time.Time
	Amount               *valueobject.Money
	Method               *string
	Status               *PaymentStatus
	TransactionReference *string
	CCEmails             []string
	ProcessedBy          *string
	Notes                *string
}

// Apply mutates the payment with the patch, recomputing the VAT
// breakdown from the stored rate snapshot when the amount changes.
// It reports whether the patch transitioned the payment into
// completed for the first time.
func (p *Payment) Apply(patch PaymentPatch) (firstCompletion bool, err error) {
	if p.IsDeleted() {
		return false, shared.ErrInvalidState
	}
	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return false, shared.NewValidationError("payment_amount must be greater than zero")
		}
		p.Amount = *patch.Amount
		p.VATAmount, p.TotalAmount = ComputeVAT(p.Amount, p.VATRate)
	}
	if patch.Status != nil {
		if _, err := ParsePaymentStatus(string(*patch.Status)); err != nil {
			return false, err
		}
		wasCompleted := p.Status == PaymentStatusCompleted
		p.Status = *patch.Status
		firstCompletion = !wasCompleted && p.Status == PaymentStatusCompleted && p.ReceiptNumber == nil
	}
	if patch.PaymentDate != nil {
		p.PaymentDate = *patch.PaymentDate
	}
	if patch.Method != nil {
		if *patch.Method == "" {
			return false, shared.NewValidationError("payment_method is required")
		}
		p.Method = *patch.Method
	}
	if patch.TransactionReference != nil {
		p.TransactionReference = *patch.TransactionReference
	}
	if patch.CCEmails != nil {
		p.CCEmails = patch.CCEmails
	}
	if patch.ProcessedBy != nil {
		p.ProcessedBy = *patch.ProcessedBy
	}
	if patch.Notes != nil {
		p.Notes = *patch.Notes
	}
	p.UpdatedAt = time.Now()
	return firstCompletion, nil
}

// AssignReceiptNumber sets the receipt number exactly once, on the
// payment's first transition to completed, and raises the completion
// event that drives the receipt email.
func (p *Payment) AssignReceiptNumber(number string) error {
	if p.ReceiptNumber != nil {
		return shared.NewDomainError(shared.ErrCodeInvalidState, "receipt number already assigned")
	}
	if number == "" {
		return shared.NewValidationError("receipt number is required")
	}
	p.ReceiptNumber = &number
	p.UpdatedAt = time.Now()
	p.AddDomainEvent(NewPaymentCompletedEvent(p))
	return nil
}

// ReplaceReference swaps in a fresh payment reference after storage
// rejected the previous one as a duplicate. Pending events are
// discarded and the creation event re-raised so its snapshot carries
// the new reference.
func (p *Payment) ReplaceReference(reference string) error {
	if reference == "" {
		return shared.NewValidationError("payment_reference is required")
	}
	p.PaymentReference = reference
	p.ClearDomainEvents()
	p.AddDomainEvent(NewPaymentRecordedEvent(p))
	return nil
}

// SoftDelete excludes the payment from all future aggregation while
// keeping the row for audit.
func (p *Payment) SoftDelete() error {
	if p.IsDeleted() {
		return shared.ErrInvalidState
	}
	now := time.Now()
	p.DeletedAt = &now
	p.UpdatedAt = now
	return nil
}

// IsDeleted reports whether the payment has been soft-deleted
func (p *Payment) IsDeleted() bool {
	return p.DeletedAt != nil
}

// IsCompleted reports whether the payment counts toward amount_paid
func (p *Payment) IsCompleted() bool {
	return p.Status == PaymentStatusCompleted
}
