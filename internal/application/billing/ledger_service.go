package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hotel/backoffice/internal/domain/billing"
	"github.com/hotel/backoffice/internal/domain/shared"
	"github.com/hotel/backoffice/internal/domain/shared/valueobject"
)

// TxManager brackets a unit of work in a single database transaction.
// The repositories handed to fn are scoped to that transaction; any
// error rolls the whole unit back.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, r billing.Repositories) error) error
}

// LedgerService orchestrates payment writes: validation, reference
// generation, the ledger mutation, reconciliation of the owning
// booking, and the outbox entries that drive post-commit
// notifications. Each operation is one atomic transaction.
type LedgerService struct {
	tx         TxManager
	recon      *billing.ReconciliationService
	serializer shared.EventSerializer
	logger     *zap.Logger
}

// NewLedgerService creates the payment ledger application service
func NewLedgerService(tx TxManager, recon *billing.ReconciliationService, serializer shared.EventSerializer, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		tx:         tx,
		recon:      recon,
		serializer: serializer,
		logger:     logger,
	}
}

// RecordPaymentInput is the validated admin input for a new payment
type RecordPaymentInput struct {
	BookingKind          string
	BookingID            uuid.UUID
	PaymentDate          *time.Time
	Amount               decimal.Decimal
	Method               string
	Status               string
	TransactionReference string
	CCEmails             []string
	ProcessedBy          string
	Notes                string
}

// RecordPayment creates a payment against a booking account and
// reconciles the account in the same transaction. Reference probes run
// before the booking row lock is taken, so the lock is held only for
// the write and the reconciliation read.
func (s *LedgerService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*billing.Payment, error) {
	kind, err := billing.ParseBookingKind(input.BookingKind)
	if err != nil {
		return nil, err
	}

	var payment *billing.Payment
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, r billing.Repositories) error {
		now := time.Now()
		reference, err := billing.GenerateUniqueCode(ctx,
			func() string { return billing.PaymentReferenceCandidate(now) },
			func() string { return billing.PaymentReferenceFallback(now) },
			r.Payments.ReferenceExists)
		if err != nil {
			return err
		}

		account, err := s.lockAccount(ctx, r, kind, input.BookingID)
		if err != nil {
			if isNotFound(err) {
				return shared.NewValidationError("booking does not exist")
			}
			return err
		}

		settings, err := r.Settings.Get(ctx)
		if err != nil {
			return err
		}

		draft := billing.PaymentDraft{
			BookingKind:          kind,
			BookingID:            input.BookingID,
			BookingReference:     account.Reference(),
			Amount:               valueobject.NewMoneyMWK(input.Amount),
			Method:               input.Method,
			Status:               billing.PaymentStatus(input.Status),
			TransactionReference: input.TransactionReference,
			CCEmails:             input.CCEmails,
			ProcessedBy:          input.ProcessedBy,
			Notes:                input.Notes,
		}
		if input.PaymentDate != nil {
			draft.PaymentDate = *input.PaymentDate
		}

		payment, err = billing.NewPayment(draft, reference, settings.EffectiveVATRate())
		if err != nil {
			return err
		}

		if payment.IsCompleted() {
			if err := s.assignReceiptNumber(ctx, r, payment); err != nil {
				return err
			}
		}

		if err := s.savePaymentWithRetry(ctx, r, payment, now); err != nil {
			return err
		}

		if err := s.reconcile(ctx, r, account, settings); err != nil {
			return err
		}

		return s.drainEvents(ctx, r, payment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("payment_reference", payment.PaymentReference),
		zap.String("booking_type", string(payment.BookingKind)),
		zap.String("booking_id", payment.BookingID.String()),
		zap.String("total_amount", payment.TotalAmount.Amount().StringFixed(2)))
	return payment, nil
}

// UpdatePaymentInput carries the fields an admin may change. Nil
// pointers leave the field unchanged.
type UpdatePaymentInput struct {
	PaymentDate          *time.Time
	Amount               *decimal.Decimal
	Method               *string
	Status               *string
	TransactionReference *string
	CCEmails             []string
	ProcessedBy          *string
	Notes                *string
}

// UpdatePayment patches a payment, assigns a receipt number on its
// first transition to completed, and reconciles the owning booking.
func (s *LedgerService) UpdatePayment(ctx context.Context, id uuid.UUID, input UpdatePaymentInput) (*billing.Payment, error) {
	var payment *billing.Payment
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, r billing.Repositories) error {
		var err error
		payment, err = r.Payments.FindByID(ctx, id)
		if err != nil {
			return err
		}

		account, accountErr := s.lockAccount(ctx, r, payment.BookingKind, payment.BookingID)
		if accountErr != nil {
			if !isNotFound(accountErr) {
				return accountErr
			}
			account = nil
		}

		patch := billing.PaymentPatch{
			PaymentDate:          input.PaymentDate,
			Method:               input.Method,
			TransactionReference: input.TransactionReference,
			CCEmails:             input.CCEmails,
			ProcessedBy:          input.ProcessedBy,
			Notes:                input.Notes,
		}
		if input.Amount != nil {
			amount := valueobject.NewMoneyMWK(*input.Amount)
			patch.Amount = &amount
		}
		if input.Status != nil {
			status := billing.PaymentStatus(*input.Status)
			patch.Status = &status
		}

		firstCompletion, err := payment.Apply(patch)
		if err != nil {
			return err
		}
		if firstCompletion {
			if err := s.assignReceiptNumber(ctx, r, payment); err != nil {
				return err
			}
		}

		expected := payment.GetVersion()
		payment.IncrementVersion()
		if err := r.Payments.SaveWithLock(ctx, payment, expected); err != nil {
			return err
		}

		if account != nil {
			settings, err := r.Settings.Get(ctx)
			if err != nil {
				return err
			}
			if err := s.reconcile(ctx, r, account, settings); err != nil {
				return err
			}
		} else {
			s.logger.Warn("payment owner missing, skipping reconciliation",
				zap.String("payment_id", payment.ID.String()),
				zap.String("booking_type", string(payment.BookingKind)),
				zap.String("booking_id", payment.BookingID.String()))
		}

		return s.drainEvents(ctx, r, payment)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// DeletePayment soft-deletes a payment and reconciles the owning
// booking so the deleted amount no longer counts toward amount_paid.
func (s *LedgerService) DeletePayment(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context, r billing.Repositories) error {
		payment, err := r.Payments.FindByID(ctx, id)
		if err != nil {
			return err
		}

		account, accountErr := s.lockAccount(ctx, r, payment.BookingKind, payment.BookingID)
		if accountErr != nil {
			if !isNotFound(accountErr) {
				return accountErr
			}
			account = nil
		}

		if err := payment.SoftDelete(); err != nil {
			return err
		}

		expected := payment.GetVersion()
		payment.IncrementVersion()
		if err := r.Payments.SaveWithLock(ctx, payment, expected); err != nil {
			return err
		}

		if account == nil {
			s.logger.Warn("payment owner missing, skipping reconciliation",
				zap.String("payment_id", payment.ID.String()))
			return nil
		}
		settings, err := r.Settings.Get(ctx)
		if err != nil {
			return err
		}
		return s.reconcile(ctx, r, account, settings)
	})
}

// GetPayment loads a single payment by id
func (s *LedgerService) GetPayment(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var payment *billing.Payment
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, r billing.Repositories) error {
		var err error
		payment, err = r.Payments.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// ListPayments returns a filtered page of the ledger
func (s *LedgerService) ListPayments(ctx context.Context, filter billing.PaymentFilter) (*shared.Paginated[*billing.Payment], error) {
	var page *shared.Paginated[*billing.Payment]
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, r billing.Repositories) error {
		var err error
		page, err = r.Payments.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// BookingFinance is the finance view of one booking account: its
// projection plus the ledger entries behind it.
type BookingFinance struct {
	Account  billing.BookingAccount
	Payments []*billing.Payment
}

// GetBookingFinance loads a booking account and its payment history
func (s *LedgerService) GetBookingFinance(ctx context.Context, rawKind string, id uuid.UUID) (*BookingFinance, error) {
	kind, err := billing.ParseBookingKind(rawKind)
	if err != nil {
		return nil, err
	}
	var view BookingFinance
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, r billing.Repositories) error {
		account, err := s.loadAccount(ctx, r, kind, id)
		if err != nil {
			return err
		}
		payments, err := r.Payments.ListByBooking(ctx, kind, id)
		if err != nil {
			return err
		}
		view = BookingFinance{Account: account, Payments: payments}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// GetSettings returns the global payment settings
func (s *LedgerService) GetSettings(ctx context.Context) (*billing.PaymentSettings, error) {
	var settings *billing.PaymentSettings
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, r billing.Repositories) error {
		var err error
		settings, err = r.Settings.Get(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdateSettings changes the global VAT configuration. Historical
// payment snapshots are unaffected.
func (s *LedgerService) UpdateSettings(ctx context.Context, enabled bool, rate decimal.Decimal) (*billing.PaymentSettings, error) {
	var settings *billing.PaymentSettings
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, r billing.Repositories) error {
		var err error
		settings, err = r.Settings.Get(ctx)
		if err != nil {
			return err
		}
		if err := settings.Configure(enabled, rate); err != nil {
			return err
		}
		return r.Settings.Save(ctx, settings)
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *LedgerService) assignReceiptNumber(ctx context.Context, r billing.Repositories, payment *billing.Payment) error {
	now := time.Now()
	number, err := billing.GenerateUniqueCode(ctx,
		func() string { return billing.ReceiptNumberCandidate(now) },
		func() string { return billing.ReceiptNumberFallback(now) },
		r.Payments.ReceiptNumberExists)
	if err != nil {
		return err
	}
	return payment.AssignReceiptNumber(number)
}

// savePaymentWithRetry inserts the payment, regenerating its codes
// once if the unique constraint rejects the insert. The constraint is
// the backstop for the generate-then-probe window.
func (s *LedgerService) savePaymentWithRetry(ctx context.Context, r billing.Repositories, payment *billing.Payment, now time.Time) error {
	err := r.Payments.Save(ctx, payment)
	if !errors.Is(err, billing.ErrDuplicateCode) {
		return err
	}

	s.logger.Warn("duplicate code on insert, regenerating",
		zap.String("payment_reference", payment.PaymentReference))

	reference, genErr := billing.GenerateUniqueCode(ctx,
		func() string { return billing.PaymentReferenceCandidate(now) },
		func() string { return billing.PaymentReferenceFallback(now) },
		r.Payments.ReferenceExists)
	if genErr != nil {
		return genErr
	}
	if genErr := payment.ReplaceReference(reference); genErr != nil {
		return genErr
	}

	if payment.ReceiptNumber != nil {
		payment.ReceiptNumber = nil
		if genErr := s.assignReceiptNumber(ctx, r, payment); genErr != nil {
			return genErr
		}
	}
	return r.Payments.Save(ctx, payment)
}

func (s *LedgerService) reconcile(ctx context.Context, r billing.Repositories, account billing.BookingAccount, settings *billing.PaymentSettings) error {
	payments, err := r.Payments.ListByBooking(ctx, account.Kind(), account.AccountID())
	if err != nil {
		return err
	}
	proj := s.recon.BuildProjection(account, payments, settings)
	account.ApplyProjection(proj)

	switch a := account.(type) {
	case *billing.RoomBooking:
		return r.RoomBookings.UpdateFinancials(ctx, a)
	case *billing.ConferenceInquiry:
		return r.ConferenceInquiries.UpdateFinancials(ctx, a)
	default:
		return shared.NewDomainError(shared.ErrCodeStorage, "unknown booking account type")
	}
}

func (s *LedgerService) lockAccount(ctx context.Context, r billing.Repositories, kind billing.BookingKind, id uuid.UUID) (billing.BookingAccount, error) {
	switch kind {
	case billing.BookingKindRoom:
		return r.RoomBookings.FindByIDForUpdate(ctx, id)
	case billing.BookingKindConference:
		return r.ConferenceInquiries.FindByIDForUpdate(ctx, id)
	default:
		return nil, shared.NewValidationError("booking_type must be 'room' or 'conference'")
	}
}

func (s *LedgerService) loadAccount(ctx context.Context, r billing.Repositories, kind billing.BookingKind, id uuid.UUID) (billing.BookingAccount, error) {
	switch kind {
	case billing.BookingKindRoom:
		return r.RoomBookings.FindByID(ctx, id)
	case billing.BookingKindConference:
		return r.ConferenceInquiries.FindByID(ctx, id)
	default:
		return nil, shared.NewValidationError("booking_type must be 'room' or 'conference'")
	}
}

// drainEvents serializes the events collected on the aggregate into
// outbox entries within the same transaction, then clears them.
func (s *LedgerService) drainEvents(ctx context.Context, r billing.Repositories, aggregate shared.AggregateRoot) error {
	for _, event := range aggregate.GetDomainEvents() {
		if err := s.enqueueEvent(ctx, r, event); err != nil {
			return err
		}
	}
	aggregate.ClearDomainEvents()
	return nil
}

func (s *LedgerService) enqueueEvent(ctx context.Context, r billing.Repositories, event shared.DomainEvent) error {
	payload, err := s.serializer.Serialize(event)
	if err != nil {
		return err
	}
	return r.Outbox.Save(ctx, shared.NewOutboxEntry(event, payload))
}

func isNotFound(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == shared.ErrCodeNotFound
}
