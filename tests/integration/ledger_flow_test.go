package integration

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appbilling "github.com/hotel/backoffice/internal/application/billing"
	appnotification "github.com/hotel/backoffice/internal/application/notification"
	"github.com/hotel/backoffice/internal/domain/billing"
	"github.com/hotel/backoffice/internal/domain/shared"
	"github.com/hotel/backoffice/internal/infrastructure/cache"
	"github.com/hotel/backoffice/internal/infrastructure/event"
	"github.com/hotel/backoffice/internal/infrastructure/persistence"
	"github.com/hotel/backoffice/internal/infrastructure/persistence/models"
)

type ledgerSetup struct {
	DB         *persistence.Database
	Ledger     *appbilling.LedgerService
	Serializer *event.JSONSerializer
	OutboxRepo *persistence.GormOutboxRepository
}

func newLedgerSetup(t *testing.T) *ledgerSetup {
	t.Helper()

	db := NewTestDB(t)

	serializer := event.NewJSONSerializer()
	serializer.Register(&billing.PaymentRecordedEvent{
		BaseDomainEvent: shared.BaseDomainEvent{Type: billing.EventTypePaymentRecorded},
	})
	serializer.Register(&billing.PaymentCompletedEvent{
		BaseDomainEvent: shared.BaseDomainEvent{Type: billing.EventTypePaymentCompleted},
	})

	ledger := appbilling.NewLedgerService(
		persistence.NewGormTxManager(db.DB),
		billing.NewReconciliationService(),
		serializer,
		zap.NewNop(),
	)

	return &ledgerSetup{
		DB:         db,
		Ledger:     ledger,
		Serializer: serializer,
		OutboxRepo: persistence.NewGormOutboxRepository(db.DB),
	}
}

func (s *ledgerSetup) reloadRoomBooking(t *testing.T, booking *billing.RoomBooking) *billing.RoomBooking {
	t.Helper()
	reloaded, err := persistence.NewGormRoomBookingRepository(s.DB.DB).FindByID(context.Background(), booking.ID)
	require.NoError(t, err)
	return reloaded
}

func (s *ledgerSetup) outboxEntries(t *testing.T) []models.OutboxEntryModel {
	t.Helper()
	var entries []models.OutboxEntryModel
	require.NoError(t, s.DB.DB.Order("created_at ASC").Find(&entries).Error)
	return entries
}

func TestRecordPayment_CompletedSettlesBooking(t *testing.T) {
	s := newLedgerSetup(t)
	booking := seedRoomBooking(t, s.DB, 100000)
	ctx := context.Background()

	payment, err := s.Ledger.RecordPayment(ctx, appbilling.RecordPaymentInput{
		BookingKind: "room",
		BookingID:   booking.ID,
		Amount:      dec("10000"),
		Method:      "cash",
		Status:      "completed",
		CCEmails:    []string{"accounts@example.mw"},
		ProcessedBy: "admin",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(payment.PaymentReference, "PAY"))
	require.NotNil(t, payment.ReceiptNumber)
	assert.True(t, strings.HasPrefix(*payment.ReceiptNumber, "RCP"))
	assert.Equal(t, booking.BookingReference, payment.BookingReference)

	// 16.5% VAT snapshot on the payment
	requireAmount(t, payment.VATAmount, "1650.00")
	requireAmount(t, payment.TotalAmount, "11650.00")
	assert.Equal(t, "16.5", payment.VATRate.String())

	reloaded := s.reloadRoomBooking(t, booking)
	requireAmount(t, reloaded.Financials.AmountPaid, "11650.00")
	requireAmount(t, reloaded.Financials.AmountDue, "88350.00")
	requireAmount(t, reloaded.Financials.VATAmount, "16500.00")
	requireAmount(t, reloaded.Financials.TotalWithVAT, "116500.00")
	require.NotNil(t, reloaded.Financials.LastPaymentDate)
	assert.Greater(t, reloaded.GetVersion(), booking.GetVersion())

	entries := s.outboxEntries(t)
	require.Len(t, entries, 2)
	assert.Equal(t, billing.EventTypePaymentRecorded, entries[0].EventType)
	assert.Equal(t, billing.EventTypePaymentCompleted, entries[1].EventType)
}

func TestRecordPayment_PendingHasNoReceiptAndNoSettlement(t *testing.T) {
	s := newLedgerSetup(t)
	booking := seedRoomBooking(t, s.DB, 100000)
	ctx := context.Background()

	payment, err := s.Ledger.RecordPayment(ctx, appbilling.RecordPaymentInput{
		BookingKind: "room",
		BookingID:   booking.ID,
		Amount:      dec("10000"),
		Method:      "bank_transfer",
		Status:      "pending",
	})
	require.NoError(t, err)
	assert.Nil(t, payment.ReceiptNumber)

	reloaded := s.reloadRoomBooking(t, booking)
	requireAmount(t, reloaded.Financials.AmountPaid, "0.00")
	requireAmount(t, reloaded.Financials.AmountDue, "100000.00")

	entries := s.outboxEntries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, billing.EventTypePaymentRecorded, entries[0].EventType)
}

func TestRecordPayment_UnknownBookingRejected(t *testing.T) {
	s := newLedgerSetup(t)
	ctx := context.Background()

	_, err := s.Ledger.RecordPayment(ctx, appbilling.RecordPaymentInput{
		BookingKind: "room",
		BookingID:   uuid.New(),
		Amount:      dec("500"),
		Method:      "cash",
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.ErrCodeValidation, domainErr.Code)
}

func TestUpdatePayment_FirstCompletionAssignsReceipt(t *testing.T) {
	s := newLedgerSetup(t)
	booking := seedRoomBooking(t, s.DB, 50000)
	ctx := context.Background()

	payment, err := s.Ledger.RecordPayment(ctx, appbilling.RecordPaymentInput{
		BookingKind: "room",
		BookingID:   booking.ID,
		Amount:      dec("20000"),
		Method:      "cheque",
		Status:      "pending",
	})
	require.NoError(t, err)
	require.Nil(t, payment.ReceiptNumber)

	completed := "completed"
	updated, err := s.Ledger.UpdatePayment(ctx, payment.ID, appbilling.UpdatePaymentInput{
		Status: &completed,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ReceiptNumber)
	firstReceipt := *updated.ReceiptNumber

	reloaded := s.reloadRoomBooking(t, booking)
	requireAmount(t, reloaded.Financials.AmountPaid, "23300.00")

	// A later edit must not reassign the receipt number
	notes := "verified against bank statement"
	again, err := s.Ledger.UpdatePayment(ctx, payment.ID, appbilling.UpdatePaymentInput{
		Notes: &notes,
	})
	require.NoError(t, err)
	require.NotNil(t, again.ReceiptNumber)
	assert.Equal(t, firstReceipt, *again.ReceiptNumber)

	completedEvents := 0
	for _, e := range s.outboxEntries(t) {
		if e.EventType == billing.EventTypePaymentCompleted {
			completedEvents++
		}
	}
	assert.Equal(t, 1, completedEvents)
}

func TestDeletePayment_RestoresAmountDue(t *testing.T) {
	s := newLedgerSetup(t)
	booking := seedRoomBooking(t, s.DB, 100000)
	ctx := context.Background()

	payment, err := s.Ledger.RecordPayment(ctx, appbilling.RecordPaymentInput{
		BookingKind: "room",
		BookingID:   booking.ID,
		Amount:      dec("10000"),
		Method:      "cash",
		Status:      "completed",
	})
	require.NoError(t, err)

	require.NoError(t, s.Ledger.DeletePayment(ctx, payment.ID))

	reloaded := s.reloadRoomBooking(t, booking)
	requireAmount(t, reloaded.Financials.AmountPaid, "0.00")
	requireAmount(t, reloaded.Financials.AmountDue, "100000.00")

	// Soft-deleted rows stay fetchable by ID but leave listings
	deleted, err := s.Ledger.GetPayment(ctx, payment.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted())

	page, err := s.Ledger.ListPayments(ctx, billing.PaymentFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestListPayments_SortableByAmount(t *testing.T) {
	s := newLedgerSetup(t)
	booking := seedRoomBooking(t, s.DB, 500000)
	ctx := context.Background()

	for _, amount := range []string{"30000", "10000", "20000"} {
		_, err := s.Ledger.RecordPayment(ctx, appbilling.RecordPaymentInput{
			BookingKind: "room",
			BookingID:   booking.ID,
			Amount:      dec(amount),
			Method:      "cash",
			Status:      "pending",
		})
		require.NoError(t, err)
	}

	page, err := s.Ledger.ListPayments(ctx, billing.PaymentFilter{
		Filter: shared.Filter{SortBy: "payment_amount"},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	requireAmount(t, page.Items[0].Amount, "10000.00")
	requireAmount(t, page.Items[1].Amount, "20000.00")
	requireAmount(t, page.Items[2].Amount, "30000.00")

	page, err = s.Ledger.ListPayments(ctx, billing.PaymentFilter{
		Filter: shared.Filter{SortBy: "payment_amount", Desc: true},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	requireAmount(t, page.Items[0].Amount, "30000.00")
}

func TestRecordPayment_ConferenceDepositCapped(t *testing.T) {
	s := newLedgerSetup(t)
	inquiry := seedConferenceInquiry(t, s.DB, 200000, 50000)
	ctx := context.Background()

	_, err := s.Ledger.RecordPayment(ctx, appbilling.RecordPaymentInput{
		BookingKind: "conference",
		BookingID:   inquiry.ID,
		Amount:      dec("80000"),
		Method:      "bank_transfer",
		Status:      "completed",
	})
	require.NoError(t, err)

	reloaded, err := persistence.NewGormConferenceInquiryRepository(s.DB.DB).FindByID(ctx, inquiry.ID)
	require.NoError(t, err)
	requireAmount(t, reloaded.Financials.AmountPaid, "93200.00")
	requireAmount(t, reloaded.DepositPaid, "50000.00")
}

func TestVATSettingsChange_LeavesSnapshotsIntact(t *testing.T) {
	s := newLedgerSetup(t)
	booking := seedRoomBooking(t, s.DB, 100000)
	ctx := context.Background()

	first, err := s.Ledger.RecordPayment(ctx, appbilling.RecordPaymentInput{
		BookingKind: "room",
		BookingID:   booking.ID,
		Amount:      dec("10000"),
		Method:      "cash",
		Status:      "completed",
	})
	require.NoError(t, err)
	requireAmount(t, first.TotalAmount, "11650.00")

	_, err = s.Ledger.UpdateSettings(ctx, false, dec("16.5"))
	require.NoError(t, err)

	second, err := s.Ledger.RecordPayment(ctx, appbilling.RecordPaymentInput{
		BookingKind: "room",
		BookingID:   booking.ID,
		Amount:      dec("10000"),
		Method:      "cash",
		Status:      "completed",
	})
	require.NoError(t, err)
	requireAmount(t, second.TotalAmount, "10000.00")
	assert.Equal(t, "0", second.VATRate.String())

	// First payment's snapshot is untouched; the booking projection
	// uses the current (disabled) rate.
	stored, err := s.Ledger.GetPayment(ctx, first.ID)
	require.NoError(t, err)
	requireAmount(t, stored.TotalAmount, "11650.00")

	reloaded := s.reloadRoomBooking(t, booking)
	requireAmount(t, reloaded.Financials.AmountPaid, "21650.00")
	requireAmount(t, reloaded.Financials.VATAmount, "0.00")
	requireAmount(t, reloaded.Financials.TotalWithVAT, "100000.00")
}

type recordingMailer struct {
	mu       sync.Mutex
	messages []appnotification.Message
}

func (m *recordingMailer) Send(_ context.Context, msg appnotification.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func TestOutboxProcessor_DeliversReceiptEmail(t *testing.T) {
	s := newLedgerSetup(t)
	booking := seedRoomBooking(t, s.DB, 100000)
	ctx := context.Background()

	payment, err := s.Ledger.RecordPayment(ctx, appbilling.RecordPaymentInput{
		BookingKind: "room",
		BookingID:   booking.ID,
		Amount:      dec("10000"),
		Method:      "cash",
		Status:      "completed",
		CCEmails:    []string{"guest@example.mw"},
	})
	require.NoError(t, err)

	mailer := &recordingMailer{}
	processor := event.NewOutboxProcessor(
		s.OutboxRepo,
		s.Serializer,
		cache.NewInMemoryIdempotencyStore(),
		zap.NewNop(),
		event.ProcessorConfig{BatchSize: 10},
	)
	processor.Subscribe(appnotification.NewReceiptDispatcher(mailer, "frontdesk@hotel.mw", zap.NewNop()))

	processor.ProcessBatch(ctx)

	require.Len(t, mailer.messages, 1)
	msg := mailer.messages[0]
	assert.Equal(t, []string{"frontdesk@hotel.mw"}, msg.To)
	assert.Equal(t, []string{"guest@example.mw"}, msg.CC)
	assert.Contains(t, msg.Subject, *payment.ReceiptNumber)
	assert.Contains(t, msg.Body, payment.PaymentReference)

	for _, entry := range s.outboxEntries(t) {
		assert.Equal(t, string(shared.OutboxStatusSent), entry.Status)
	}

	// A second pass is a no-op thanks to the idempotency store
	processor.ProcessBatch(ctx)
	assert.Len(t, mailer.messages, 1)
}
