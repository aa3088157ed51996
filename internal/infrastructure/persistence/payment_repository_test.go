package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hotel/backoffice/internal/domain/billing"
	"github.com/hotel/backoffice/internal/domain/shared"
	"github.com/hotel/backoffice/internal/domain/shared/valueobject"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	return gdb, mock
}

func TestGormPaymentRepository_ReferenceExists(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormPaymentRepository(gdb)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "payments" WHERE payment_reference = $1`)).
		WithArgs("PAY202608ABC123").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ReferenceExists(context.Background(), "PAY202608ABC123")

	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPaymentRepository_ReceiptNumberExists_Free(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormPaymentRepository(gdb)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "payments" WHERE receipt_number = $1`)).
		WithArgs("RCP202600042").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := repo.ReceiptNumberExists(context.Background(), "RCP202600042")

	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPaymentRepository_FindByID_NotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormPaymentRepository(gdb)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE id = \$1`).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), id)

	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPaymentRepository_FindByID(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormPaymentRepository(gdb)
	id := uuid.New()
	bookingID := uuid.New()

	rows := sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "version",
		"payment_reference", "booking_type", "booking_id", "booking_reference",
		"payment_date", "payment_amount", "vat_rate", "vat_amount", "total_amount",
		"payment_method", "payment_status", "cc_emails",
	}).AddRow(
		id, time.Now(), time.Now(), 1,
		"PAY202608ABC123", "room", bookingID, "BK-2026-001",
		time.Now(), "10000.00", "16.5", "1650.00", "11650.00",
		"bank_transfer", "completed", "a@example.com,b@example.com",
	)

	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE id = \$1`).
		WithArgs(id, 1).
		WillReturnRows(rows)

	payment, err := repo.FindByID(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, "PAY202608ABC123", payment.PaymentReference)
	assert.Equal(t, billing.BookingKindRoom, payment.BookingKind)
	assert.Equal(t, bookingID, payment.BookingID)
	assert.True(t, payment.TotalAmount.Equals(valueobject.MoneyFromFloat(11650)))
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, payment.CCEmails)
	assert.True(t, payment.IsCompleted())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentOrderClause(t *testing.T) {
	tests := []struct {
		name   string
		filter shared.Filter
		want   string
	}{
		{"default", shared.Filter{}, "payment_date DESC"},
		{"unknown column falls back", shared.Filter{SortBy: "notes"}, "payment_date DESC"},
		{"amount ascending", shared.Filter{SortBy: "payment_amount"}, "payment_amount ASC"},
		{"amount descending", shared.Filter{SortBy: "payment_amount", Desc: true}, "payment_amount DESC"},
		{"created_at descending", shared.Filter{SortBy: "created_at", Desc: true}, "created_at DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paymentOrderClause(tt.filter))
		})
	}
}

func TestGormPaymentRepository_SaveWithLock_Conflict(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormPaymentRepository(gdb)

	payment, err := billing.NewPayment(billing.PaymentDraft{
		BookingKind: billing.BookingKindRoom,
		BookingID:   uuid.New(),
		Amount:      valueobject.MoneyFromFloat(1000),
		Method:      "cash",
	}, "PAY202608ABC123", billing.DefaultVATRate)
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE "payments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.SaveWithLock(context.Background(), payment, payment.GetVersion())

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
