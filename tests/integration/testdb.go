// Package integration exercises the payment ledger end to end against
// a real database. SQLite keeps the suite self-contained; the SQL the
// repositories emit is portable to the production PostgreSQL schema.
package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/hotel/backoffice/internal/domain/billing"
	"github.com/hotel/backoffice/internal/domain/shared"
	"github.com/hotel/backoffice/internal/domain/shared/valueobject"
	"github.com/hotel/backoffice/internal/infrastructure/persistence"
	"github.com/hotel/backoffice/internal/infrastructure/persistence/models"
)

// NewTestDB opens a fresh SQLite database with the full schema applied
func NewTestDB(t *testing.T) *persistence.Database {
	t.Helper()

	db, err := persistence.NewSQLiteDatabase(filepath.Join(t.TempDir(), "ledger_test.db"))
	require.NoError(t, err, "Failed to open test database")

	err = db.DB.AutoMigrate(
		&models.RoomBookingModel{},
		&models.ConferenceInquiryModel{},
		&models.PaymentModel{},
		&models.PaymentSettingsModel{},
		&models.OutboxEntryModel{},
	)
	require.NoError(t, err, "Failed to migrate test schema")

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// seedRoomBooking inserts a room booking with the given contract total
func seedRoomBooking(t *testing.T, db *persistence.Database, total float64) *billing.RoomBooking {
	t.Helper()

	base := shared.NewBaseAggregateRoot()
	booking := &billing.RoomBooking{
		BaseAggregateRoot: base,
		BookingReference:  "BKG-" + base.ID.String()[:8],
		GuestName:         "Chisomo Banda",
		RoomName:          "Lakeview 12",
		CheckIn:           time.Now().AddDate(0, 0, 1),
		CheckOut:          time.Now().AddDate(0, 0, 4),
		TotalAmount:       valueobject.MoneyFromFloat(total),
	}

	repo := persistence.NewGormRoomBookingRepository(db.DB)
	require.NoError(t, repo.Save(context.Background(), booking))
	return booking
}

// seedConferenceInquiry inserts a conference inquiry with a deposit
func seedConferenceInquiry(t *testing.T, db *persistence.Database, total, deposit float64) *billing.ConferenceInquiry {
	t.Helper()

	base := shared.NewBaseAggregateRoot()
	inquiry := &billing.ConferenceInquiry{
		BaseAggregateRoot: base,
		InquiryReference:  "CNF-" + base.ID.String()[:8],
		OrganizerName:     "Malawi Tourism Board",
		EventName:         "Annual Planning Retreat",
		EventDate:         time.Now().AddDate(0, 1, 0),
		TotalAmount:       valueobject.MoneyFromFloat(total),
		Deposit:           valueobject.MoneyFromFloat(deposit),
		DepositPaid:       valueobject.ZeroMWK(),
	}

	repo := persistence.NewGormConferenceInquiryRepository(db.DB)
	require.NoError(t, repo.Save(context.Background(), inquiry))
	return inquiry
}

func requireAmount(t *testing.T, m valueobject.Money, want string) {
	t.Helper()
	require.Equal(t, want, m.Amount().StringFixed(2))
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}
