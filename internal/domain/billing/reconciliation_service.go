package billing

import (
	"time"

	"github.com/hotel/backoffice/internal/domain/shared/valueobject"
)

// Projection is the recomputed financial state of a booking account.
// DepositPaid is set only for accounts that carry a deposit.
type Projection struct {
	Summary     FinancialSummary
	DepositPaid *valueobject.Money
}

// ReconciliationService recomputes a booking account's derived
// financial fields from its full payment history. Payments are the
// ledger; the account's totals are a projection rebuilt wholesale on
// every mutation, which avoids drift from missed incremental updates.
type ReconciliationService struct{}

// NewReconciliationService creates the reconciliation domain service
func NewReconciliationService() *ReconciliationService {
	return &ReconciliationService{}
}

// BuildProjection derives the account's financial summary from the
// given payments and the current global tax settings. Only completed,
// non-deleted payments count toward amount_paid. Booking-level VAT is
// re-derived from the account's contract total at the current
// effective rate, independent of per-payment rate snapshots.
func (s *ReconciliationService) BuildProjection(account BookingAccount, payments []*Payment, settings *PaymentSettings) Projection {
	paid := valueobject.ZeroMWK()
	var lastPayment *time.Time
	for _, p := range payments {
		if p.IsDeleted() || !p.IsCompleted() {
			continue
		}
		paid = paid.MustAdd(p.TotalAmount)
		if lastPayment == nil || p.PaymentDate.After(*lastPayment) {
			d := p.PaymentDate
			lastPayment = &d
		}
	}

	contract := account.ContractTotal()
	due := contract.MustSub(paid)
	if due.IsNegative() {
		due = valueobject.ZeroMWK()
	}

	rate := settings.EffectiveVATRate()
	vat, totalWithVAT := ComputeVAT(contract, rate)

	proj := Projection{
		Summary: FinancialSummary{
			AmountPaid:      paid,
			AmountDue:       due,
			VATRate:         rate,
			VATAmount:       vat,
			TotalWithVAT:    totalWithVAT,
			LastPaymentDate: lastPayment,
		},
	}
	if deposit, ok := account.DepositRequired(); ok {
		capped := paid.Min(deposit)
		proj.DepositPaid = &capped
	}
	return proj
}
