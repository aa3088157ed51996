package billing

import (
	"github.com/shopspring/decimal"

	"github.com/hotel/backoffice/internal/domain/shared"
)

// DefaultVATRate is the standard Malawian VAT rate applied when no
// settings row has been configured yet.
var DefaultVATRate = decimal.RequireFromString("16.5")

// PaymentSettings is the global, admin-configurable tax configuration.
// A single row exists; rate changes never rewrite historical payment
// snapshots, they only affect new payments and booking-level projections.
type PaymentSettings struct {
	shared.BaseAggregateRoot
	VATEnabled bool
	VATRate    decimal.Decimal
}

// NewPaymentSettings creates settings with the default rate enabled
func NewPaymentSettings() *PaymentSettings {
	return &PaymentSettings{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		VATEnabled:        true,
		VATRate:           DefaultVATRate,
	}
}

// EffectiveVATRate returns the rate applied to new records: the
// configured rate when VAT is enabled, zero otherwise.
func (s *PaymentSettings) EffectiveVATRate() decimal.Decimal {
	if !s.VATEnabled {
		return decimal.Zero
	}
	return s.VATRate
}

// Configure updates the settings after validating the rate
func (s *PaymentSettings) Configure(enabled bool, rate decimal.Decimal) error {
	if rate.IsNegative() {
		return shared.NewValidationError("VAT rate cannot be negative")
	}
	if rate.GreaterThan(percentDivisor) {
		return shared.NewValidationError("VAT rate cannot exceed 100 percent")
	}
	s.VATEnabled = enabled
	s.VATRate = rate
	s.IncrementVersion()
	return nil
}
