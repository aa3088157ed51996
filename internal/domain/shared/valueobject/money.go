package valueobject

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyMWK is the Malawi Kwacha, the only currency the back office handles
const CurrencyMWK = "MWK"

// Money is an immutable monetary amount with two decimal places
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney creates a Money value in the given currency
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{
		amount:   amount.Round(2),
		currency: currency,
	}
}

// NewMoneyMWK creates a Money value in Malawi Kwacha
func NewMoneyMWK(amount decimal.Decimal) Money {
	return NewMoney(amount, CurrencyMWK)
}

// MoneyFromFloat creates a Money value in MWK from a float amount
func MoneyFromFloat(amount float64) Money {
	return NewMoneyMWK(decimal.NewFromFloat(amount))
}

// ZeroMWK is a zero amount in Malawi Kwacha
func ZeroMWK() Money {
	return NewMoneyMWK(decimal.Zero)
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() string {
	if m.currency == "" {
		return CurrencyMWK
	}
	return m.currency
}

// Add returns the sum of two amounts. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency() != other.Currency() {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency(), other.Currency())
	}
	return NewMoney(m.amount.Add(other.amount), m.Currency()), nil
}

// Sub returns the difference of two amounts. Currencies must match.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency() != other.Currency() {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency(), other.Currency())
	}
	return NewMoney(m.amount.Sub(other.amount), m.Currency()), nil
}

// MustAdd is Add for amounts known to share a currency
func (m Money) MustAdd(other Money) Money {
	sum, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return sum
}

// MustSub is Sub for amounts known to share a currency
func (m Money) MustSub(other Money) Money {
	diff, err := m.Sub(other)
	if err != nil {
		panic(err)
	}
	return diff
}

// IsZero reports whether the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsNegative reports whether the amount is below zero
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// IsPositive reports whether the amount is above zero
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// LessThan reports whether m is strictly less than other
func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

// GreaterThan reports whether m is strictly greater than other
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// Equals reports whether two amounts are equal in value and currency
func (m Money) Equals(other Money) bool {
	return m.Currency() == other.Currency() && m.amount.Equal(other.amount)
}

// Min returns the smaller of two amounts
func (m Money) Min(other Money) Money {
	if other.LessThan(m) {
		return other
	}
	return m
}

// String formats the amount with its currency code
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.Currency())
}

// Value implements driver.Valuer so Money persists as a numeric column
func (m Money) Value() (driver.Value, error) {
	return m.amount.StringFixed(2), nil
}

// Scan implements sql.Scanner
func (m *Money) Scan(value interface{}) error {
	if value == nil {
		*m = ZeroMWK()
		return nil
	}
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("scan money: %w", err)
	}
	*m = NewMoneyMWK(d)
	return nil
}
