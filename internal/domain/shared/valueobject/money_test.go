package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney_RoundsToTwoPlaces(t *testing.T) {
	m := NewMoneyMWK(decimal.RequireFromString("100.005"))
	assert.Equal(t, "100.01 MWK", m.String())

	m = NewMoneyMWK(decimal.RequireFromString("100.004"))
	assert.Equal(t, "100.00 MWK", m.String())
}

func TestMoney_AddSub(t *testing.T) {
	a := MoneyFromFloat(150000)
	b := MoneyFromFloat(50000)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Equals(MoneyFromFloat(200000)))

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.True(t, diff.Equals(MoneyFromFloat(100000)))
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	a := MoneyFromFloat(10)
	b := NewMoney(decimal.NewFromInt(10), "USD")

	_, err := a.Add(b)
	assert.Error(t, err)

	_, err = a.Sub(b)
	assert.Error(t, err)
}

func TestMoney_Comparisons(t *testing.T) {
	small := MoneyFromFloat(10)
	big := MoneyFromFloat(20)

	assert.True(t, small.LessThan(big))
	assert.True(t, big.GreaterThan(small))
	assert.True(t, small.Min(big).Equals(small))
	assert.True(t, ZeroMWK().IsZero())
	assert.True(t, MoneyFromFloat(-1).IsNegative())
	assert.True(t, MoneyFromFloat(1).IsPositive())
}

func TestMoney_ScanValue(t *testing.T) {
	m := MoneyFromFloat(1234.5)
	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "1234.50", v)

	var scanned Money
	require.NoError(t, scanned.Scan("1234.50"))
	assert.True(t, scanned.Equals(m))

	var fromNil Money
	require.NoError(t, fromNil.Scan(nil))
	assert.True(t, fromNil.IsZero())
}
