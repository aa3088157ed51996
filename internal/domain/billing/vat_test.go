package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/hotel/backoffice/internal/domain/shared/valueobject"
)

func TestComputeVAT(t *testing.T) {
	tests := []struct {
		name      string
		net       float64
		rate      string
		wantVAT   string
		wantTotal string
	}{
		{"standard rate", 10000, "16.5", "1650.00", "11650.00"},
		{"zero rate", 300000, "0", "0.00", "300000.00"},
		{"rounding half up", 10.01, "16.5", "1.65", "11.66"},
		{"zero net", 0, "16.5", "0.00", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := valueobject.MoneyFromFloat(tt.net)
			rate := decimal.RequireFromString(tt.rate)

			vat, total := ComputeVAT(net, rate)

			assert.Equal(t, tt.wantVAT, vat.Amount().StringFixed(2))
			assert.Equal(t, tt.wantTotal, total.Amount().StringFixed(2))
		})
	}
}

func TestComputeVAT_TotalInvariant(t *testing.T) {
	net := valueobject.MoneyFromFloat(12345.67)
	vat, total := ComputeVAT(net, decimal.RequireFromString("16.5"))

	assert.True(t, total.Equals(net.MustAdd(vat)))
}

func TestPaymentSettings_EffectiveVATRate(t *testing.T) {
	s := NewPaymentSettings()
	assert.True(t, s.VATEnabled)
	assert.True(t, s.EffectiveVATRate().Equal(DefaultVATRate))

	require := decimal.RequireFromString
	assert.NoError(t, s.Configure(false, require("16.5")))
	assert.True(t, s.EffectiveVATRate().IsZero())

	assert.NoError(t, s.Configure(true, require("20")))
	assert.True(t, s.EffectiveVATRate().Equal(require("20")))
}

func TestPaymentSettings_Configure_RejectsInvalidRate(t *testing.T) {
	s := NewPaymentSettings()

	assert.Error(t, s.Configure(true, decimal.RequireFromString("-1")))
	assert.Error(t, s.Configure(true, decimal.RequireFromString("101")))
}
