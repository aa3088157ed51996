package billing

import (
	"github.com/shopspring/decimal"

	"github.com/hotel/backoffice/internal/domain/shared/valueobject"
)

var percentDivisor = decimal.NewFromInt(100)

// ComputeVAT derives the tax amount and gross total for a net amount
// at the given percentage rate. The tax amount is rounded to two
// decimal places before the total is formed, so the invariant
// total = net + vat holds exactly on the stored values.
func ComputeVAT(net valueobject.Money, ratePercent decimal.Decimal) (vat valueobject.Money, total valueobject.Money) {
	raw := net.Amount().Mul(ratePercent).Div(percentDivisor).Round(2)
	vat = valueobject.NewMoney(raw, net.Currency())
	total = net.MustAdd(vat)
	return vat, total
}
