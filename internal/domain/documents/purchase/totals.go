package purchase

import (
	"github.com/shopspring/decimal"

	"tradelink/internal/core/types"
)

// Totals are the computed commercial totals of a bill.
type Totals struct {
	Gross          types.Money `json:"gross"`
	DiscountAmount types.Money `json:"discountAmount"`
	TaxableBase    types.Money `json:"taxableBase"`
	TaxAmount      types.Money `json:"taxAmount"`
	Net            types.Money `json:"net"`
}

var one = decimal.NewFromInt(1)
var hundred = decimal.NewFromInt(100)

// ComputeTotals derives the bill totals from its terms.
//
// The discount applies to the gross; the taxable base never goes below
// zero. EXCLUSIVE adds tax on top of the base; INCLUSIVE carves the tax
// out of it (the base already contains it, so net gains no tax). Other
// charges are tax-free and join at the end. Every figure is rounded to
// the cent.
func ComputeTotals(gross types.Money, discountType DiscountType, discountValue types.Money, taxMode TaxMode, taxPct types.Money, otherCharges types.Money) Totals {
	gross = types.RoundMoney(gross)

	var discount types.Money
	if discountType == DiscountPercent {
		discount = types.PctOf(gross, discountValue)
	} else {
		discount = discountValue
	}
	discount = types.RoundMoney(discount)

	base := gross.Sub(discount)
	if base.IsNegative() {
		base = types.Zero()
	}

	var tax, net types.Money
	switch taxMode {
	case TaxExclusive:
		tax = types.RoundMoney(types.PctOf(base, taxPct))
		net = base.Add(tax).Add(otherCharges)
	case TaxInclusive:
		divisor := one.Add(taxPct.Div(hundred))
		if !divisor.IsPositive() {
			// a rate of -100% or lower leaves no pre-tax base to carve out
			tax = types.Zero()
			net = base.Add(otherCharges)
			break
		}
		preTax := base.Div(divisor)
		tax = types.RoundMoney(base.Sub(preTax))
		net = base.Add(otherCharges)
	default: // TaxNone
		tax = types.Zero()
		net = base.Add(otherCharges)
	}

	return Totals{
		Gross:          gross,
		DiscountAmount: discount,
		TaxableBase:    base,
		TaxAmount:      tax,
		Net:            types.RoundMoney(net),
	}
}
