// Package pricing computes per-line selling rates.
//
// The standing discounted rate is the starting point. Quantity schemes
// then apply on top of it: a first tier when the ordered quantity
// reaches the qualifying quantity, and an optional second tier at a
// higher quantity that compounds on the first. The second tier never
// applies alone.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"tradelink/internal/core/types"
	"tradelink/internal/domain/catalogs/product"
)

// LinePricing is the priced outcome for one order line.
type LinePricing struct {
	// BaseRate is the list price per piece
	BaseRate types.Money

	// Rate is the effective selling rate per piece after all discounts,
	// rounded to the cent
	Rate types.Money

	// DiscountPct is the total discount off the base rate implied by Rate
	DiscountPct types.Money

	// Total is Rate * Qty, rounded to the cent
	Total types.Money

	// SchemeApplied reports whether any quantity tier triggered
	SchemeApplied bool

	// SchemeText describes the applied tiers (e.g. "2% Qty Scheme + 1% Add.")
	SchemeText string
}

// ComputeLine prices a quantity of the product.
// A zero or negative quantity yields a zero total at the standing rate.
func ComputeLine(p *product.Product, qty types.Pieces) LinePricing {
	netRate := p.DiscountedRate
	schemeApplied := false
	schemeText := ""

	if qty.IsPositive() && p.HasSecondaryScheme() && qty >= p.SecondaryQualifyingQty {
		netRate = types.ApplyDiscountPct(netRate, p.SecondaryDiscountPct)
		schemeApplied = true
		schemeText = fmt.Sprintf("%s%% Qty Scheme", p.SecondaryDiscountPct.String())

		// The additional tier compounds on the first tier
		if p.HasAdditionalScheme() && qty >= p.AdditionalQualifyingQty {
			netRate = types.ApplyDiscountPct(netRate, p.AdditionalSecondaryDiscountPct)
			schemeText += fmt.Sprintf(" + %s%% Add.", p.AdditionalSecondaryDiscountPct.String())
		}
	}

	rate := types.RoundMoney(netRate)

	var total types.Money
	if qty.IsPositive() {
		total = types.RoundMoney(rate.Mul(qty.Decimal()))
	} else {
		total = types.Zero()
	}

	return LinePricing{
		BaseRate:      p.BaseRate,
		Rate:          rate,
		DiscountPct:   discountOffBase(p.BaseRate, rate),
		Total:         total,
		SchemeApplied: schemeApplied,
		SchemeText:    schemeText,
	}
}

// ComputeLineWithRate prices a line at a manually overridden rate.
// Only products flagged DiscountEditable accept overrides; the override
// must stay within (0, BaseRate].
func ComputeLineWithRate(p *product.Product, qty types.Pieces, rate types.Money) (LinePricing, error) {
	if !p.DiscountEditable {
		return LinePricing{}, fmt.Errorf("product %s does not allow rate override", p.Code)
	}
	if !rate.IsPositive() {
		return LinePricing{}, fmt.Errorf("override rate must be positive")
	}
	if rate.GreaterThan(p.BaseRate) {
		return LinePricing{}, fmt.Errorf("override rate must not exceed base rate %s", p.BaseRate.String())
	}

	rounded := types.RoundMoney(rate)

	var total types.Money
	if qty.IsPositive() {
		total = types.RoundMoney(rounded.Mul(qty.Decimal()))
	} else {
		total = types.Zero()
	}

	return LinePricing{
		BaseRate:    p.BaseRate,
		Rate:        rounded,
		DiscountPct: discountOffBase(p.BaseRate, rounded),
		Total:       total,
	}, nil
}

// discountOffBase derives the effective discount percentage, rounded to
// two decimals. A non-positive base rate yields zero.
func discountOffBase(baseRate, rate types.Money) types.Money {
	if !baseRate.IsPositive() {
		return types.Zero()
	}
	pct := baseRate.Sub(rate).Div(baseRate).Mul(decimal.NewFromInt(100))
	return pct.Round(2)
}
