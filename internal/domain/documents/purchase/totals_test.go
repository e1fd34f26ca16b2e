package purchase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tradelink/internal/core/types"
)

func assertMoney(t *testing.T, want string, got types.Money) {
	t.Helper()
	assert.True(t, types.MustMoney(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestComputeTotals_ExclusiveWithPercentDiscount(t *testing.T) {
	// 1000 gross, 10% discount, 13% tax on top, 50 freight
	totals := ComputeTotals(
		types.MustMoney("1000"),
		DiscountPercent, types.MustMoney("10"),
		TaxExclusive, types.MustMoney("13"),
		types.MustMoney("50"),
	)

	assertMoney(t, "1000", totals.Gross)
	assertMoney(t, "100", totals.DiscountAmount)
	assertMoney(t, "900", totals.TaxableBase)
	assertMoney(t, "117", totals.TaxAmount)
	assertMoney(t, "1067", totals.Net)
}

func TestComputeTotals_AbsoluteDiscount(t *testing.T) {
	totals := ComputeTotals(
		types.MustMoney("1000"),
		DiscountAbsolute, types.MustMoney("75"),
		TaxNone, types.Zero(),
		types.Zero(),
	)

	assertMoney(t, "75", totals.DiscountAmount)
	assertMoney(t, "925", totals.TaxableBase)
	assertMoney(t, "0", totals.TaxAmount)
	assertMoney(t, "925", totals.Net)
}

func TestComputeTotals_Inclusive(t *testing.T) {
	// Base 1130 already contains 13% tax: pre-tax 1000, tax 130
	totals := ComputeTotals(
		types.MustMoney("1130"),
		DiscountAbsolute, types.Zero(),
		TaxInclusive, types.MustMoney("13"),
		types.Zero(),
	)

	assertMoney(t, "1130", totals.TaxableBase)
	assertMoney(t, "130", totals.TaxAmount)
	// Inclusive tax adds nothing on top
	assertMoney(t, "1130", totals.Net)
}

func TestComputeTotals_DiscountLargerThanGrossClampsToZero(t *testing.T) {
	totals := ComputeTotals(
		types.MustMoney("100"),
		DiscountAbsolute, types.MustMoney("150"),
		TaxExclusive, types.MustMoney("13"),
		types.MustMoney("20"),
	)

	assertMoney(t, "150", totals.DiscountAmount)
	assertMoney(t, "0", totals.TaxableBase)
	assertMoney(t, "0", totals.TaxAmount)
	assertMoney(t, "20", totals.Net)
}

// An inclusive rate of -100% would zero the divisor; the computation
// must degrade to zero tax, not panic.
func TestComputeTotals_InclusiveDegenerateRate(t *testing.T) {
	for _, pct := range []string{"-100", "-150"} {
		totals := ComputeTotals(
			types.MustMoney("500"),
			DiscountAbsolute, types.Zero(),
			TaxInclusive, types.MustMoney(pct),
			types.MustMoney("10"),
		)
		assertMoney(t, "0", totals.TaxAmount)
		assertMoney(t, "510", totals.Net)
	}
}

// With a zero tax percentage all three modes agree.
func TestComputeTotals_ZeroTaxModesAgree(t *testing.T) {
	gross := types.MustMoney("500")
	disc := types.MustMoney("5")

	var nets []types.Money
	for _, mode := range []TaxMode{TaxExclusive, TaxInclusive, TaxNone} {
		totals := ComputeTotals(gross, DiscountPercent, disc, mode, types.Zero(), types.MustMoney("10"))
		assertMoney(t, "0", totals.TaxAmount)
		nets = append(nets, totals.Net)
	}
	assert.True(t, nets[0].Equal(nets[1]))
	assert.True(t, nets[1].Equal(nets[2]))
}

// Totals are a pure function: recomputing from the same inputs changes nothing.
func TestComputeTotals_Idempotent(t *testing.T) {
	first := ComputeTotals(
		types.MustMoney("999.99"),
		DiscountPercent, types.MustMoney("7.5"),
		TaxExclusive, types.MustMoney("18"),
		types.MustMoney("12.34"),
	)
	second := ComputeTotals(first.Gross, DiscountPercent, types.MustMoney("7.5"), TaxExclusive, types.MustMoney("18"), types.MustMoney("12.34"))

	assert.True(t, first.Net.Equal(second.Net))
	assert.True(t, first.TaxAmount.Equal(second.TaxAmount))
	assert.True(t, first.DiscountAmount.Equal(second.DiscountAmount))
}

func TestComputeTotals_RoundsHalfUp(t *testing.T) {
	// 33.335 rounds to 33.34 on the discount
	totals := ComputeTotals(
		types.MustMoney("666.70"),
		DiscountPercent, types.MustMoney("5"),
		TaxNone, types.Zero(),
		types.Zero(),
	)
	assertMoney(t, "33.34", totals.DiscountAmount)
	assertMoney(t, "633.36", totals.TaxableBase)
}
