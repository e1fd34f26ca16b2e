package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/internal/domain/catalogs/product"
)

// biscuit is the canonical scheme product used across these tests:
// list price 10, standing rate 9.50, 2% off at 24 pieces, extra 1% at 48.
func biscuit() *product.Product {
	p := product.New("PRD-001", "Glucose Biscuit", id.New(), types.MustMoney("10"))
	p.DiscountedRate = types.MustMoney("9.5")
	p.ProductDiscountPct = types.MustMoney("5")
	p.SecondaryAvailable = true
	p.SecondaryQualifyingQty = 24
	p.SecondaryDiscountPct = types.MustMoney("2")
	p.AdditionalQualifyingQty = 48
	p.AdditionalSecondaryDiscountPct = types.MustMoney("1")
	return p
}

func assertMoney(t *testing.T, want string, got types.Money) {
	t.Helper()
	assert.True(t, types.MustMoney(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestComputeLine_BelowThreshold(t *testing.T) {
	lp := ComputeLine(biscuit(), 23)

	assertMoney(t, "9.5", lp.Rate)
	assertMoney(t, "218.50", lp.Total)
	assertMoney(t, "5", lp.DiscountPct)
	assert.False(t, lp.SchemeApplied)
	assert.Empty(t, lp.SchemeText)
}

func TestComputeLine_FirstTier(t *testing.T) {
	lp := ComputeLine(biscuit(), 24)

	// 9.50 less 2% = 9.31
	assertMoney(t, "9.31", lp.Rate)
	assertMoney(t, "223.44", lp.Total)
	assertMoney(t, "6.9", lp.DiscountPct)
	assert.True(t, lp.SchemeApplied)
	assert.Equal(t, "2% Qty Scheme", lp.SchemeText)
}

func TestComputeLine_BothTiers(t *testing.T) {
	lp := ComputeLine(biscuit(), 48)

	// 9.50 less 2% = 9.31, less 1% = 9.2169 -> 9.22
	assertMoney(t, "9.22", lp.Rate)
	assertMoney(t, "442.56", lp.Total)
	assertMoney(t, "7.8", lp.DiscountPct)
	assert.True(t, lp.SchemeApplied)
	assert.Equal(t, "2% Qty Scheme + 1% Add.", lp.SchemeText)
}

func TestComputeLine_SecondTierNeverAlone(t *testing.T) {
	p := biscuit()
	p.SecondaryAvailable = false

	// First tier off: the additional tier must not trigger even at 48+
	lp := ComputeLine(p, 100)
	assertMoney(t, "9.5", lp.Rate)
	assert.False(t, lp.SchemeApplied)
	assert.Empty(t, lp.SchemeText)
}

func TestComputeLine_ZeroQuantity(t *testing.T) {
	lp := ComputeLine(biscuit(), 0)

	assertMoney(t, "9.5", lp.Rate)
	assert.True(t, lp.Total.IsZero())
	assert.False(t, lp.SchemeApplied)
	assert.Empty(t, lp.SchemeText)
}

func TestComputeLine_NoScheme(t *testing.T) {
	p := product.New("PRD-002", "Plain Soap", id.New(), types.MustMoney("30"))
	p.DiscountedRate = types.MustMoney("28.75")

	lp := ComputeLine(p, 10)
	assertMoney(t, "28.75", lp.Rate)
	assertMoney(t, "287.50", lp.Total)
	assertMoney(t, "4.17", lp.DiscountPct) // (30-28.75)/30*100 = 4.1666..
	assert.False(t, lp.SchemeApplied)
}

// Effective rate never increases as the quantity grows.
func TestComputeLine_RateMonotonic(t *testing.T) {
	p := biscuit()
	prev := types.MustMoney("999999")

	for qty := types.Pieces(1); qty <= 120; qty++ {
		lp := ComputeLine(p, qty)
		assert.True(t, lp.Rate.LessThanOrEqual(prev),
			"rate rose from %s to %s at qty %d", prev.String(), lp.Rate.String(), qty)
		prev = lp.Rate
	}
}

func TestComputeLineWithRate(t *testing.T) {
	p := biscuit()
	p.DiscountEditable = true

	lp, err := ComputeLineWithRate(p, 10, types.MustMoney("9"))
	require.NoError(t, err)
	assertMoney(t, "9", lp.Rate)
	assertMoney(t, "90", lp.Total)
	assertMoney(t, "10", lp.DiscountPct)
	assert.False(t, lp.SchemeApplied)
}

func TestComputeLineWithRate_Rejections(t *testing.T) {
	p := biscuit()

	_, err := ComputeLineWithRate(p, 10, types.MustMoney("9"))
	assert.Error(t, err, "override on non-editable product")

	p.DiscountEditable = true
	_, err = ComputeLineWithRate(p, 10, types.MustMoney("0"))
	assert.Error(t, err, "zero override rate")

	_, err = ComputeLineWithRate(p, 10, types.MustMoney("10.01"))
	assert.Error(t, err, "override above base rate")
}
