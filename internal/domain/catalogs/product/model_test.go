package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
)

func validProduct() *Product {
	p := New("PRD-001", "Parle-G 10rs", id.New(), types.MustMoney("10"))
	p.DiscountedRate = types.MustMoney("9.5")
	p.ProductDiscountPct = types.MustMoney("5")
	p.PacketsPerCarton = 12
	p.PiecesPerPacket = 12
	return p
}

func TestProductValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid product passes", func(t *testing.T) {
		require.NoError(t, validProduct().Validate(ctx))
	})

	t.Run("requires company", func(t *testing.T) {
		p := validProduct()
		p.CompanyID = id.Nil()
		assert.Error(t, p.Validate(ctx))
	})

	t.Run("discounted rate above base rate rejected", func(t *testing.T) {
		p := validProduct()
		p.DiscountedRate = types.MustMoney("10.01")
		assert.Error(t, p.Validate(ctx))
	})

	t.Run("discounted rate equal to base rate allowed", func(t *testing.T) {
		p := validProduct()
		p.DiscountedRate = p.BaseRate
		assert.NoError(t, p.Validate(ctx))
	})

	t.Run("secondary scheme needs qty and pct", func(t *testing.T) {
		p := validProduct()
		p.SecondaryAvailable = true
		assert.Error(t, p.Validate(ctx))

		p.SecondaryQualifyingQty = 24
		assert.Error(t, p.Validate(ctx))

		p.SecondaryDiscountPct = types.MustMoney("2")
		assert.NoError(t, p.Validate(ctx))
	})

	t.Run("additional tier without secondary rejected", func(t *testing.T) {
		p := validProduct()
		p.AdditionalQualifyingQty = 48
		p.AdditionalSecondaryDiscountPct = types.MustMoney("1")
		assert.Error(t, p.Validate(ctx))
	})

	t.Run("additional tier must exceed secondary qty", func(t *testing.T) {
		p := validProduct()
		p.SecondaryAvailable = true
		p.SecondaryQualifyingQty = 24
		p.SecondaryDiscountPct = types.MustMoney("2")
		p.AdditionalQualifyingQty = 24
		p.AdditionalSecondaryDiscountPct = types.MustMoney("1")
		assert.Error(t, p.Validate(ctx))

		p.AdditionalQualifyingQty = 48
		assert.NoError(t, p.Validate(ctx))
	})

	t.Run("percentage out of range rejected", func(t *testing.T) {
		p := validProduct()
		p.ProductDiscountPct = types.MustMoney("101")
		assert.Error(t, p.Validate(ctx))
	})
}

func TestProductSchemeFlags(t *testing.T) {
	p := validProduct()
	assert.False(t, p.HasSecondaryScheme())
	assert.False(t, p.HasAdditionalScheme())

	p.SecondaryAvailable = true
	p.SecondaryQualifyingQty = 24
	p.SecondaryDiscountPct = types.MustMoney("2")
	assert.True(t, p.HasSecondaryScheme())
	assert.False(t, p.HasAdditionalScheme())

	p.AdditionalQualifyingQty = 48
	p.AdditionalSecondaryDiscountPct = types.MustMoney("1")
	assert.True(t, p.HasAdditionalScheme())
}

func TestSuggestedPurchaseRate(t *testing.T) {
	p := validProduct()
	// default margin 25% off base rate
	assert.True(t, p.SuggestedPurchaseRate().Equal(types.MustMoney("7.5")))

	p.MarginPct = types.MustMoney("10")
	assert.True(t, p.SuggestedPurchaseRate().Equal(types.MustMoney("9")))
}

func TestPiecesPerCarton(t *testing.T) {
	p := validProduct()
	assert.Equal(t, types.Pieces(144), p.PiecesPerCarton())
}
