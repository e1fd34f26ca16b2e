package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/entity"
	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/internal/domain/catalogs/product"
)

func schemeProduct(companyID id.ID) *product.Product {
	p := product.New("PRD-001", "Glucose Biscuit", companyID, types.MustMoney("10"))
	p.DiscountedRate = types.MustMoney("9.5")
	p.SecondaryAvailable = true
	p.SecondaryQualifyingQty = 24
	p.SecondaryDiscountPct = types.MustMoney("2")
	return p
}

func TestAddLine_SnapshotsPricing(t *testing.T) {
	companyID := id.New()
	o := New(id.New())
	p := schemeProduct(companyID)

	require.NoError(t, o.AddLine(p, 24))

	require.Len(t, o.Items, 1)
	item := o.Items[0]
	assert.Equal(t, p.ID, item.ProductID)
	assert.Equal(t, "Glucose Biscuit", item.ProductName)
	assert.True(t, types.MustMoney("9.31").Equal(item.Rate))
	assert.True(t, types.MustMoney("223.44").Equal(item.Total))
	assert.True(t, item.SchemeApplied)
	assert.Equal(t, "2% Qty Scheme", item.SchemeText)
	assert.Equal(t, companyID, o.CompanyID)
	assert.True(t, types.MustMoney("223.44").Equal(o.TotalAmount))
}

func TestAddLine_RejectsSecondCompany(t *testing.T) {
	o := New(id.New())
	require.NoError(t, o.AddLine(schemeProduct(id.New()), 24))

	err := o.AddLine(schemeProduct(id.New()), 24)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeCompanyMismatch, appErr.Code)
	assert.Len(t, o.Items, 1)
}

func TestCheckQuantityRules_CollectsAllViolations(t *testing.T) {
	companyID := id.New()
	o := New(id.New())

	soldOut := product.New("PRD-010", "Soap Bar", companyID, types.MustMoney("30"))
	soldOut.StockOut = true

	strict := product.New("PRD-011", "Tea Pack", companyID, types.MustMoney("50"))
	strict.MinOrderQty = 12
	strict.OrderMultiple = 6

	require.NoError(t, o.AddLine(soldOut, 5))
	require.NoError(t, o.AddLine(strict, 5))

	products := map[id.ID]*product.Product{
		soldOut.ID: soldOut,
		strict.ID:  strict,
	}

	violations := o.CheckQuantityRules(products)
	// one for stock-out, one for minimum, one for multiple
	require.Len(t, violations, 3)
	assert.Contains(t, violations[0], "out of stock")
	assert.Contains(t, violations[1], "below the minimum")
	assert.Contains(t, violations[2], "not a multiple of")
}

func TestCheckQuantityRules_CleanOrder(t *testing.T) {
	companyID := id.New()
	o := New(id.New())
	p := schemeProduct(companyID)
	require.NoError(t, o.AddLine(p, 24))

	violations := o.CheckQuantityRules(map[id.ID]*product.Product{p.ID: p})
	assert.Empty(t, violations)
}

func TestOrderValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("empty order rejected", func(t *testing.T) {
		o := New(id.New())
		assert.Error(t, o.Validate(ctx))
	})

	t.Run("missing customer rejected", func(t *testing.T) {
		o := New(id.Nil())
		require.NoError(t, o.AddLine(schemeProduct(id.New()), 24))
		assert.Error(t, o.Validate(ctx))
	})

	t.Run("priced order passes", func(t *testing.T) {
		o := New(id.New())
		require.NoError(t, o.AddLine(schemeProduct(id.New()), 24))
		assert.NoError(t, o.Validate(ctx))
	})
}

func TestGenerateMovements_SaleFromGoodPool(t *testing.T) {
	ctx := context.Background()
	o := New(id.New())
	companyID := id.New()
	p1 := schemeProduct(companyID)
	p2 := product.New("PRD-002", "Tea Pack", companyID, types.MustMoney("50"))

	require.NoError(t, o.AddLine(p1, 24))
	require.NoError(t, o.AddLine(p2, 6))

	set, err := o.GenerateMovements(ctx)
	require.NoError(t, err)
	require.Len(t, set.Inventory, 2)
	require.NoError(t, set.Validate())

	for _, m := range set.Inventory {
		assert.Equal(t, entity.MovementSale, m.MovementType)
		assert.Equal(t, entity.PoolGood, m.Pool)
		assert.Equal(t, o.ID, m.RecorderID)
		assert.Equal(t, "Order", m.RecorderType)
		assert.Equal(t, 1, m.RecorderVersion)
	}
	assert.Equal(t, types.Pieces(-24), set.Inventory[0].QtyDelta)
	assert.Equal(t, types.Pieces(-6), set.Inventory[1].QtyDelta)
}

func TestRecalcTotal(t *testing.T) {
	o := New(id.New())
	companyID := id.New()
	require.NoError(t, o.AddLine(schemeProduct(companyID), 10))
	require.NoError(t, o.AddLine(product.New("PRD-002", "Tea Pack", companyID, types.MustMoney("50")), 2))

	// 10 * 9.50 + 2 * 50
	assert.True(t, types.MustMoney("195").Equal(o.TotalAmount))
	assert.Equal(t, types.Pieces(12), o.TotalPieces())
}
