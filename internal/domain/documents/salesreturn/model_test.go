package salesreturn

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
	"tradelink/internal/domain/documents/order"
)

// deliveredOrder builds a delivered two-line order:
// 24 biscuits at 9.31 and 6 teas at 50.
func deliveredOrder(t *testing.T) *order.Order {
	t.Helper()
	companyID := id.New()

	biscuit := product.New("PRD-001", "Glucose Biscuit", companyID, types.MustMoney("10"))
	biscuit.DiscountedRate = types.MustMoney("9.5")
	biscuit.SecondaryAvailable = true
	biscuit.SecondaryQualifyingQty = 24
	biscuit.SecondaryDiscountPct = types.MustMoney("2")

	tea := product.New("PRD-002", "Tea Pack", companyID, types.MustMoney("50"))

	o := order.New(id.New())
	o.Number = "INV-2026-00001"
	require.NoError(t, o.AddLine(biscuit, 24))
	require.NoError(t, o.AddLine(tea, 6))
	o.Status = order.StatusDelivered
	return o
}

func noneReturned() map[id.ID]types.Pieces {
	return map[id.ID]types.Pieces{}
}

func TestIsDamageReason(t *testing.T) {
	assert.True(t, IsDamageReason("Damaged in transit"))
	assert.True(t, IsDamageReason("near expiry stock"))
	assert.False(t, IsDamageReason("customer overstocked"))
	assert.False(t, IsDamageReason(""))
}

func TestBuildFull_GoodReason(t *testing.T) {
	o := deliveredOrder(t)

	ret, err := BuildFull(o, "customer overstocked", noneReturned())
	require.NoError(t, err)

	assert.Equal(t, TypeFull, ret.Type)
	require.Len(t, ret.Items, 2)
	for _, item := range ret.Items {
		assert.Equal(t, item.InvoicedQty, item.GoodQty, "full return of an undamaged reason goes to good stock")
		assert.True(t, item.DamagedQty.IsZero())
	}
	// 24 * 9.31 + 6 * 50
	assert.True(t, types.MustMoney("523.44").Equal(ret.TotalAmount))
}

func TestBuildFull_DamageReasonRoutesToDamagedPool(t *testing.T) {
	o := deliveredOrder(t)

	ret, err := BuildFull(o, "Damaged in transit", noneReturned())
	require.NoError(t, err)

	for _, item := range ret.Items {
		assert.True(t, item.GoodQty.IsZero())
		assert.Equal(t, item.InvoicedQty, item.DamagedQty)
	}
	assert.True(t, types.MustMoney("523.44").Equal(ret.TotalAmount))
}

func TestBuildFull_SkipsFullyReturnedLines(t *testing.T) {
	o := deliveredOrder(t)
	returned := map[id.ID]types.Pieces{
		o.Items[0].ProductID: 24, // biscuits fully returned earlier
		o.Items[1].ProductID: 2,
	}

	ret, err := BuildFull(o, "shop closing", returned)
	require.NoError(t, err)

	require.Len(t, ret.Items, 1)
	assert.Equal(t, o.Items[1].ProductID, ret.Items[0].ProductID)
	assert.Equal(t, types.Pieces(4), ret.Items[0].GoodQty)
	// 4 * 50
	assert.True(t, types.MustMoney("200").Equal(ret.TotalAmount))
}

func TestBuildFull_NothingLeft(t *testing.T) {
	o := deliveredOrder(t)
	returned := map[id.ID]types.Pieces{
		o.Items[0].ProductID: 24,
		o.Items[1].ProductID: 6,
	}

	_, err := BuildFull(o, "again", returned)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvoiceAlreadyReturned, appErr.Code)
}

func TestBuildPartial_SplitsPools(t *testing.T) {
	o := deliveredOrder(t)

	ret, err := BuildPartial(o, "some damaged on arrival", []LineSpec{
		{ProductID: o.Items[0].ProductID, GoodQty: 3, DamagedQty: 2},
	}, noneReturned())
	require.NoError(t, err)

	require.Len(t, ret.Items, 1)
	item := ret.Items[0]
	assert.Equal(t, types.Pieces(3), item.GoodQty)
	assert.Equal(t, types.Pieces(2), item.DamagedQty)
	// 5 * 9.31
	assert.True(t, types.MustMoney("46.55").Equal(item.Amount))
	assert.True(t, types.MustMoney("46.55").Equal(ret.TotalAmount))
}

func TestBuildPartial_CumulativeLimit(t *testing.T) {
	o := deliveredOrder(t)
	productID := o.Items[0].ProductID

	// 20 of 24 already returned, 4 remain
	returned := map[id.ID]types.Pieces{productID: 20}

	_, err := BuildPartial(o, "damaged", []LineSpec{
		{ProductID: productID, GoodQty: 3, DamagedQty: 2},
	}, returned)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeReturnExceedsInvoiced, appErr.Code)
	assert.Equal(t, int64(5), appErr.Details["requested"])
	assert.Equal(t, int64(4), appErr.Details["remaining"])

	// Exactly the remainder is fine
	ret, err := BuildPartial(o, "damaged", []LineSpec{
		{ProductID: productID, GoodQty: 2, DamagedQty: 2},
	}, returned)
	require.NoError(t, err)
	assert.Equal(t, types.Pieces(4), ret.Items[0].ReturnedQty())
}

func TestBuildPartial_NoItemsSelected(t *testing.T) {
	o := deliveredOrder(t)

	_, err := BuildPartial(o, "nothing", []LineSpec{
		{ProductID: o.Items[0].ProductID, GoodQty: 0, DamagedQty: 0},
	}, noneReturned())
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNoItemsSelected, appErr.Code)
}

func TestBuildPartial_UnknownProduct(t *testing.T) {
	o := deliveredOrder(t)

	_, err := BuildPartial(o, "reason", []LineSpec{
		{ProductID: id.New(), GoodQty: 1},
	}, noneReturned())
	assert.Error(t, err)
}

func TestBuildPartial_NegativeQuantities(t *testing.T) {
	o := deliveredOrder(t)

	_, err := BuildPartial(o, "reason", []LineSpec{
		{ProductID: o.Items[0].ProductID, GoodQty: -1, DamagedQty: 2},
	}, noneReturned())
	assert.Error(t, err)
}

func TestGenerateMovements_PoolSplit(t *testing.T) {
	ctx := context.Background()
	o := deliveredOrder(t)

	ret, err := BuildPartial(o, "partly damaged", []LineSpec{
		{ProductID: o.Items[0].ProductID, GoodQty: 3, DamagedQty: 2},
		{ProductID: o.Items[1].ProductID, DamagedQty: 1},
	}, noneReturned())
	require.NoError(t, err)

	set, err := ret.GenerateMovements(ctx)
	require.NoError(t, err)
	require.NoError(t, set.Validate())
	require.Len(t, set.Inventory, 3)

	var goodIn, damagedIn types.Pieces
	for _, m := range set.Inventory {
		switch m.Pool {
		case entity.PoolGood:
			assert.Equal(t, entity.MovementSaleReturnGood, m.MovementType)
			goodIn += m.QtyDelta
		case entity.PoolDamaged:
			assert.Equal(t, entity.MovementSaleReturnDamaged, m.MovementType)
			damagedIn += m.QtyDelta
		}
	}
	assert.Equal(t, types.Pieces(3), goodIn, "only good quantities re-enter good stock")
	assert.Equal(t, types.Pieces(3), damagedIn)
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	o := deliveredOrder(t)

	ret, err := BuildPartial(o, "reason", []LineSpec{
		{ProductID: o.Items[0].ProductID, GoodQty: 3},
	}, noneReturned())
	require.NoError(t, err)
	require.NoError(t, ret.Validate(ctx))

	// A corrupted line over the invoiced quantity fails validation
	ret.Items[0].GoodQty = 25
	assert.Error(t, ret.Validate(ctx))
}
