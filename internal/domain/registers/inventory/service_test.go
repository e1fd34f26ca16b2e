package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelink/internal/core/entity"
	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
)

// memRepo keeps movements in memory and derives balances as running sums,
// matching the production SQL behavior.
type memRepo struct {
	movements []entity.InventoryMovement
}

func (r *memRepo) CreateMovements(ctx context.Context, movements []entity.InventoryMovement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *memRepo) DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	kept := r.movements[:0]
	for _, m := range r.movements {
		if m.RecorderID == recorderID && (beforeVersion <= 0 || m.RecorderVersion < beforeVersion) {
			continue
		}
		kept = append(kept, m)
	}
	r.movements = kept
	return nil
}

func (r *memRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.InventoryMovement, error) {
	var out []entity.InventoryMovement
	for _, m := range r.movements {
		if m.RecorderID == recorderID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memRepo) GetBalance(ctx context.Context, productID id.ID, pool entity.StockPool) (entity.StockBalance, error) {
	var qty types.Pieces
	for _, m := range r.movements {
		if m.ProductID == productID && m.Pool == pool {
			qty += m.QtyDelta
		}
	}
	return entity.StockBalance{ProductID: productID, Pool: pool, Quantity: qty}, nil
}

func (r *memRepo) GetBalanceForUpdate(ctx context.Context, productID id.ID, pool entity.StockPool) (entity.StockBalance, error) {
	return r.GetBalance(ctx, productID, pool)
}

func (r *memRepo) GetBalancesByProduct(ctx context.Context, productID id.ID) ([]entity.StockBalance, error) {
	good, _ := r.GetBalance(ctx, productID, entity.PoolGood)
	damaged, _ := r.GetBalance(ctx, productID, entity.PoolDamaged)
	return []entity.StockBalance{good, damaged}, nil
}

func (r *memRepo) ListBalances(ctx context.Context, f BalanceFilter) ([]entity.StockBalance, error) {
	return nil, nil
}

func (r *memRepo) GetBalanceAtDate(ctx context.Context, productID id.ID, pool entity.StockPool, date time.Time) (types.Pieces, error) {
	var qty types.Pieces
	for _, m := range r.movements {
		if m.ProductID == productID && m.Pool == pool && !m.Period.After(date) {
			qty += m.QtyDelta
		}
	}
	return qty, nil
}

func (r *memRepo) GetMovementHistory(ctx context.Context, productID id.ID, f MovementFilter) ([]entity.InventoryMovement, error) {
	var out []entity.InventoryMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memRepo) GetTurnover(ctx context.Context, f TurnoverFilter) (Turnover, error) {
	return Turnover{}, nil
}

func (r *memRepo) RecalculateBalances(ctx context.Context, productID *id.ID) error {
	return nil
}

func newBase(recorderID id.ID) entity.MovementBase {
	return entity.NewMovementBase(recorderID, "Order", 1, time.Now().UTC())
}

func TestSaveMovements_TwoPoolFlow(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{}
	svc := NewService(repo)
	productID := id.New()

	// Sale of 10 pieces
	saleID := id.New()
	require.NoError(t, svc.SaveMovements(ctx, []entity.InventoryMovement{
		entity.NewSaleMovement(newBase(saleID), productID, 10),
	}))

	good, damaged, err := svc.GetProductStock(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, types.Pieces(-10), good)
	assert.Equal(t, types.Pieces(0), damaged)

	// Return: 3 good, 2 damaged
	returnID := id.New()
	require.NoError(t, svc.SaveMovements(ctx, []entity.InventoryMovement{
		entity.NewSaleReturnGoodMovement(newBase(returnID), productID, 3),
		entity.NewSaleReturnDamagedMovement(newBase(returnID), productID, 2),
	}))

	good, damaged, err = svc.GetProductStock(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, types.Pieces(-7), good, "damaged return must not touch good stock")
	assert.Equal(t, types.Pieces(2), damaged)
}

func TestSaveMovements_DamageAdjustmentPair(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{}
	svc := NewService(repo)
	productID := id.New()

	docID := id.New()
	pair := entity.NewDamageAdjustmentPair(newBase(docID), productID, 5)
	require.NoError(t, svc.SaveMovements(ctx, pair))

	good, damaged, err := svc.GetProductStock(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, types.Pieces(-5), good)
	assert.Equal(t, types.Pieces(5), damaged)

	// The pair nets to zero across pools
	assert.Equal(t, types.Pieces(0), good+damaged)
}

func TestSaveMovements_RejectsInvalid(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&memRepo{})
	productID := id.New()

	// Hand-built movement violating the pool rule
	bad := entity.InventoryMovement{
		MovementBase: newBase(id.New()),
		ProductID:    productID,
		Pool:         entity.PoolGood,
		MovementType: entity.MovementSaleReturnDamaged,
		QtyDelta:     2,
	}
	assert.Error(t, svc.SaveMovements(ctx, []entity.InventoryMovement{bad}))

	// Missing recorder
	m := entity.NewSaleMovement(newBase(id.Nil()), productID, 1)
	assert.Error(t, svc.SaveMovements(ctx, []entity.InventoryMovement{m}))
}

func TestDeleteMovements_RestoresBalances(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{}
	svc := NewService(repo)
	productID := id.New()
	docID := id.New()

	require.NoError(t, svc.SaveMovements(ctx, []entity.InventoryMovement{
		entity.NewSaleMovement(newBase(docID), productID, 10),
	}))
	require.NoError(t, svc.DeleteMovements(ctx, docID))

	good, err := svc.GetGoodStock(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, types.Pieces(0), good)
}

func TestDeleteStaleMovements_KeepsCurrentVersion(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{}
	svc := NewService(repo)
	productID := id.New()
	docID := id.New()

	v1 := entity.NewMovementBase(docID, "Order", 1, time.Now().UTC())
	v2 := entity.NewMovementBase(docID, "Order", 2, time.Now().UTC())
	require.NoError(t, svc.SaveMovements(ctx, []entity.InventoryMovement{
		entity.NewSaleMovement(v1, productID, 10),
		entity.NewSaleMovement(v2, productID, 8),
	}))

	require.NoError(t, svc.DeleteStaleMovements(ctx, docID, 2))

	good, err := svc.GetGoodStock(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, types.Pieces(-8), good)
}

func TestSaveMovements_EmptyIsNoop(t *testing.T) {
	svc := NewService(&memRepo{})
	assert.NoError(t, svc.SaveMovements(context.Background(), nil))
}
