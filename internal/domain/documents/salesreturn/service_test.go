package salesreturn

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/entity"
	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/internal/domain"
	"tradelink/internal/domain/documents/damage"
	"tradelink/internal/domain/documents/order"
	"tradelink/internal/domain/posting"
	"tradelink/pkg/numerator"
)

// --- Test doubles ---

type fakeReturnRepo struct {
	returns map[id.ID]*SalesReturn
	items   map[id.ID][]Item
}

func newFakeReturnRepo() *fakeReturnRepo {
	return &fakeReturnRepo{returns: map[id.ID]*SalesReturn{}, items: map[id.ID][]Item{}}
}

func (r *fakeReturnRepo) Create(ctx context.Context, doc *SalesReturn) error {
	r.returns[doc.ID] = doc
	return nil
}

func (r *fakeReturnRepo) GetByID(ctx context.Context, retID id.ID) (*SalesReturn, error) {
	ret, ok := r.returns[retID]
	if !ok {
		return nil, apperror.NewNotFound("sales_return", retID.String())
	}
	return ret, nil
}

func (r *fakeReturnRepo) Update(ctx context.Context, doc *SalesReturn) error {
	r.returns[doc.ID] = doc
	return nil
}

func (r *fakeReturnRepo) SaveItems(ctx context.Context, returnID id.ID, items []Item) error {
	r.items[returnID] = items
	return nil
}

func (r *fakeReturnRepo) GetItems(ctx context.Context, returnID id.ID) ([]Item, error) {
	return r.items[returnID], nil
}

func (r *fakeReturnRepo) GetReturnedQuantities(ctx context.Context, orderID id.ID) (map[id.ID]types.Pieces, error) {
	out := map[id.ID]types.Pieces{}
	for retID, ret := range r.returns {
		if ret.OrderID != orderID {
			continue
		}
		for _, item := range r.items[retID] {
			out[item.ProductID] += item.ReturnedQty()
		}
	}
	return out, nil
}

func (r *fakeReturnRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]*SalesReturn, error) {
	var out []*SalesReturn
	for _, ret := range r.returns {
		if ret.OrderID == orderID {
			out = append(out, ret)
		}
	}
	return out, nil
}

func (r *fakeReturnRepo) List(ctx context.Context, f ListFilter) (domain.ListResult[*SalesReturn], error) {
	return domain.ListResult[*SalesReturn]{}, nil
}

type fakeOrderStore struct {
	order *order.Order
}

func (s *fakeOrderStore) GetByID(ctx context.Context, orderID id.ID) (*order.Order, error) {
	if s.order == nil || s.order.ID != orderID {
		return nil, apperror.NewNotFound("order", orderID.String())
	}
	return s.order, nil
}

func (s *fakeOrderStore) Update(ctx context.Context, doc *order.Order) error {
	s.order = doc
	return nil
}

func (s *fakeOrderStore) GetItems(ctx context.Context, orderID id.ID) ([]order.Item, error) {
	return s.order.Items, nil
}

type fakeCustomerStore struct {
	adjustments []types.Money
}

func (s *fakeCustomerStore) AdjustOutstanding(ctx context.Context, cid id.ID, delta types.Money) error {
	s.adjustments = append(s.adjustments, delta)
	return nil
}

type fakeDamageRecorder struct {
	logs []*damage.Log
}

func (d *fakeDamageRecorder) RecordReturnDamage(ctx context.Context, returnID id.ID, productID id.ID, productName string, qty types.Pieces, reason string) (*damage.Log, error) {
	log := damage.NewFromReturn(returnID, productID, productName, qty, reason)
	d.logs = append(d.logs, log)
	return log, nil
}

type fakeMovementStore struct {
	saved []entity.InventoryMovement
}

func (s *fakeMovementStore) SaveMovements(ctx context.Context, movements []entity.InventoryMovement) error {
	s.saved = append(s.saved, movements...)
	return nil
}

func (s *fakeMovementStore) DeleteStaleMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	return nil
}

func (s *fakeMovementStore) DeleteMovements(ctx context.Context, recorderID id.ID) error {
	return nil
}

type passTxManager struct{}

func (passTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type seqRow struct{ val int64 }

func (r *seqRow) Scan(dest ...any) error {
	if ptr, ok := dest[0].(*int64); ok {
		*ptr = r.val
	}
	return nil
}

type seqQuerier struct{ n int64 }

func (q *seqQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.n++
	return &seqRow{val: q.n}
}

// --- Fixture ---

type fixture struct {
	svc       *Service
	repo      *fakeReturnRepo
	orders    *fakeOrderStore
	customers *fakeCustomerStore
	damages   *fakeDamageRecorder
	store     *fakeMovementStore
	order     *order.Order
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newFakeReturnRepo()
	store := &fakeMovementStore{}
	orders := &fakeOrderStore{order: deliveredOrder(t)}
	customers := &fakeCustomerStore{}
	damages := &fakeDamageRecorder{}

	svc := NewService(
		repo,
		orders,
		customers,
		damages,
		posting.NewEngine(store, passTxManager{}, nil),
		numerator.New(&seqQuerier{}),
	)
	return &fixture{
		svc:       svc,
		repo:      repo,
		orders:    orders,
		customers: customers,
		damages:   damages,
		store:     store,
		order:     orders.order,
	}
}

// --- Tests ---

func TestRegisterFull(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ret, err := f.svc.RegisterFull(ctx, f.order.ID, "shop closing")
	require.NoError(t, err)

	assert.NotEmpty(t, ret.Number)
	assert.True(t, ret.Posted)
	assert.Equal(t, order.StatusReturned, f.order.Status)

	// Both lines re-enter good stock
	require.Len(t, f.store.saved, 2)
	for _, m := range f.store.saved {
		assert.Equal(t, entity.MovementSaleReturnGood, m.MovementType)
	}

	// Customer credited the full amount
	require.Len(t, f.customers.adjustments, 1)
	assert.True(t, f.customers.adjustments[0].Equal(types.MustMoney("-523.44")))

	assert.Empty(t, f.damages.logs, "no damage logs for a good return")
}

func TestRegisterFull_DamageReason(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ret, err := f.svc.RegisterFull(ctx, f.order.ID, "expiry")
	require.NoError(t, err)

	for _, m := range f.store.saved {
		assert.Equal(t, entity.MovementSaleReturnDamaged, m.MovementType)
		assert.Equal(t, entity.PoolDamaged, m.Pool)
	}

	// Each damaged line leaves a log entry
	assert.Len(t, f.damages.logs, len(ret.Items))
	for _, log := range f.damages.logs {
		assert.Equal(t, damage.SourceSaleReturn, log.SourceType)
		require.NotNil(t, log.SourceID)
		assert.Equal(t, ret.ID, *log.SourceID)
	}
}

func TestRegisterPartial_StatusProgression(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	biscuitID := f.order.Items[0].ProductID
	teaID := f.order.Items[1].ProductID

	// First partial return
	_, err := f.svc.RegisterPartial(ctx, f.order.ID, "some damaged", []LineSpec{
		{ProductID: biscuitID, GoodQty: 10, DamagedQty: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, order.StatusPartiallyReturned, f.order.Status)
	assert.Len(t, f.damages.logs, 1)

	// Second return finishing everything flips the order to returned
	_, err = f.svc.RegisterPartial(ctx, f.order.ID, "rest came back", []LineSpec{
		{ProductID: biscuitID, GoodQty: 10},
		{ProductID: teaID, GoodQty: 6},
	})
	require.NoError(t, err)
	assert.Equal(t, order.StatusReturned, f.order.Status)
}

func TestRegisterPartial_CumulativeGuardAcrossReturns(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	biscuitID := f.order.Items[0].ProductID

	_, err := f.svc.RegisterPartial(ctx, f.order.ID, "damaged", []LineSpec{
		{ProductID: biscuitID, DamagedQty: 20},
	})
	require.NoError(t, err)

	// 4 remain; asking for 5 must fail
	_, err = f.svc.RegisterPartial(ctx, f.order.ID, "damaged", []LineSpec{
		{ProductID: biscuitID, DamagedQty: 5},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeReturnExceedsInvoiced, appErr.Code)
}

func TestRegister_PendingOrderRefused(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.order.Status = order.StatusPending

	_, err := f.svc.RegisterFull(ctx, f.order.ID, "reason")
	require.Error(t, err)
	assert.Empty(t, f.store.saved)
}

func TestRegister_AcceptedBeforeDelivery(t *testing.T) {
	ctx := context.Background()

	for _, status := range []order.Status{order.StatusApproved, order.StatusDispatched} {
		f := newFixture(t)
		f.order.Status = status
		biscuitID := f.order.Items[0].ProductID

		_, err := f.svc.RegisterPartial(ctx, f.order.ID, "wrong goods", []LineSpec{
			{ProductID: biscuitID, GoodQty: 5},
		})
		require.NoError(t, err, "return against %s order", status)
		assert.Equal(t, order.StatusPartiallyReturned, f.order.Status)
	}
}

func TestRegisterFull_AfterEverythingReturned(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.RegisterFull(ctx, f.order.ID, "shop closing")
	require.NoError(t, err)

	// Order is now fully returned; no further returns allowed
	_, err = f.svc.RegisterFull(ctx, f.order.ID, "again")
	require.Error(t, err)
}
