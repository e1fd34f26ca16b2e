package order

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/entity"
	"tradelink/internal/core/id"
	"tradelink/internal/core/security"
	"tradelink/internal/core/types"
	"tradelink/internal/domain"
	"tradelink/internal/domain/catalogs/customer"
	"tradelink/internal/domain/catalogs/product"
	"tradelink/internal/domain/posting"
	"tradelink/pkg/numerator"
)

// --- Test doubles ---

type fakeRepo struct {
	orders map[id.ID]*Order
	items  map[id.ID][]Item
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: map[id.ID]*Order{}, items: map[id.ID][]Item{}}
}

func (r *fakeRepo) Create(ctx context.Context, doc *Order) error {
	r.orders[doc.ID] = doc
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, docID id.ID) (*Order, error) {
	doc, ok := r.orders[docID]
	if !ok {
		return nil, apperror.NewNotFound("order", docID.String())
	}
	return doc, nil
}

func (r *fakeRepo) GetByNumber(ctx context.Context, number string) (*Order, error) {
	for _, doc := range r.orders {
		if doc.Number == number {
			return doc, nil
		}
	}
	return nil, apperror.NewNotFound("order", number)
}

func (r *fakeRepo) Update(ctx context.Context, doc *Order) error {
	r.orders[doc.ID] = doc
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, docID id.ID) error {
	delete(r.orders, docID)
	return nil
}

func (r *fakeRepo) SaveItems(ctx context.Context, orderID id.ID, items []Item) error {
	r.items[orderID] = items
	return nil
}

func (r *fakeRepo) GetItems(ctx context.Context, orderID id.ID) ([]Item, error) {
	return r.items[orderID], nil
}

func (r *fakeRepo) List(ctx context.Context, f ListFilter) (domain.ListResult[*Order], error) {
	return domain.ListResult[*Order]{}, nil
}

type fakeProducts struct {
	byID map[id.ID]*product.Product
}

func (f *fakeProducts) GetMany(ctx context.Context, ids []id.ID) (map[id.ID]*product.Product, error) {
	out := make(map[id.ID]*product.Product)
	for _, pid := range ids {
		if p, ok := f.byID[pid]; ok {
			out[pid] = p
		}
	}
	return out, nil
}

type fakeCustomers struct {
	byID        map[id.ID]*customer.Customer
	adjustments []types.Money
}

func (f *fakeCustomers) GetByID(ctx context.Context, cid id.ID) (*customer.Customer, error) {
	c, ok := f.byID[cid]
	if !ok {
		return nil, apperror.NewNotFound("customer", cid.String())
	}
	return c, nil
}

func (f *fakeCustomers) AdjustOutstanding(ctx context.Context, cid id.ID, delta types.Money) error {
	f.adjustments = append(f.adjustments, delta)
	if c, ok := f.byID[cid]; ok {
		c.Outstanding = c.Outstanding.Add(delta)
	}
	return nil
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
	kept := s.saved[:0]
	for _, m := range s.saved {
		if m.RecorderID != recorderID {
			kept = append(kept, m)
		}
	}
	s.saved = kept
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
	repo      *fakeRepo
	store     *fakeMovementStore
	customers *fakeCustomers
	products  *fakeProducts
	customer  *customer.Customer
}

func newFixture(t *testing.T, rule *security.OrderRule) *fixture {
	t.Helper()

	repo := newFakeRepo()
	store := &fakeMovementStore{}
	engine := posting.NewEngine(store, passTxManager{}, nil)

	cust := customer.New("CU-001", "Corner Store")
	customers := &fakeCustomers{byID: map[id.ID]*customer.Customer{cust.ID: cust}}
	products := &fakeProducts{byID: map[id.ID]*product.Product{}}

	return &fixture{
		svc:       NewService(repo, products, customers, engine, numerator.New(&seqQuerier{}), rule),
		repo:      repo,
		store:     store,
		customers: customers,
		products:  products,
		customer:  cust,
	}
}

func (f *fixture) addProduct(p *product.Product) {
	f.products.byID[p.ID] = p
}

// --- Tests ---

func TestPlace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p := schemeProduct(id.New())
	f.addProduct(p)

	doc := New(f.customer.ID)
	require.NoError(t, doc.AddLine(p, 24))
	require.NoError(t, f.svc.Place(ctx, doc))

	assert.NotEmpty(t, doc.Number)
	assert.True(t, doc.Posted)
	assert.Equal(t, StatusPending, doc.Status)

	require.Len(t, f.store.saved, 1)
	assert.Equal(t, types.Pieces(-24), f.store.saved[0].QtyDelta)

	// Customer owes the order total
	assert.True(t, f.customer.Outstanding.Equal(types.MustMoney("223.44")))

	saved, err := f.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, saved.Items, 1)
}

func TestPlace_AggregatesViolations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	companyID := id.New()
	strict := product.New("PRD-011", "Tea Pack", companyID, types.MustMoney("50"))
	strict.MinOrderQty = 12
	strict.OrderMultiple = 6
	f.addProduct(strict)

	doc := New(f.customer.ID)
	require.NoError(t, doc.AddLine(strict, 5))

	err := f.svc.Place(ctx, doc)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeOrderRejected, appErr.Code)
	assert.Len(t, appErr.Violations, 2)

	assert.False(t, doc.Posted)
	assert.Empty(t, f.store.saved)
	assert.Empty(t, f.customers.adjustments)
}

func TestPlace_CompanyMismatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	p1 := schemeProduct(id.New())
	p2 := schemeProduct(id.New())
	f.addProduct(p1)
	f.addProduct(p2)

	// Bypass AddLine's guard to simulate a tampered payload
	doc := New(f.customer.ID)
	require.NoError(t, doc.AddLine(p1, 24))
	doc.Items = append(doc.Items, Item{
		ID:        id.New(),
		LineNo:    2,
		ProductID: p2.ID,
		Qty:       24,
		BaseRate:  p2.BaseRate,
		Rate:      p2.DiscountedRate,
		Total:     types.MustMoney("228"),
	})

	err := f.svc.Place(ctx, doc)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeCompanyMismatch, appErr.Code)
}

func TestPlace_CreditRule(t *testing.T) {
	ctx := context.Background()

	rule, err := security.CompileOrderRule(
		"credit_limit == 0.0 || customer_outstanding + order_total <= credit_limit")
	require.NoError(t, err)

	f := newFixture(t, rule)
	p := schemeProduct(id.New())
	f.addProduct(p)

	f.customer.CreditLimit = types.MustMoney("1000")
	f.customer.Outstanding = types.MustMoney("900")

	// 24 pieces at 9.31 = 223.44, pushing outstanding past the limit
	doc := New(f.customer.ID)
	require.NoError(t, doc.AddLine(p, 24))

	err = f.svc.Place(ctx, doc)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeOrderRejected, appErr.Code)

	// Raising the limit lets the order through
	f.customer.CreditLimit = types.MustMoney("2000")
	require.NoError(t, f.svc.Place(ctx, doc))
}

func TestChangeStatus_CancelUnwindsLedgerAndBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p := schemeProduct(id.New())
	f.addProduct(p)

	doc := New(f.customer.ID)
	require.NoError(t, doc.AddLine(p, 24))
	require.NoError(t, f.svc.Place(ctx, doc))
	require.Len(t, f.store.saved, 1)

	require.NoError(t, f.svc.ChangeStatus(ctx, doc.ID, StatusCancelled))

	assert.Equal(t, StatusCancelled, doc.Status)
	assert.False(t, doc.Posted)
	assert.Empty(t, f.store.saved, "sale movements removed")
	assert.True(t, f.customer.Outstanding.IsZero(), "outstanding released")
}

func TestDelete_PostedOrderRefused(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p := schemeProduct(id.New())
	f.addProduct(p)

	doc := New(f.customer.ID)
	require.NoError(t, doc.AddLine(p, 24))
	require.NoError(t, f.svc.Place(ctx, doc))

	err := f.svc.Delete(ctx, doc.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDocumentPosted, appErr.Code)
}
