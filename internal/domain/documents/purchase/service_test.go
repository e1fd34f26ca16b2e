package purchase

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/internal/domain"
	"tradelink/pkg/numerator"
)

// --- Test doubles ---

type fakeBillRepo struct {
	bills map[id.ID]*Bill
	lines map[id.ID][]Line
}

func newFakeBillRepo() *fakeBillRepo {
	return &fakeBillRepo{bills: map[id.ID]*Bill{}, lines: map[id.ID][]Line{}}
}

func (r *fakeBillRepo) Create(ctx context.Context, bill *Bill) error {
	r.bills[bill.ID] = bill
	return nil
}

func (r *fakeBillRepo) GetByID(ctx context.Context, billID id.ID) (*Bill, error) {
	bill, ok := r.bills[billID]
	if !ok {
		return nil, apperror.NewNotFound("purchase_bill", billID.String())
	}
	return bill, nil
}

func (r *fakeBillRepo) GetByNumber(ctx context.Context, number string) (*Bill, error) {
	for _, bill := range r.bills {
		if bill.Number == number {
			return bill, nil
		}
	}
	return nil, apperror.NewNotFound("purchase_bill", number)
}

func (r *fakeBillRepo) SaveLines(ctx context.Context, billID id.ID, lines []Line) error {
	r.lines[billID] = lines
	return nil
}

func (r *fakeBillRepo) GetLines(ctx context.Context, billID id.ID) ([]Line, error) {
	return r.lines[billID], nil
}

func (r *fakeBillRepo) GetAmendments(ctx context.Context, billID id.ID) ([]*Bill, error) {
	var out []*Bill
	for _, bill := range r.bills {
		if bill.AmendsBillID != nil && *bill.AmendsBillID == billID {
			out = append(out, bill)
		}
	}
	return out, nil
}

func (r *fakeBillRepo) List(ctx context.Context, f ListFilter) (domain.ListResult[*Bill], error) {
	return domain.ListResult[*Bill]{}, nil
}

func (r *fakeBillRepo) Search(ctx context.Context, query string, limit int) ([]*Bill, error) {
	return nil, nil
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

func newService() (*Service, *fakeBillRepo) {
	repo := newFakeBillRepo()
	return NewService(repo, passTxManager{}, numerator.New(&seqQuerier{})), repo
}

func sampleBill() *Bill {
	bill := New(id.New())
	bill.SupplierInvoiceNo = "SUP/482"
	bill.DiscountType = DiscountPercent
	bill.DiscountValue = types.MustMoney("10")
	bill.TaxMode = TaxExclusive
	bill.TaxPct = types.MustMoney("13")
	bill.OtherCharges = types.MustMoney("50")
	bill.AddLine(id.New(), "Glucose Biscuit", 100, types.MustMoney("7.5"))
	bill.AddLine(id.New(), "Tea Pack", 5, types.MustMoney("50"))
	return bill
}

// --- Tests ---

func TestSave_ComputesTotalsServerSide(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	bill := sampleBill()

	// Client-supplied totals are overwritten
	bill.NetAmount = types.MustMoney("1")

	require.NoError(t, svc.Save(ctx, bill))

	assert.NotEmpty(t, bill.Number)
	// gross 100*7.50 + 5*50 = 1000; 10% off; 13% on 900; +50
	assert.True(t, types.MustMoney("1000").Equal(bill.Gross))
	assert.True(t, types.MustMoney("100").Equal(bill.DiscountAmount))
	assert.True(t, types.MustMoney("117").Equal(bill.TaxAmount))
	assert.True(t, types.MustMoney("1067").Equal(bill.NetAmount))

	saved, err := svc.GetByID(ctx, bill.ID)
	require.NoError(t, err)
	assert.Len(t, saved.Lines, 2)
}

func TestSave_RejectsEmptyBill(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	bill := New(id.New())
	assert.Error(t, svc.Save(ctx, bill))
}

func TestSave_RejectsNegativeInclusiveTax(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService()

	bill := sampleBill()
	bill.TaxMode = TaxInclusive
	bill.TaxPct = types.MustMoney("-100")

	err := svc.Save(ctx, bill)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Empty(t, repo.bills)
}

func TestAmend_KeepsOriginal(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService()

	original := sampleBill()
	require.NoError(t, svc.Save(ctx, original))
	originalNet := original.NetAmount

	// Correction: one line was over-counted
	amended := New(original.CompanyID)
	amended.SupplierInvoiceNo = original.SupplierInvoiceNo
	amended.DiscountType = original.DiscountType
	amended.DiscountValue = original.DiscountValue
	amended.TaxMode = original.TaxMode
	amended.TaxPct = original.TaxPct
	amended.OtherCharges = original.OtherCharges
	amended.AddLine(id.New(), "Glucose Biscuit", 90, types.MustMoney("7.5"))

	require.NoError(t, svc.Amend(ctx, original.ID, amended))

	assert.True(t, amended.IsAmendment())
	assert.Equal(t, original.ID, *amended.AmendsBillID)
	assert.NotEqual(t, original.Number, amended.Number)

	// The original is untouched and still retrievable
	kept, err := svc.GetByID(ctx, original.ID)
	require.NoError(t, err)
	assert.True(t, originalNet.Equal(kept.NetAmount))

	amendments, err := svc.GetAmendments(ctx, original.ID)
	require.NoError(t, err)
	require.Len(t, amendments, 1)
	assert.Equal(t, amended.ID, amendments[0].ID)

	assert.Len(t, repo.bills, 2)
}

func TestAmend_RejectsSupplierChange(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	original := sampleBill()
	require.NoError(t, svc.Save(ctx, original))

	amended := New(id.New()) // different supplier
	amended.AddLine(id.New(), "Soap Bar", 10, types.MustMoney("20"))

	assert.Error(t, svc.Amend(ctx, original.ID, amended))
}
