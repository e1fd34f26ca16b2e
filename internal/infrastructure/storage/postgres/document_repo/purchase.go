package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradelink/internal/core/id"
	"tradelink/internal/domain"
	"tradelink/internal/domain/documents/purchase"
	"tradelink/internal/infrastructure/storage/postgres"
)

const (
	billTable      = "doc_purchase_bills"
	billLinesTable = "doc_purchase_bill_lines"
)

var billLineCols = postgres.ExtractDBColumns[purchase.Line]()

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	*BaseDocumentRepo[*purchase.Bill]
}

// NewPurchaseRepo creates a new purchase bill repository.
func NewPurchaseRepo(txManager *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			billTable,
			postgres.ExtractDBColumns[purchase.Bill](),
			func() *purchase.Bill { return &purchase.Bill{} },
		),
	}
}

// SaveLines replaces the bill's lines.
func (r *PurchaseRepo) SaveLines(ctx context.Context, billID id.ID, lines []purchase.Line) error {
	querier := r.Querier(ctx)

	delQ := r.Builder().
		Delete(billLinesTable).
		Where(squirrel.Eq{"bill_id": billID})

	sql, args, err := delQ.ToSql()
	if err != nil {
		return fmt.Errorf("build delete lines: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	insQ := r.Builder().Insert(billLinesTable).Columns(billLineCols...)
	for i := range lines {
		data := postgres.StructToMap(&lines[i])
		row := make([]any, len(billLineCols))
		for j, col := range billLineCols {
			row[j] = data[col]
		}
		insQ = insQ.Values(row...)
	}

	sql, args, err = insQ.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// GetLines retrieves the bill's lines.
func (r *PurchaseRepo) GetLines(ctx context.Context, billID id.ID) ([]purchase.Line, error) {
	q := r.Builder().
		Select(billLineCols...).
		From(billLinesTable).
		Where(squirrel.Eq{"bill_id": billID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchase.Line
	if err := pgxscan.Select(ctx, r.Querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// GetAmendments retrieves bills that amend the given bill.
func (r *PurchaseRepo) GetAmendments(ctx context.Context, billID id.ID) ([]*purchase.Bill, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[purchase.Bill]()...).
		From(billTable).
		Where(squirrel.Eq{"amends_bill_id": billID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("date")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var bills []*purchase.Bill
	if err := pgxscan.Select(ctx, r.Querier(ctx), &bills, sql, args...); err != nil {
		return nil, fmt.Errorf("get amendments: %w", err)
	}

	return bills, nil
}

// List retrieves bills with filtering.
func (r *PurchaseRepo) List(ctx context.Context, f purchase.ListFilter) (domain.ListResult[*purchase.Bill], error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[purchase.Bill]()...).
		From(billTable)

	if f.CompanyID != nil {
		q = q.Where(squirrel.Eq{"company_id": *f.CompanyID})
	}
	if f.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"date": *f.FromDate})
	}
	if f.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"date": *f.ToDate})
	}
	if f.SupplierInvoiceNo != "" {
		q = q.Where(squirrel.Eq{"supplier_invoice_no": f.SupplierInvoiceNo})
	}
	if f.ExcludeAmended {
		q = q.Where(squirrel.Expr(
			"NOT EXISTS (SELECT 1 FROM doc_purchase_bills nb WHERE nb.amends_bill_id = doc_purchase_bills.id AND nb.deletion_mark = false)"))
	}

	return r.ListWith(ctx, q, f.ListFilter)
}

// Search performs full-text search over bill numbers, supplier invoice
// numbers, and line product names.
func (r *PurchaseRepo) Search(ctx context.Context, query string, limit int) ([]*purchase.Bill, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + query + "%"

	sql := `
		SELECT DISTINCT b.*
		FROM doc_purchase_bills b
		LEFT JOIN doc_purchase_bill_lines l ON l.bill_id = b.id
		WHERE b.deletion_mark = false
		  AND (b.number ILIKE $1 OR b.supplier_invoice_no ILIKE $1 OR l.product_name ILIKE $1)
		ORDER BY b.date DESC
		LIMIT $2
	`

	var bills []*purchase.Bill
	if err := pgxscan.Select(ctx, r.Querier(ctx), &bills, sql, pattern, limit); err != nil {
		return nil, fmt.Errorf("search bills: %w", err)
	}

	return bills, nil
}

// Ensure interface compliance.
var _ purchase.Repository = (*PurchaseRepo)(nil)
