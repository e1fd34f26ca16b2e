package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/internal/domain"
	"tradelink/internal/domain/documents/salesreturn"
	"tradelink/internal/infrastructure/storage/postgres"
)

const (
	returnTable      = "doc_sales_returns"
	returnItemsTable = "doc_sales_return_items"
)

var returnItemCols = postgres.ExtractDBColumns[salesreturn.Item]()

// SalesReturnRepo implements salesreturn.Repository.
type SalesReturnRepo struct {
	*BaseDocumentRepo[*salesreturn.SalesReturn]
}

// NewSalesReturnRepo creates a new sales return repository.
func NewSalesReturnRepo(txManager *postgres.TxManager) *SalesReturnRepo {
	return &SalesReturnRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			returnTable,
			postgres.ExtractDBColumns[salesreturn.SalesReturn](),
			func() *salesreturn.SalesReturn { return &salesreturn.SalesReturn{} },
		),
	}
}

// SaveItems replaces the return's lines.
func (r *SalesReturnRepo) SaveItems(ctx context.Context, returnID id.ID, items []salesreturn.Item) error {
	querier := r.Querier(ctx)

	delQ := r.Builder().
		Delete(returnItemsTable).
		Where(squirrel.Eq{"return_id": returnID})

	sql, args, err := delQ.ToSql()
	if err != nil {
		return fmt.Errorf("build delete items: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	insQ := r.Builder().Insert(returnItemsTable).Columns(returnItemCols...)
	for i := range items {
		data := postgres.StructToMap(&items[i])
		row := make([]any, len(returnItemCols))
		for j, col := range returnItemCols {
			row[j] = data[col]
		}
		insQ = insQ.Values(row...)
	}

	sql, args, err = insQ.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}

	return nil
}

// GetItems retrieves the return's lines.
func (r *SalesReturnRepo) GetItems(ctx context.Context, returnID id.ID) ([]salesreturn.Item, error) {
	q := r.Builder().
		Select(returnItemCols...).
		From(returnItemsTable).
		Where(squirrel.Eq{"return_id": returnID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []salesreturn.Item
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}

	return items, nil
}

// GetReturnedQuantities sums already-returned pieces per product across
// all posted returns of an order.
func (r *SalesReturnRepo) GetReturnedQuantities(ctx context.Context, orderID id.ID) (map[id.ID]types.Pieces, error) {
	sql := `
		SELECT i.product_id, COALESCE(SUM(i.good_qty + i.damaged_qty), 0) AS returned
		FROM doc_sales_return_items i
		JOIN doc_sales_returns sr ON sr.id = i.return_id
		WHERE sr.order_id = $1
		  AND sr.posted = true
		  AND sr.deletion_mark = false
		GROUP BY i.product_id
	`

	rows, err := r.Querier(ctx).Query(ctx, sql, orderID)
	if err != nil {
		return nil, fmt.Errorf("query returned quantities: %w", err)
	}
	defer rows.Close()

	result := make(map[id.ID]types.Pieces)
	for rows.Next() {
		var productID id.ID
		var returned int64
		if err := rows.Scan(&productID, &returned); err != nil {
			return nil, fmt.Errorf("scan returned quantity: %w", err)
		}
		result[productID] = types.Pieces(returned)
	}

	return result, rows.Err()
}

// ListByOrder retrieves all returns of one order.
func (r *SalesReturnRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]*salesreturn.SalesReturn, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[salesreturn.SalesReturn]()...).
		From(returnTable).
		Where(squirrel.Eq{"order_id": orderID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("date")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*salesreturn.SalesReturn
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list by order: %w", err)
	}

	return items, nil
}

// List retrieves returns with filtering.
func (r *SalesReturnRepo) List(ctx context.Context, f salesreturn.ListFilter) (domain.ListResult[*salesreturn.SalesReturn], error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[salesreturn.SalesReturn]()...).
		From(returnTable)

	if f.OrderID != nil {
		q = q.Where(squirrel.Eq{"order_id": *f.OrderID})
	}
	if f.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *f.CustomerID})
	}
	if f.Type != nil {
		q = q.Where(squirrel.Eq{"type": *f.Type})
	}
	if f.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"date": *f.FromDate})
	}
	if f.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"date": *f.ToDate})
	}

	return r.ListWith(ctx, q, f.ListFilter)
}

// Ensure interface compliance.
var _ salesreturn.Repository = (*SalesReturnRepo)(nil)
