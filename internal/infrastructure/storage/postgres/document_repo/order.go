package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradelink/internal/core/id"
	"tradelink/internal/domain"
	"tradelink/internal/domain/documents/order"
	"tradelink/internal/infrastructure/storage/postgres"
)

const (
	orderTable      = "doc_orders"
	orderItemsTable = "doc_order_items"
)

var orderItemCols = postgres.ExtractDBColumns[order.Item]()

// OrderRepo implements order.Repository.
type OrderRepo struct {
	*BaseDocumentRepo[*order.Order]
}

// NewOrderRepo creates a new order repository.
func NewOrderRepo(txManager *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			orderTable,
			postgres.ExtractDBColumns[order.Order](),
			func() *order.Order { return &order.Order{} },
		),
	}
}

// SaveItems replaces the order's lines.
// Delete-and-reinsert keeps line numbering dense and avoids diffing.
func (r *OrderRepo) SaveItems(ctx context.Context, orderID id.ID, items []order.Item) error {
	querier := r.Querier(ctx)

	delQ := r.Builder().
		Delete(orderItemsTable).
		Where(squirrel.Eq{"order_id": orderID})

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

	insQ := r.Builder().Insert(orderItemsTable).Columns(orderItemCols...)
	for i := range items {
		data := postgres.StructToMap(&items[i])
		row := make([]any, len(orderItemCols))
		for j, col := range orderItemCols {
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

// GetItems retrieves the order's lines.
func (r *OrderRepo) GetItems(ctx context.Context, orderID id.ID) ([]order.Item, error) {
	q := r.Builder().
		Select(orderItemCols...).
		From(orderItemsTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []order.Item
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}

	return items, nil
}

// List retrieves orders with filtering.
func (r *OrderRepo) List(ctx context.Context, f order.ListFilter) (domain.ListResult[*order.Order], error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[order.Order]()...).
		From(orderTable)

	if f.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *f.CustomerID})
	}
	if f.CompanyID != nil {
		q = q.Where(squirrel.Eq{"company_id": *f.CompanyID})
	}
	if f.Status != nil {
		q = q.Where(squirrel.Eq{"status": *f.Status})
	}
	if f.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"date": *f.FromDate})
	}
	if f.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"date": *f.ToDate})
	}
	if f.PostedOnly {
		q = q.Where(squirrel.Eq{"posted": true})
	}

	return r.ListWith(ctx, q, f.ListFilter)
}

// Ensure interface compliance.
var _ order.Repository = (*OrderRepo)(nil)
