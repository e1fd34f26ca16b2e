package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/id"
	"tradelink/internal/domain"
	"tradelink/internal/domain/catalogs/product"
	"tradelink/internal/domain/filter"
	"tradelink/internal/infrastructure/storage/postgres"
)

const productTable = "cat_products"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			productTable,
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}

// ListByCompany retrieves products of one supplier brand.
func (r *ProductRepo) ListByCompany(ctx context.Context, companyID id.ID, f domain.ListFilter) (domain.ListResult[*product.Product], error) {
	f.AdvancedFilters = append(f.AdvancedFilters, filter.Item{
		Field:    "company_id",
		Operator: filter.Equal,
		Value:    companyID,
	})
	return r.List(ctx, f)
}

// GetMany retrieves products by IDs in one round trip.
func (r *ProductRepo) GetMany(ctx context.Context, ids []id.ID) (map[id.ID]*product.Product, error) {
	result := make(map[id.ID]*product.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	q := r.Builder().
		Select(postgres.ExtractDBColumns[product.Product]()...).
		From(productTable).
		Where(squirrel.Eq{"id": ids}).
		Where(squirrel.Eq{"deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get many: %w", err)
	}

	for _, p := range items {
		result[p.ID] = p
	}
	return result, nil
}

// SetStockOut flips the stock-out flag without a full update.
func (r *ProductRepo) SetStockOut(ctx context.Context, productID id.ID, stockOut bool) error {
	q := r.Builder().
		Update(productTable).
		Set("stock_out", stockOut).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build set stock out: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set stock out: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(productTable, productID.String())
	}

	return nil
}

// Ensure interface compliance.
var _ product.Repository = (*ProductRepo)(nil)
