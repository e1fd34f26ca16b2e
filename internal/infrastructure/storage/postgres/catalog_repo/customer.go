package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/internal/domain/catalogs/customer"
	"tradelink/internal/infrastructure/storage/postgres"
)

const customerTable = "cat_customers"

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	*BaseCatalogRepo[*customer.Customer]
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txManager *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			customerTable,
			postgres.ExtractDBColumns[customer.Customer](),
			func() *customer.Customer { return &customer.Customer{} },
		),
	}
}

// AdjustOutstanding atomically shifts the customer's outstanding balance.
// A single UPDATE avoids read-modify-write races between concurrent
// invoicing and return flows.
func (r *CustomerRepo) AdjustOutstanding(ctx context.Context, customerID id.ID, delta types.Money) error {
	q := r.Builder().
		Update(customerTable).
		Set("outstanding", squirrel.Expr("outstanding + ?", delta)).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": customerID}).
		Where(squirrel.Eq{"deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build adjust outstanding: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("adjust outstanding: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(customerTable, customerID.String())
	}

	return nil
}

// Ensure interface compliance.
var _ customer.Repository = (*CustomerRepo)(nil)
