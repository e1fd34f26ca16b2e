package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradelink/internal/core/id"
	"tradelink/internal/domain"
	"tradelink/internal/domain/documents/damage"
	"tradelink/internal/infrastructure/storage/postgres"
)

const damageTable = "doc_damage_logs"

// DamageRepo implements damage.Repository.
type DamageRepo struct {
	*BaseDocumentRepo[*damage.Log]
}

// NewDamageRepo creates a new damage log repository.
func NewDamageRepo(txManager *postgres.TxManager) *DamageRepo {
	return &DamageRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			damageTable,
			postgres.ExtractDBColumns[damage.Log](),
			func() *damage.Log { return &damage.Log{} },
		),
	}
}

// ListBySource retrieves entries of one sales return.
func (r *DamageRepo) ListBySource(ctx context.Context, sourceID id.ID) ([]*damage.Log, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[damage.Log]()...).
		From(damageTable).
		Where(squirrel.Eq{"source_id": sourceID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*damage.Log
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list by source: %w", err)
	}

	return items, nil
}

// List retrieves entries with filtering.
func (r *DamageRepo) List(ctx context.Context, f damage.ListFilter) (domain.ListResult[*damage.Log], error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[damage.Log]()...).
		From(damageTable)

	if f.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *f.ProductID})
	}
	if f.SourceType != nil {
		q = q.Where(squirrel.Eq{"source_type": *f.SourceType})
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
var _ damage.Repository = (*DamageRepo)(nil)
