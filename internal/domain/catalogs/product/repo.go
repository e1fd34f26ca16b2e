package product

import (
	"context"

	"tradelink/internal/core/id"
	"tradelink/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// ListByCompany retrieves products of one supplier brand.
	ListByCompany(ctx context.Context, companyID id.ID, f domain.ListFilter) (domain.ListResult[*Product], error)

	// GetMany retrieves products by IDs in one round trip.
	GetMany(ctx context.Context, ids []id.ID) (map[id.ID]*Product, error)

	// SetStockOut flips the stock-out flag without a full update.
	SetStockOut(ctx context.Context, id id.ID, stockOut bool) error
}
