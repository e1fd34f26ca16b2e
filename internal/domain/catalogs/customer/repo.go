package customer

import (
	"context"

	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/internal/domain"
)

// Repository defines the interface for Customer persistence.
type Repository interface {
	domain.CatalogRepository[*Customer]

	// GetForUpdate retrieves customer with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, id id.ID) (*Customer, error)

	// AdjustOutstanding atomically shifts the outstanding balance by delta.
	AdjustOutstanding(ctx context.Context, id id.ID, delta types.Money) error
}
