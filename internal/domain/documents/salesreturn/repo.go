package salesreturn

import (
	"context"
	"time"

	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/internal/domain"
)

// ListFilter narrows return list queries.
type ListFilter struct {
	domain.ListFilter

	OrderID    *id.ID
	CustomerID *id.ID
	Type       *ReturnType
	FromDate   *time.Time
	ToDate     *time.Time
}

// Repository defines the interface for SalesReturn persistence.
type Repository interface {
	// Create inserts the return header
	Create(ctx context.Context, doc *SalesReturn) error

	// GetByID retrieves the return header (without items)
	GetByID(ctx context.Context, id id.ID) (*SalesReturn, error)

	// Update modifies the return header (with optimistic locking)
	Update(ctx context.Context, doc *SalesReturn) error

	// SaveItems replaces the return's lines
	SaveItems(ctx context.Context, returnID id.ID, items []Item) error

	// GetItems retrieves the return's lines
	GetItems(ctx context.Context, returnID id.ID) ([]Item, error)

	// GetReturnedQuantities sums already-returned pieces per product
	// across all posted returns of an order
	GetReturnedQuantities(ctx context.Context, orderID id.ID) (map[id.ID]types.Pieces, error)

	// ListByOrder retrieves all returns of one order
	ListByOrder(ctx context.Context, orderID id.ID) ([]*SalesReturn, error)

	// List retrieves returns with filtering
	List(ctx context.Context, f ListFilter) (domain.ListResult[*SalesReturn], error)
}
