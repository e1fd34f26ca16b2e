package order

import (
	"context"
	"time"

	"tradelink/internal/core/id"
	"tradelink/internal/domain"
)

// ListFilter narrows order list queries.
type ListFilter struct {
	domain.ListFilter

	CustomerID *id.ID
	CompanyID  *id.ID
	Status     *Status
	FromDate   *time.Time
	ToDate     *time.Time
	PostedOnly bool
}

// Repository defines the interface for Order persistence.
type Repository interface {
	// Create inserts the order header
	Create(ctx context.Context, doc *Order) error

	// GetByID retrieves the order header (without items)
	GetByID(ctx context.Context, id id.ID) (*Order, error)

	// GetByNumber retrieves the order header by document number
	GetByNumber(ctx context.Context, number string) (*Order, error)

	// Update modifies the order header (with optimistic locking)
	Update(ctx context.Context, doc *Order) error

	// Delete soft-deletes an unposted order
	Delete(ctx context.Context, id id.ID) error

	// SaveItems replaces the order's lines
	SaveItems(ctx context.Context, orderID id.ID, items []Item) error

	// GetItems retrieves the order's lines
	GetItems(ctx context.Context, orderID id.ID) ([]Item, error)

	// List retrieves orders with filtering
	List(ctx context.Context, f ListFilter) (domain.ListResult[*Order], error)
}
