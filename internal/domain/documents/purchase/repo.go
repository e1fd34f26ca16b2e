package purchase

import (
	"context"
	"time"

	"tradelink/internal/core/id"
	"tradelink/internal/domain"
)

// ListFilter narrows bill list queries.
type ListFilter struct {
	domain.ListFilter

	CompanyID *id.ID
	FromDate  *time.Time
	ToDate    *time.Time

	// SupplierInvoiceNo matches the supplier's own number (exact)
	SupplierInvoiceNo string

	// ExcludeAmended hides bills that a newer bill corrects
	ExcludeAmended bool
}

// Repository defines the interface for purchase bill persistence.
type Repository interface {
	// Create inserts the bill header
	Create(ctx context.Context, bill *Bill) error

	// GetByID retrieves the bill header (without lines)
	GetByID(ctx context.Context, id id.ID) (*Bill, error)

	// GetByNumber retrieves the bill by internal document number
	GetByNumber(ctx context.Context, number string) (*Bill, error)

	// SaveLines replaces the bill's lines
	SaveLines(ctx context.Context, billID id.ID, lines []Line) error

	// GetLines retrieves the bill's lines
	GetLines(ctx context.Context, billID id.ID) ([]Line, error)

	// GetAmendments retrieves bills that amend the given bill
	GetAmendments(ctx context.Context, billID id.ID) ([]*Bill, error)

	// List retrieves bills with filtering
	List(ctx context.Context, f ListFilter) (domain.ListResult[*Bill], error)

	// Search performs full-text search over bill numbers, supplier
	// invoice numbers, and line product names
	Search(ctx context.Context, query string, limit int) ([]*Bill, error)
}
