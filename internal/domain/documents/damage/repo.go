package damage

import (
	"context"
	"time"

	"tradelink/internal/core/id"
	"tradelink/internal/domain"
)

// ListFilter narrows damage log queries.
type ListFilter struct {
	domain.ListFilter

	ProductID  *id.ID
	SourceType *SourceType
	FromDate   *time.Time
	ToDate     *time.Time
}

// Repository defines the interface for damage log persistence.
type Repository interface {
	// Create inserts a log entry
	Create(ctx context.Context, log *Log) error

	// GetByID retrieves a log entry
	GetByID(ctx context.Context, id id.ID) (*Log, error)

	// Update modifies a log entry (with optimistic locking)
	Update(ctx context.Context, log *Log) error

	// ListBySource retrieves entries of one sales return
	ListBySource(ctx context.Context, sourceID id.ID) ([]*Log, error)

	// List retrieves entries with filtering
	List(ctx context.Context, f ListFilter) (domain.ListResult[*Log], error)
}
