// Package inventory provides the two-pool inventory accumulation register.
// Every stock change is an append-only movement; good-stock and
// damaged-stock levels are running sums per (product, pool).
package inventory

import (
	"context"
	"time"

	"tradelink/internal/core/entity"
	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
)

// Repository defines operations for the inventory register.
type Repository interface {
	// Movement operations

	// CreateMovements batch inserts movements (used during posting)
	CreateMovements(ctx context.Context, movements []entity.InventoryMovement) error

	// DeleteMovementsByRecorder removes movements of a document below the
	// given version. beforeVersion <= 0 removes all versions.
	DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error

	// GetMovementsByRecorder retrieves all movements for a document
	GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.InventoryMovement, error)

	// Balance operations

	// GetBalance returns current balance for product+pool
	GetBalance(ctx context.Context, productID id.ID, pool entity.StockPool) (entity.StockBalance, error)

	// GetBalanceForUpdate returns balance with row lock
	GetBalanceForUpdate(ctx context.Context, productID id.ID, pool entity.StockPool) (entity.StockBalance, error)

	// GetBalancesByProduct returns both pool balances for a product
	GetBalancesByProduct(ctx context.Context, productID id.ID) ([]entity.StockBalance, error)

	// ListBalances returns balances across products
	ListBalances(ctx context.Context, f BalanceFilter) ([]entity.StockBalance, error)

	// GetBalanceAtDate calculates the balance as of a date (for reports)
	GetBalanceAtDate(ctx context.Context, productID id.ID, pool entity.StockPool, date time.Time) (types.Pieces, error)

	// Reporting

	// GetMovementHistory returns movement history for a product
	GetMovementHistory(ctx context.Context, productID id.ID, f MovementFilter) ([]entity.InventoryMovement, error)

	// GetTurnover calculates inflow and outflow totals for a period
	GetTurnover(ctx context.Context, f TurnoverFilter) (Turnover, error)

	// Maintenance

	// RecalculateBalances rebuilds the balance table from movements.
	// productID nil rebuilds everything.
	RecalculateBalances(ctx context.Context, productID *id.ID) error
}

// BalanceFilter for filtering balance queries.
type BalanceFilter struct {
	ProductIDs  []id.ID
	Pool        *entity.StockPool
	ExcludeZero bool
	Limit       int
	Offset      int
}

// MovementFilter for filtering movement history.
type MovementFilter struct {
	Pool         *entity.StockPool
	MovementType *entity.MovementType
	FromDate     *time.Time
	ToDate       *time.Time
	Limit        int
	Offset       int
}

// TurnoverFilter for turnover reports.
type TurnoverFilter struct {
	ProductID *id.ID
	Pool      entity.StockPool
	FromDate  time.Time
	ToDate    time.Time
}

// Turnover represents inflow/outflow totals for one product and pool.
type Turnover struct {
	ProductID      id.ID        `json:"productId,omitempty"`
	Pool           entity.StockPool `json:"pool"`
	OpeningBalance types.Pieces `json:"openingBalance"`
	Inflow         types.Pieces `json:"inflow"`
	Outflow        types.Pieces `json:"outflow"`
	ClosingBalance types.Pieces `json:"closingBalance"`
}
