// Package entity provides core domain entities.
package entity

import (
	"fmt"
	"time"

	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
)

// StockPool identifies which of the two stock pools a movement applies to.
type StockPool string

const (
	// PoolGood is resellable inventory.
	PoolGood StockPool = "good"
	// PoolDamaged is inventory unfit for resale, tracked separately.
	PoolDamaged StockPool = "damaged"
)

// MovementType is the typed cause of a stock quantity change.
type MovementType string

const (
	// MovementSale decreases good stock.
	MovementSale MovementType = "sale"
	// MovementSaleReturnGood increases good stock.
	MovementSaleReturnGood MovementType = "sale_return_good"
	// MovementSaleReturnDamaged increases damaged stock.
	// It must never touch the good pool: a damaged return is not
	// resellable inventory.
	MovementSaleReturnDamaged MovementType = "sale_return_damaged"
	// MovementDamageAdjustment moves internally discovered damage from
	// good to damaged. Always emitted as a matched pair.
	MovementDamageAdjustment MovementType = "damage_adjustment"
)

// MovementBase contains common fields for all ledger movements.
// Movements are immutable - they are never updated, only deleted and recreated
// when a document is re-posted.
type MovementBase struct {
	// LineID is unique identifier for this movement line (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	// RecorderID is the document that created this movement
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	// RecorderType is the document type (e.g., "Order", "SalesReturn")
	RecorderType string `db:"recorder_type" json:"recorderType"`

	// RecorderVersion tracks which posting iteration created this movement.
	// Allows efficient cleanup: DELETE WHERE recorder_id = X AND recorder_version < Y
	RecorderVersion int `db:"recorder_version" json:"recorderVersion"`

	// Period is the business date for the movement (for period-based queries)
	Period time.Time `db:"period" json:"period"`

	// CreatedAt is when the movement was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMovementBase creates a new movement base with generated LineID.
func NewMovementBase(recorderID id.ID, recorderType string, recorderVersion int, period time.Time) MovementBase {
	return MovementBase{
		LineID:          id.New(),
		RecorderID:      recorderID,
		RecorderType:    recorderType,
		RecorderVersion: recorderVersion,
		Period:          period,
		CreatedAt:       time.Now().UTC(),
	}
}

// InventoryMovement is one append-only entry in the inventory ledger.
// The running sum of QtyDelta per (ProductID, Pool) yields the current
// good-stock and damaged-stock levels; levels are always derived, never
// stored and mutated directly.
type InventoryMovement struct {
	MovementBase

	// Dimensions
	ProductID id.ID     `db:"product_id" json:"productId"`
	Pool      StockPool `db:"pool" json:"pool"`

	// Resources
	MovementType MovementType `db:"movement_type" json:"movementType"`
	QtyDelta     types.Pieces `db:"qty_delta" json:"qtyDeltaPieces"`
}

// IsDamagedStock reports whether the movement applies to the damaged pool.
func (m *InventoryMovement) IsDamagedStock() bool {
	return m.Pool == PoolDamaged
}

// Validate enforces the movement semantics table: each movement type may
// only touch its designated pool with its designated sign.
func (m *InventoryMovement) Validate() error {
	switch m.MovementType {
	case MovementSale:
		if m.Pool != PoolGood || m.QtyDelta >= 0 {
			return fmt.Errorf("sale movement must be a negative good-pool delta")
		}
	case MovementSaleReturnGood:
		if m.Pool != PoolGood || m.QtyDelta <= 0 {
			return fmt.Errorf("sale_return_good movement must be a positive good-pool delta")
		}
	case MovementSaleReturnDamaged:
		if m.Pool != PoolDamaged || m.QtyDelta <= 0 {
			return fmt.Errorf("sale_return_damaged movement must be a positive damaged-pool delta")
		}
	case MovementDamageAdjustment:
		if m.Pool == PoolGood && m.QtyDelta >= 0 {
			return fmt.Errorf("damage_adjustment good-pool delta must be negative")
		}
		if m.Pool == PoolDamaged && m.QtyDelta <= 0 {
			return fmt.Errorf("damage_adjustment damaged-pool delta must be positive")
		}
	default:
		return fmt.Errorf("unknown movement type %q", m.MovementType)
	}
	if m.QtyDelta == 0 {
		return fmt.Errorf("movement delta must be nonzero")
	}
	return nil
}

// --- Constructors per movement type ---
// Callers build movements through these so an invalid type/pool/sign
// combination cannot be represented at a call site.

// NewSaleMovement records qty pieces leaving good stock for a sale.
func NewSaleMovement(base MovementBase, productID id.ID, qty types.Pieces) InventoryMovement {
	return InventoryMovement{
		MovementBase: base,
		ProductID:    productID,
		Pool:         PoolGood,
		MovementType: MovementSale,
		QtyDelta:     -qty,
	}
}

// NewSaleReturnGoodMovement records qty pieces returning to good stock.
func NewSaleReturnGoodMovement(base MovementBase, productID id.ID, qty types.Pieces) InventoryMovement {
	return InventoryMovement{
		MovementBase: base,
		ProductID:    productID,
		Pool:         PoolGood,
		MovementType: MovementSaleReturnGood,
		QtyDelta:     qty,
	}
}

// NewSaleReturnDamagedMovement records qty damaged pieces entering the
// damaged pool. Good stock is not affected.
func NewSaleReturnDamagedMovement(base MovementBase, productID id.ID, qty types.Pieces) InventoryMovement {
	return InventoryMovement{
		MovementBase: base,
		ProductID:    productID,
		Pool:         PoolDamaged,
		MovementType: MovementSaleReturnDamaged,
		QtyDelta:     qty,
	}
}

// NewDamageAdjustmentPair records internally discovered damage: qty pieces
// leave good stock and the same qty enters damaged stock.
func NewDamageAdjustmentPair(base MovementBase, productID id.ID, qty types.Pieces) []InventoryMovement {
	out := InventoryMovement{
		MovementBase: base,
		ProductID:    productID,
		Pool:         PoolGood,
		MovementType: MovementDamageAdjustment,
		QtyDelta:     -qty,
	}
	in := InventoryMovement{
		MovementBase: base,
		ProductID:    productID,
		Pool:         PoolDamaged,
		MovementType: MovementDamageAdjustment,
		QtyDelta:     qty,
	}
	// The pair shares recorder fields but each entry needs its own line id.
	in.LineID = id.New()
	return []InventoryMovement{out, in}
}

// StockBalance represents a derived balance for one product and pool.
// This is a materialized/cached view for fast balance queries; the ledger
// remains the source of truth.
type StockBalance struct {
	// Dimensions
	ProductID id.ID     `db:"product_id" json:"productId"`
	Pool      StockPool `db:"pool" json:"pool"`

	// Balances
	Quantity types.Pieces `db:"quantity" json:"quantity"`

	// Metadata
	LastMovementAt time.Time `db:"last_movement_at" json:"lastMovementAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
