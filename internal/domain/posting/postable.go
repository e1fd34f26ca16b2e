// Package posting implements the document posting mechanism.
//
// Documents describe business events; posting turns them into ledger
// movements. A document can be posted, unposted, and posted again; each
// posting gets a new recorder version so stale movements of older
// versions can be swept inside the same transaction.
package posting

import (
	"context"
	"time"

	"tradelink/internal/core/entity"
	"tradelink/internal/core/id"
)

// Postable is implemented by documents that produce ledger movements.
// Most methods are inherited from entity.Document; concrete documents
// implement GetDocumentType and GenerateMovements.
type Postable interface {
	GetID() id.ID
	GetDate() time.Time
	GetDocumentType() string
	GetPostedVersion() int
	IsPosted() bool

	// CanPost validates document state before posting
	CanPost(ctx context.Context) error

	// GenerateMovements produces movements for posted version +1
	GenerateMovements(ctx context.Context) (*MovementSet, error)

	MarkPosted()
	MarkUnposted()
}

// MovementSet collects movements produced by one document posting.
type MovementSet struct {
	Inventory []entity.InventoryMovement
}

// NewMovementSet creates an empty movement set.
func NewMovementSet() *MovementSet {
	return &MovementSet{}
}

// AddInventory appends an inventory movement.
func (m *MovementSet) AddInventory(movement entity.InventoryMovement) {
	m.Inventory = append(m.Inventory, movement)
}

// AddInventoryAll appends several inventory movements.
func (m *MovementSet) AddInventoryAll(movements []entity.InventoryMovement) {
	m.Inventory = append(m.Inventory, movements...)
}

// IsEmpty reports whether the set carries no movements.
func (m *MovementSet) IsEmpty() bool {
	return len(m.Inventory) == 0
}

// Validate checks every movement in the set.
func (m *MovementSet) Validate() error {
	for i := range m.Inventory {
		if err := m.Inventory[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
