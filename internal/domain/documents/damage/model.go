// Package damage provides the damaged goods log.
//
// Every piece that enters the damaged pool leaves a log entry: either a
// damaged line of a sales return, or internally discovered damage
// (warehouse breakage, expiry found during stock checks). Internal
// entries also move the stock between pools; return-sourced entries do
// not, because the return document itself owns those movements.
package damage

import (
	"context"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/entity"
	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/internal/domain/posting"
)

// SourceType tells where the damaged stock came from.
type SourceType string

const (
	// SourceSaleReturn marks damage reported by a customer return
	SourceSaleReturn SourceType = "sale_return"
	// SourceInternal marks damage discovered in the warehouse
	SourceInternal SourceType = "internal"
)

// Log is one damaged goods record.
type Log struct {
	entity.Document

	ProductID id.ID `db:"product_id" json:"productId"`

	// ProductName is snapshotted for historical rendering
	ProductName string `db:"product_name" json:"productName"`

	Qty types.Pieces `db:"qty" json:"qty"`

	// Reason is the damage description (e.g. "damaged in transit", "expiry")
	Reason string `db:"reason" json:"reason"`

	SourceType SourceType `db:"source_type" json:"sourceType"`

	// SourceID references the sales return for return-sourced entries
	SourceID *id.ID `db:"source_id" json:"sourceId,omitempty"`
}

// NewInternal creates a warehouse damage entry.
func NewInternal(productID id.ID, productName string, qty types.Pieces, reason string) *Log {
	return &Log{
		Document:    entity.NewDocument(),
		ProductID:   productID,
		ProductName: productName,
		Qty:         qty,
		Reason:      reason,
		SourceType:  SourceInternal,
	}
}

// NewFromReturn creates an entry for a damaged sales return line.
func NewFromReturn(returnID id.ID, productID id.ID, productName string, qty types.Pieces, reason string) *Log {
	src := returnID
	return &Log{
		Document:    entity.NewDocument(),
		ProductID:   productID,
		ProductName: productName,
		Qty:         qty,
		Reason:      reason,
		SourceType:  SourceSaleReturn,
		SourceID:    &src,
	}
}

// Validate implements entity.Validatable.
func (l *Log) Validate(ctx context.Context) error {
	if err := l.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(l.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if !l.Qty.IsPositive() {
		return apperror.NewValidation("damaged quantity must be positive").
			WithDetail("field", "qty")
	}
	if l.Reason == "" {
		return apperror.NewValidation("damage reason is required").
			WithDetail("field", "reason")
	}
	if l.SourceType == SourceSaleReturn && (l.SourceID == nil || id.IsNil(*l.SourceID)) {
		return apperror.NewValidation("return-sourced entry must reference the sales return").
			WithDetail("field", "sourceId")
	}

	return nil
}

// --- Postable interface implementation ---
// Only internal entries are posted; return-sourced entries carry no
// movements of their own.

func (l *Log) GetDocumentType() string { return "DamagedGoodsLog" }

// CanPost allows posting for internal entries only.
func (l *Log) CanPost(ctx context.Context) error {
	if l.SourceType != SourceInternal {
		return apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"only internal damage entries produce stock movements",
		).WithDetail("source_type", string(l.SourceType))
	}
	return l.Validate(ctx)
}

// GenerateMovements emits the matched pair: qty leaves good stock and
// the same qty enters damaged stock.
func (l *Log) GenerateMovements(ctx context.Context) (*posting.MovementSet, error) {
	movements := posting.NewMovementSet()
	base := entity.NewMovementBase(l.ID, l.GetDocumentType(), l.PostedVersion+1, l.Date)
	movements.AddInventoryAll(entity.NewDamageAdjustmentPair(base, l.ProductID, l.Qty))
	return movements, nil
}

var _ posting.Postable = (*Log)(nil)
