package dto

import (
	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/internal/domain/documents/salesreturn"
)

// FullReturnRequest returns every not-yet-returned piece of an order.
type FullReturnRequest struct {
	OrderID id.ID  `json:"orderId" binding:"required"`
	Reason  string `json:"reason" binding:"required"`
}

// ReturnItemRequest is one requested partial-return line.
type ReturnItemRequest struct {
	ProductID  id.ID `json:"productId" binding:"required"`
	GoodQty    int64 `json:"goodQty" binding:"min=0"`
	DamagedQty int64 `json:"damagedQty" binding:"min=0"`
}

// PartialReturnRequest returns caller-specified quantities.
type PartialReturnRequest struct {
	OrderID id.ID               `json:"orderId" binding:"required"`
	Reason  string              `json:"reason" binding:"required"`
	Items   []ReturnItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ToSpecs maps the request lines to domain line specs.
func (r PartialReturnRequest) ToSpecs() []salesreturn.LineSpec {
	specs := make([]salesreturn.LineSpec, len(r.Items))
	for i, item := range r.Items {
		specs[i] = salesreturn.LineSpec{
			ProductID:  item.ProductID,
			GoodQty:    types.Pieces(item.GoodQty),
			DamagedQty: types.Pieces(item.DamagedQty),
		}
	}
	return specs
}
