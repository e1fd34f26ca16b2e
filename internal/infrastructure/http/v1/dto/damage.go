package dto

import (
	"tradelink/internal/core/id"
)

// LogDamageRequest records internally discovered warehouse damage.
type LogDamageRequest struct {
	ProductID id.ID  `json:"productId" binding:"required"`
	Qty       int64  `json:"qty" binding:"required,min=1"`
	Reason    string `json:"reason" binding:"required"`
}
