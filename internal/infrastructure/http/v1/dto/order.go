package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"tradelink/internal/core/id"
)

// OrderItemRequest is one requested invoice line.
// Rate is an optional manual override; it is only honored for products
// with editable discounts.
type OrderItemRequest struct {
	ProductID id.ID            `json:"productId" binding:"required"`
	Qty       int64            `json:"qty" binding:"required,min=1"`
	Rate      *decimal.Decimal `json:"rate"`
}

// PlaceOrderRequest for POST /documents/orders.
type PlaceOrderRequest struct {
	CustomerID id.ID              `json:"customerId" binding:"required"`
	Date       *time.Time         `json:"date"`
	Comment    string             `json:"comment"`
	Items      []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ChangeOrderStatusRequest for POST /documents/orders/:id/status.
type ChangeOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
