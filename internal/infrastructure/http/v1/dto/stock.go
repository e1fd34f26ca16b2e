package dto

import (
	"tradelink/internal/core/entity"
	"tradelink/internal/core/id"
)

// ProductStockResponse reports both pools for one product.
type ProductStockResponse struct {
	ProductID  string `json:"productId"`
	GoodQty    int64  `json:"goodQty"`
	DamagedQty int64  `json:"damagedQty"`
}

// NewProductStockResponse builds the two-pool availability payload.
func NewProductStockResponse(productID id.ID, good, damaged int64) ProductStockResponse {
	return ProductStockResponse{
		ProductID:  productID.String(),
		GoodQty:    good,
		DamagedQty: damaged,
	}
}

// StockBalanceListResponse wraps balance rows.
type StockBalanceListResponse struct {
	Items []entity.StockBalance `json:"items"`
}

// StockMovementListResponse wraps movement rows.
type StockMovementListResponse struct {
	Items      []entity.InventoryMovement `json:"items"`
	TotalCount int                        `json:"totalCount"`
}
