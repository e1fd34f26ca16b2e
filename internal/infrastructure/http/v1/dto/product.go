package dto

import (
	"github.com/shopspring/decimal"

	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/internal/domain/catalogs/product"
)

// CreateProductRequest for creating SKUs.
type CreateProductRequest struct {
	Code      string          `json:"code"`
	Name      string          `json:"name" binding:"required"`
	CompanyID id.ID           `json:"companyId" binding:"required"`
	BaseRate  decimal.Decimal `json:"baseRate" binding:"required"`

	ProductDiscountPct *decimal.Decimal `json:"productDiscountPct"`
	DiscountedRate     *decimal.Decimal `json:"discountedRate"`
	MarginPct          *decimal.Decimal `json:"marginPct"`

	PacketsPerCarton int   `json:"packetsPerCarton"`
	PiecesPerPacket  int   `json:"piecesPerPacket"`
	OrderMultiple    int64 `json:"orderMultiple"`
	MinOrderQty      int64 `json:"minOrderQty"`

	DiscountEditable bool `json:"discountEditable"`

	SecondaryAvailable     bool             `json:"secondaryAvailable"`
	SecondaryQualifyingQty int64            `json:"secondaryQualifyingQty"`
	SecondaryDiscountPct   *decimal.Decimal `json:"secondaryDiscountPct"`

	AdditionalQualifyingQty        int64            `json:"additionalQualifyingQty"`
	AdditionalSecondaryDiscountPct *decimal.Decimal `json:"additionalSecondaryDiscountPct"`
}

// ToEntity maps the request to a new Product.
func (r CreateProductRequest) ToEntity() *product.Product {
	p := product.New(r.Code, r.Name, r.CompanyID, r.BaseRate)

	if r.ProductDiscountPct != nil {
		p.ProductDiscountPct = *r.ProductDiscountPct
	}
	if r.DiscountedRate != nil {
		p.DiscountedRate = *r.DiscountedRate
	}
	if r.MarginPct != nil {
		p.MarginPct = *r.MarginPct
	}

	p.PacketsPerCarton = r.PacketsPerCarton
	p.PiecesPerPacket = r.PiecesPerPacket
	p.OrderMultiple = types.Pieces(r.OrderMultiple)
	if r.MinOrderQty > 0 {
		p.MinOrderQty = types.Pieces(r.MinOrderQty)
	}
	p.DiscountEditable = r.DiscountEditable

	p.SecondaryAvailable = r.SecondaryAvailable
	p.SecondaryQualifyingQty = types.Pieces(r.SecondaryQualifyingQty)
	if r.SecondaryDiscountPct != nil {
		p.SecondaryDiscountPct = *r.SecondaryDiscountPct
	}
	p.AdditionalQualifyingQty = types.Pieces(r.AdditionalQualifyingQty)
	if r.AdditionalSecondaryDiscountPct != nil {
		p.AdditionalSecondaryDiscountPct = *r.AdditionalSecondaryDiscountPct
	}

	return p
}

// UpdateProductRequest for updating SKUs.
type UpdateProductRequest struct {
	Code      *string          `json:"code"`
	Name      *string          `json:"name"`
	CompanyID *id.ID           `json:"companyId"`
	BaseRate  *decimal.Decimal `json:"baseRate"`

	ProductDiscountPct *decimal.Decimal `json:"productDiscountPct"`
	DiscountedRate     *decimal.Decimal `json:"discountedRate"`
	MarginPct          *decimal.Decimal `json:"marginPct"`

	PacketsPerCarton *int   `json:"packetsPerCarton"`
	PiecesPerPacket  *int   `json:"piecesPerPacket"`
	OrderMultiple    *int64 `json:"orderMultiple"`
	MinOrderQty      *int64 `json:"minOrderQty"`

	DiscountEditable *bool `json:"discountEditable"`

	SecondaryAvailable     *bool            `json:"secondaryAvailable"`
	SecondaryQualifyingQty *int64           `json:"secondaryQualifyingQty"`
	SecondaryDiscountPct   *decimal.Decimal `json:"secondaryDiscountPct"`

	AdditionalQualifyingQty        *int64           `json:"additionalQualifyingQty"`
	AdditionalSecondaryDiscountPct *decimal.Decimal `json:"additionalSecondaryDiscountPct"`

	IsActive *bool `json:"isActive"`
	Version  int   `json:"version" binding:"required,min=1"`
}

// ApplyTo merges the request onto an existing Product.
func (r UpdateProductRequest) ApplyTo(p *product.Product) {
	if r.Code != nil {
		p.Code = *r.Code
	}
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.CompanyID != nil {
		p.CompanyID = *r.CompanyID
	}
	if r.BaseRate != nil {
		p.BaseRate = *r.BaseRate
	}
	if r.ProductDiscountPct != nil {
		p.ProductDiscountPct = *r.ProductDiscountPct
	}
	if r.DiscountedRate != nil {
		p.DiscountedRate = *r.DiscountedRate
	}
	if r.MarginPct != nil {
		p.MarginPct = *r.MarginPct
	}
	if r.PacketsPerCarton != nil {
		p.PacketsPerCarton = *r.PacketsPerCarton
	}
	if r.PiecesPerPacket != nil {
		p.PiecesPerPacket = *r.PiecesPerPacket
	}
	if r.OrderMultiple != nil {
		p.OrderMultiple = types.Pieces(*r.OrderMultiple)
	}
	if r.MinOrderQty != nil {
		p.MinOrderQty = types.Pieces(*r.MinOrderQty)
	}
	if r.DiscountEditable != nil {
		p.DiscountEditable = *r.DiscountEditable
	}
	if r.SecondaryAvailable != nil {
		p.SecondaryAvailable = *r.SecondaryAvailable
	}
	if r.SecondaryQualifyingQty != nil {
		p.SecondaryQualifyingQty = types.Pieces(*r.SecondaryQualifyingQty)
	}
	if r.SecondaryDiscountPct != nil {
		p.SecondaryDiscountPct = *r.SecondaryDiscountPct
	}
	if r.AdditionalQualifyingQty != nil {
		p.AdditionalQualifyingQty = types.Pieces(*r.AdditionalQualifyingQty)
	}
	if r.AdditionalSecondaryDiscountPct != nil {
		p.AdditionalSecondaryDiscountPct = *r.AdditionalSecondaryDiscountPct
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	p.Version = r.Version
}

// SetStockOutRequest flips the stock-out flag on a product.
type SetStockOutRequest struct {
	StockOut bool `json:"stockOut"`
}
