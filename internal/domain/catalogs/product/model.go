// Package product provides the Product catalog.
// Products carry the pricing and quantity-scheme configuration that
// drives order capture: a base rate, a standing discounted rate, and up
// to two quantity-triggered secondary discount tiers.
package product

import (
	"context"

	"github.com/shopspring/decimal"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/entity"
	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
)

// Product represents a tradeable SKU.
type Product struct {
	entity.Catalog

	// CompanyID is the owning supplier brand
	CompanyID id.ID `db:"company_id" json:"companyId"`

	// BaseRate is the list price per piece
	BaseRate types.Money `db:"base_rate" json:"baseRate"`

	// ProductDiscountPct is the standing discount off the base rate
	ProductDiscountPct types.Money `db:"product_discount_pct" json:"productDiscountPct"`

	// DiscountedRate is the standing selling rate per piece.
	// This, not BaseRate, is the starting point for scheme discounts.
	DiscountedRate types.Money `db:"discounted_rate" json:"discountedRate"`

	// MarginPct is the distributor margin used for purchase rate suggestions
	MarginPct types.Money `db:"margin_pct" json:"marginPct"`

	// Packaging
	PacketsPerCarton int `db:"packets_per_carton" json:"packetsPerCarton"`
	PiecesPerPacket  int `db:"pieces_per_packet" json:"piecesPerPacket"`

	// OrderMultiple forces ordered quantity to a multiple (zero = no constraint)
	OrderMultiple types.Pieces `db:"order_multiple" json:"orderMultiple"`

	// MinOrderQty is the minimum pieces per order line (defaults to 1)
	MinOrderQty types.Pieces `db:"min_order_qty" json:"minOrderQty"`

	// StockOut blocks the product from new orders
	StockOut bool `db:"stock_out" json:"stockOut"`

	// DiscountEditable allows per-order rate overrides by sales users
	DiscountEditable bool `db:"discount_editable" json:"discountEditable"`

	// First scheme tier: pct off when ordered qty reaches the qualifying qty
	SecondaryAvailable     bool         `db:"secondary_available" json:"secondaryAvailable"`
	SecondaryQualifyingQty types.Pieces `db:"secondary_qualifying_qty" json:"secondaryQualifyingQty"`
	SecondaryDiscountPct   types.Money  `db:"secondary_discount_pct" json:"secondaryDiscountPct"`

	// Second scheme tier: extra pct on top of the first tier at a higher qty.
	// Only meaningful when the first tier is configured.
	AdditionalQualifyingQty        types.Pieces `db:"additional_qualifying_qty" json:"additionalQualifyingQty"`
	AdditionalSecondaryDiscountPct types.Money  `db:"additional_secondary_discount_pct" json:"additionalSecondaryDiscountPct"`
}

// New creates a new Product with the standing rate equal to the base rate.
func New(code, name string, companyID id.ID, baseRate types.Money) *Product {
	return &Product{
		Catalog:        entity.NewCatalog(code, name),
		CompanyID:      companyID,
		BaseRate:       baseRate,
		DiscountedRate: baseRate,
		MinOrderQty:    1,
	}
}

var hundred = decimal.NewFromInt(100)

// Validate implements Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.CompanyID) {
		return apperror.NewValidation("product must belong to a company").
			WithDetail("field", "companyId")
	}
	if !p.BaseRate.IsPositive() {
		return apperror.NewValidation("base rate must be positive").
			WithDetail("field", "baseRate")
	}
	if !p.DiscountedRate.IsPositive() {
		return apperror.NewValidation("discounted rate must be positive").
			WithDetail("field", "discountedRate")
	}
	if p.DiscountedRate.GreaterThan(p.BaseRate) {
		return apperror.NewValidation("discounted rate must not exceed base rate").
			WithDetail("baseRate", p.BaseRate.String()).
			WithDetail("discountedRate", p.DiscountedRate.String())
	}

	for field, pct := range map[string]types.Money{
		"productDiscountPct":             p.ProductDiscountPct,
		"secondaryDiscountPct":           p.SecondaryDiscountPct,
		"additionalSecondaryDiscountPct": p.AdditionalSecondaryDiscountPct,
		"marginPct":                      p.MarginPct,
	} {
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return apperror.NewValidation("percentage must be between 0 and 100").
				WithDetail("field", field).
				WithDetail("value", pct.String())
		}
	}

	if p.MinOrderQty < 1 {
		return apperror.NewValidation("minimum order quantity must be at least 1").
			WithDetail("field", "minOrderQty")
	}
	if p.OrderMultiple.IsNegative() {
		return apperror.NewValidation("order multiple must not be negative").
			WithDetail("field", "orderMultiple")
	}
	if p.PacketsPerCarton < 0 || p.PiecesPerPacket < 0 {
		return apperror.NewValidation("packaging counts must not be negative")
	}

	if p.SecondaryAvailable {
		if !p.SecondaryQualifyingQty.IsPositive() {
			return apperror.NewValidation("secondary scheme requires a qualifying quantity").
				WithDetail("field", "secondaryQualifyingQty")
		}
		if !p.SecondaryDiscountPct.IsPositive() {
			return apperror.NewValidation("secondary scheme requires a discount percentage").
				WithDetail("field", "secondaryDiscountPct")
		}
	}

	// The additional tier is an extension of the first tier
	if p.AdditionalQualifyingQty.IsPositive() || p.AdditionalSecondaryDiscountPct.IsPositive() {
		if !p.SecondaryAvailable {
			return apperror.NewValidation("additional scheme tier requires the secondary scheme").
				WithDetail("field", "additionalQualifyingQty")
		}
		if p.AdditionalQualifyingQty.IsPositive() != p.AdditionalSecondaryDiscountPct.IsPositive() {
			return apperror.NewValidation("additional scheme tier requires both quantity and percentage")
		}
		if p.AdditionalQualifyingQty <= p.SecondaryQualifyingQty {
			return apperror.NewValidation("additional qualifying quantity must exceed secondary qualifying quantity").
				WithDetail("secondaryQualifyingQty", p.SecondaryQualifyingQty.Int64()).
				WithDetail("additionalQualifyingQty", p.AdditionalQualifyingQty.Int64())
		}
	}

	return nil
}

// PiecesPerCarton returns the full carton size in pieces (0 if packaging unset).
func (p *Product) PiecesPerCarton() types.Pieces {
	return types.Pieces(int64(p.PacketsPerCarton) * int64(p.PiecesPerPacket))
}

// SuggestedPurchaseRate returns the default buying rate derived from the
// base rate and the distributor margin, rounded to the cent.
func (p *Product) SuggestedPurchaseRate() types.Money {
	margin := p.MarginPct
	if margin.IsZero() {
		margin = decimal.NewFromInt(25)
	}
	return types.RoundMoney(types.ApplyDiscountPct(p.BaseRate, margin))
}

// HasSecondaryScheme reports whether the first quantity tier is active.
func (p *Product) HasSecondaryScheme() bool {
	return p.SecondaryAvailable && p.SecondaryQualifyingQty.IsPositive() && p.SecondaryDiscountPct.IsPositive()
}

// HasAdditionalScheme reports whether the second quantity tier is active.
func (p *Product) HasAdditionalScheme() bool {
	return p.HasSecondaryScheme() &&
		p.AdditionalQualifyingQty.IsPositive() &&
		p.AdditionalSecondaryDiscountPct.IsPositive()
}
