// Package order provides the sales order document (the invoice captured
// by a sales rep at an outlet).
//
// An order is priced at capture time: each line snapshots the base rate,
// the effective rate, and the applied scheme text, so later product
// price changes never rewrite history. All lines of one order belong to
// one company.
package order

import (
	"context"
	"fmt"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/entity"
	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/internal/domain/catalogs/product"
	"tradelink/internal/domain/posting"
	"tradelink/internal/domain/pricing"
)

// Item is one priced order line.
type Item struct {
	ID      id.ID `db:"id" json:"id"`
	OrderID id.ID `db:"order_id" json:"orderId"`
	LineNo  int   `db:"line_no" json:"lineNo"`

	ProductID id.ID `db:"product_id" json:"productId"`

	// ProductName is snapshotted for rendering historical documents
	ProductName string `db:"product_name" json:"productName"`

	Qty types.Pieces `db:"qty" json:"qty"`

	// Pricing snapshot taken at capture time
	BaseRate      types.Money `db:"base_rate" json:"baseRate"`
	Rate          types.Money `db:"rate" json:"rate"`
	DiscountPct   types.Money `db:"discount_pct" json:"discountPct"`
	Total         types.Money `db:"total" json:"total"`
	SchemeApplied bool        `db:"scheme_applied" json:"schemeApplied"`
	SchemeText    string      `db:"scheme_text" json:"schemeText,omitempty"`
}

// Order represents a sales invoice for one customer and one company.
type Order struct {
	entity.Document

	CustomerID id.ID  `db:"customer_id" json:"customerId"`
	CompanyID  id.ID  `db:"company_id" json:"companyId"`
	Status     Status `db:"status" json:"status"`

	// TotalAmount is the sum of line totals
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Items are loaded separately by the repository
	Items []Item `db:"-" json:"items,omitempty"`
}

// New creates an empty pending order for a customer.
func New(customerID id.ID) *Order {
	return &Order{
		Document:    entity.NewDocument(),
		CustomerID:  customerID,
		Status:      StatusPending,
		TotalAmount: types.Zero(),
	}
}

// AddLine prices the product at the given quantity and appends a line.
// The first line fixes the order's company; lines of another company
// are rejected.
func (o *Order) AddLine(p *product.Product, qty types.Pieces) error {
	if id.IsNil(o.CompanyID) {
		o.CompanyID = p.CompanyID
	} else if o.CompanyID != p.CompanyID {
		return apperror.NewCompanyMismatch(o.CompanyID.String(), p.CompanyID.String())
	}

	lp := pricing.ComputeLine(p, qty)
	o.appendLine(p, qty, lp)
	return nil
}

// AddLineWithRate appends a line at a manually overridden rate.
func (o *Order) AddLineWithRate(p *product.Product, qty types.Pieces, rate types.Money) error {
	if id.IsNil(o.CompanyID) {
		o.CompanyID = p.CompanyID
	} else if o.CompanyID != p.CompanyID {
		return apperror.NewCompanyMismatch(o.CompanyID.String(), p.CompanyID.String())
	}

	lp, err := pricing.ComputeLineWithRate(p, qty, rate)
	if err != nil {
		return apperror.NewValidation(err.Error()).WithDetail("product_id", p.ID.String())
	}
	o.appendLine(p, qty, lp)
	return nil
}

func (o *Order) appendLine(p *product.Product, qty types.Pieces, lp pricing.LinePricing) {
	o.Items = append(o.Items, Item{
		ID:            id.New(),
		OrderID:       o.ID,
		LineNo:        len(o.Items) + 1,
		ProductID:     p.ID,
		ProductName:   p.Name,
		Qty:           qty,
		BaseRate:      lp.BaseRate,
		Rate:          lp.Rate,
		DiscountPct:   lp.DiscountPct,
		Total:         lp.Total,
		SchemeApplied: lp.SchemeApplied,
		SchemeText:    lp.SchemeText,
	})
	o.RecalcTotal()
}

// RecalcTotal recomputes the order total from line totals.
func (o *Order) RecalcTotal() {
	total := types.Zero()
	for i := range o.Items {
		total = total.Add(o.Items[i].Total)
	}
	o.TotalAmount = total
}

// TotalPieces returns the ordered quantity across lines.
func (o *Order) TotalPieces() types.Pieces {
	var total types.Pieces
	for i := range o.Items {
		total += o.Items[i].Qty
	}
	return total
}

// Validate implements entity.Validatable.
func (o *Order) Validate(ctx context.Context) error {
	if err := o.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(o.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}
	if len(o.Items) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "items")
	}
	if !ValidStatus(o.Status) {
		return apperror.NewValidation("unknown order status").
			WithDetail("status", string(o.Status))
	}

	for i := range o.Items {
		item := &o.Items[i]
		if id.IsNil(item.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("lineNo", i+1)
		}
		if !item.Qty.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// CheckQuantityRules validates every line against the product's order
// constraints and collects all violations instead of stopping at the
// first, so a sales rep can fix the whole order in one pass.
func (o *Order) CheckQuantityRules(products map[id.ID]*product.Product) []string {
	var violations []string

	for i := range o.Items {
		item := &o.Items[i]
		p, ok := products[item.ProductID]
		if !ok {
			violations = append(violations, fmt.Sprintf("line %d: product not found", item.LineNo))
			continue
		}

		if p.StockOut {
			violations = append(violations, fmt.Sprintf("%s is out of stock", p.Name))
		}
		minQty := p.MinOrderQty
		if minQty < 1 {
			minQty = 1
		}
		if item.Qty < minQty {
			violations = append(violations, fmt.Sprintf(
				"%s: quantity %d is below the minimum %d", p.Name, item.Qty.Int64(), minQty.Int64()))
		}
		if p.OrderMultiple.IsPositive() && item.Qty.Int64()%p.OrderMultiple.Int64() != 0 {
			violations = append(violations, fmt.Sprintf(
				"%s: quantity %d is not a multiple of %d", p.Name, item.Qty.Int64(), p.OrderMultiple.Int64()))
		}
	}

	return violations
}

// --- Postable interface implementation ---
// GetID, GetDate, GetPostedVersion, IsPosted, CanPost, MarkPosted,
// MarkUnposted are inherited from entity.Document.

func (o *Order) GetDocumentType() string { return "Order" }

// GenerateMovements creates sale movements: ordered pieces leave good
// stock. Damaged stock is never touched by a sale.
func (o *Order) GenerateMovements(ctx context.Context) (*posting.MovementSet, error) {
	movements := posting.NewMovementSet()
	newVersion := o.PostedVersion + 1

	for i := range o.Items {
		item := &o.Items[i]
		base := entity.NewMovementBase(o.ID, o.GetDocumentType(), newVersion, o.Date)
		movements.AddInventory(entity.NewSaleMovement(base, item.ProductID, item.Qty))
	}

	return movements, nil
}

var _ posting.Postable = (*Order)(nil)
