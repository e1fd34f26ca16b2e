// Package purchase provides the purchase bill document.
//
// A bill records goods bought from a supplier with its commercial
// totals: gross, bill-level discount, tax in one of three modes, and
// other charges. Bills are append-only: a correction is a new bill
// that references the one it amends.
package purchase

import (
	"context"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/entity"
	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
)

// TaxMode controls how the tax percentage applies to the bill.
type TaxMode string

const (
	// TaxExclusive adds tax on top of the discounted base
	TaxExclusive TaxMode = "EXCLUSIVE"
	// TaxInclusive treats the base as already containing tax
	TaxInclusive TaxMode = "INCLUSIVE"
	// TaxNone applies no tax
	TaxNone TaxMode = "NONE"
)

// DiscountType controls how the bill-level discount value is read.
type DiscountType string

const (
	// DiscountAbsolute is a flat amount off the gross
	DiscountAbsolute DiscountType = "ABS"
	// DiscountPercent is a percentage of the gross
	DiscountPercent DiscountType = "PCT"
)

// Line is one purchased product line.
type Line struct {
	ID     id.ID `db:"id" json:"id"`
	BillID id.ID `db:"bill_id" json:"billId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID   id.ID  `db:"product_id" json:"productId"`
	ProductName string `db:"product_name" json:"productName"`

	Qty types.Pieces `db:"qty" json:"qty"`

	// Rate is the buying rate per piece
	Rate types.Money `db:"rate" json:"rate"`

	// Amount is Qty * Rate, rounded to the cent
	Amount types.Money `db:"amount" json:"amount"`
}

// Bill represents one supplier purchase bill.
type Bill struct {
	entity.Document

	// CompanyID is the supplier brand the goods were bought from
	CompanyID id.ID `db:"company_id" json:"companyId"`

	// SupplierInvoiceNo is the supplier's own bill number
	SupplierInvoiceNo string `db:"supplier_invoice_no" json:"supplierInvoiceNo"`

	// Commercial terms
	TaxMode      TaxMode      `db:"tax_mode" json:"taxMode"`
	TaxPct       types.Money  `db:"tax_pct" json:"taxPct"`
	DiscountType DiscountType `db:"discount_type" json:"discountType"`

	// DiscountValue is an amount (ABS) or a percentage (PCT)
	DiscountValue types.Money `db:"discount_value" json:"discountValue"`

	OtherCharges types.Money `db:"other_charges" json:"otherCharges"`

	// Computed totals (always recomputed server-side before save)
	Gross          types.Money `db:"gross" json:"gross"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	TaxableBase    types.Money `db:"taxable_base" json:"taxableBase"`
	TaxAmount      types.Money `db:"tax_amount" json:"taxAmount"`
	NetAmount      types.Money `db:"net_amount" json:"netAmount"`

	// AmendsBillID references the bill this one corrects. The original
	// is kept; amended bills form a chain.
	AmendsBillID *id.ID `db:"amends_bill_id" json:"amendsBillId,omitempty"`

	// Lines are loaded separately by the repository
	Lines []Line `db:"-" json:"lines,omitempty"`
}

// New creates an empty purchase bill for a supplier.
func New(companyID id.ID) *Bill {
	return &Bill{
		Document:      entity.NewDocument(),
		CompanyID:     companyID,
		TaxMode:       TaxNone,
		DiscountType:  DiscountAbsolute,
		TaxPct:        types.Zero(),
		DiscountValue: types.Zero(),
		OtherCharges:  types.Zero(),
	}
}

// AddLine appends a purchased line at the given rate.
func (b *Bill) AddLine(productID id.ID, productName string, qty types.Pieces, rate types.Money) {
	b.Lines = append(b.Lines, Line{
		ID:          id.New(),
		BillID:      b.ID,
		LineNo:      len(b.Lines) + 1,
		ProductID:   productID,
		ProductName: productName,
		Qty:         qty,
		Rate:        rate,
		Amount:      types.RoundMoney(rate.Mul(qty.Decimal())),
	})
}

// Recalc recomputes the line amounts and bill totals.
func (b *Bill) Recalc() {
	gross := types.Zero()
	for i := range b.Lines {
		b.Lines[i].Amount = types.RoundMoney(b.Lines[i].Rate.Mul(b.Lines[i].Qty.Decimal()))
		gross = gross.Add(b.Lines[i].Amount)
	}

	totals := ComputeTotals(gross, b.DiscountType, b.DiscountValue, b.TaxMode, b.TaxPct, b.OtherCharges)
	b.Gross = totals.Gross
	b.DiscountAmount = totals.DiscountAmount
	b.TaxableBase = totals.TaxableBase
	b.TaxAmount = totals.TaxAmount
	b.NetAmount = totals.Net
}

// Validate implements entity.Validatable.
func (b *Bill) Validate(ctx context.Context) error {
	if err := b.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(b.CompanyID) {
		return apperror.NewValidation("supplier company is required").
			WithDetail("field", "companyId")
	}
	if len(b.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	switch b.TaxMode {
	case TaxExclusive, TaxInclusive, TaxNone:
	default:
		return apperror.NewValidation("unknown tax mode").
			WithDetail("taxMode", string(b.TaxMode))
	}
	switch b.DiscountType {
	case DiscountAbsolute, DiscountPercent:
	default:
		return apperror.NewValidation("unknown discount type").
			WithDetail("discountType", string(b.DiscountType))
	}

	if b.TaxPct.IsNegative() {
		return apperror.NewValidation("tax percentage must not be negative").
			WithDetail("field", "taxPct")
	}
	if b.DiscountValue.IsNegative() {
		return apperror.NewValidation("discount must not be negative").
			WithDetail("field", "discountValue")
	}
	if b.OtherCharges.IsNegative() {
		return apperror.NewValidation("other charges must not be negative").
			WithDetail("field", "otherCharges")
	}

	for i := range b.Lines {
		line := &b.Lines[i]
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("lineNo", i+1)
		}
		if !line.Qty.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("lineNo", i+1)
		}
		if line.Rate.IsNegative() {
			return apperror.NewValidation("rate must not be negative").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// IsAmendment reports whether the bill corrects an earlier one.
func (b *Bill) IsAmendment() bool {
	return b.AmendsBillID != nil && !id.IsNil(*b.AmendsBillID)
}
