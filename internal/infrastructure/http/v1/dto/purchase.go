package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/internal/domain/documents/purchase"
)

// BillLineRequest is one purchased product line.
type BillLineRequest struct {
	ProductID id.ID           `json:"productId" binding:"required"`
	Qty       int64           `json:"qty" binding:"required,min=1"`
	Rate      decimal.Decimal `json:"rate" binding:"required"`
}

// SaveBillRequest for POST /documents/purchase-bills.
// Totals are never accepted from the client; the server recomputes them.
type SaveBillRequest struct {
	CompanyID         id.ID      `json:"companyId" binding:"required"`
	SupplierInvoiceNo string     `json:"supplierInvoiceNo"`
	Date              *time.Time `json:"date"`
	Comment           string     `json:"comment"`

	TaxMode       string           `json:"taxMode"`
	TaxPct        *decimal.Decimal `json:"taxPct"`
	DiscountType  string           `json:"discountType"`
	DiscountValue *decimal.Decimal `json:"discountValue"`
	OtherCharges  *decimal.Decimal `json:"otherCharges"`

	Lines []BillLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToEntity maps the request to a new Bill. Product names are passed in
// by the handler, snapshotted from the catalog.
func (r SaveBillRequest) ToEntity(productNames map[id.ID]string) *purchase.Bill {
	bill := purchase.New(r.CompanyID)
	bill.SupplierInvoiceNo = r.SupplierInvoiceNo
	if r.Date != nil {
		bill.Date = *r.Date
	}
	bill.Comment = r.Comment

	if r.TaxMode != "" {
		bill.TaxMode = purchase.TaxMode(r.TaxMode)
	}
	if r.TaxPct != nil {
		bill.TaxPct = *r.TaxPct
	}
	if r.DiscountType != "" {
		bill.DiscountType = purchase.DiscountType(r.DiscountType)
	}
	if r.DiscountValue != nil {
		bill.DiscountValue = *r.DiscountValue
	}
	if r.OtherCharges != nil {
		bill.OtherCharges = *r.OtherCharges
	}

	for _, line := range r.Lines {
		bill.AddLine(line.ProductID, productNames[line.ProductID], types.Pieces(line.Qty), line.Rate)
	}
	return bill
}
