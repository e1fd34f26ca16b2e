// Package salesreturn provides the sales return document.
//
// A return is registered against one delivered order. Returned pieces
// split into good stock (resellable) and damaged stock; the damaged
// split never re-enters good stock. Returns are cumulative: across all
// returns of an order, no line may exceed its invoiced quantity.
package salesreturn

import (
	"context"
	"strings"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/entity"
	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/internal/domain/documents/order"
	"tradelink/internal/domain/posting"
)

// ReturnType distinguishes full and partial returns.
type ReturnType string

const (
	// TypeFull returns every not-yet-returned piece of the order
	TypeFull ReturnType = "full"
	// TypePartial returns caller-specified quantities per line
	TypePartial ReturnType = "partial"
)

// Item is one return line.
type Item struct {
	ID       id.ID `db:"id" json:"id"`
	ReturnID id.ID `db:"return_id" json:"returnId"`
	LineNo   int   `db:"line_no" json:"lineNo"`

	ProductID   id.ID  `db:"product_id" json:"productId"`
	ProductName string `db:"product_name" json:"productName"`

	// InvoicedQty is the quantity on the original order line
	InvoicedQty types.Pieces `db:"invoiced_qty" json:"invoicedQty"`

	// GoodQty goes back to resellable stock
	GoodQty types.Pieces `db:"good_qty" json:"goodQty"`

	// DamagedQty goes to the damaged pool and a damage log entry
	DamagedQty types.Pieces `db:"damaged_qty" json:"damagedQty"`

	// Rate is the effective selling rate from the order line
	Rate types.Money `db:"rate" json:"rate"`

	// Amount is Rate * (GoodQty + DamagedQty), rounded to the cent
	Amount types.Money `db:"amount" json:"amount"`
}

// ReturnedQty is the total pieces on this line.
func (i *Item) ReturnedQty() types.Pieces {
	return i.GoodQty + i.DamagedQty
}

// SalesReturn represents a customer return against one order.
type SalesReturn struct {
	entity.Document

	OrderID     id.ID  `db:"order_id" json:"orderId"`
	OrderNumber string `db:"order_number" json:"orderNumber"`

	CustomerID id.ID `db:"customer_id" json:"customerId"`
	CompanyID  id.ID `db:"company_id" json:"companyId"`

	Type ReturnType `db:"type" json:"type"`

	// Reason is the customer-stated return reason; it drives the
	// good/damaged routing of full returns
	Reason string `db:"reason" json:"reason"`

	// TotalAmount is the credit owed back to the customer
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Items are loaded separately by the repository
	Items []Item `db:"-" json:"items,omitempty"`
}

// LineSpec is the caller's request for one partial return line.
type LineSpec struct {
	ProductID  id.ID
	GoodQty    types.Pieces
	DamagedQty types.Pieces
}

// IsDamageReason reports whether the reason routes a full return to the
// damaged pool.
func IsDamageReason(reason string) bool {
	r := strings.ToLower(reason)
	return strings.Contains(r, "damage") || strings.Contains(r, "expiry")
}

// BuildFull builds a return of every not-yet-returned piece.
// returned maps product to the quantity already returned by earlier
// returns of the same order. A damage/expiry reason routes everything
// to the damaged pool; otherwise pieces go back to good stock.
func BuildFull(o *order.Order, reason string, returned map[id.ID]types.Pieces) (*SalesReturn, error) {
	ret := newReturn(o, TypeFull, reason)
	damaged := IsDamageReason(reason)

	for i := range o.Items {
		line := &o.Items[i]
		remaining := line.Qty - returned[line.ProductID]
		if remaining <= 0 {
			continue
		}

		item := Item{
			ID:          id.New(),
			ReturnID:    ret.ID,
			LineNo:      len(ret.Items) + 1,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			InvoicedQty: line.Qty,
			Rate:        line.Rate,
		}
		if damaged {
			item.DamagedQty = remaining
		} else {
			item.GoodQty = remaining
		}
		item.Amount = lineAmount(line.Rate, remaining)
		ret.Items = append(ret.Items, item)
	}

	if len(ret.Items) == 0 {
		return nil, apperror.NewBusinessRule(
			apperror.CodeInvoiceAlreadyReturned,
			"Every item of this invoice has already been returned",
		).WithDetail("order_id", o.ID.String())
	}

	ret.recalcTotal()
	return ret, nil
}

// BuildPartial builds a return of the requested quantities.
// Each line's good+damaged must fit within the invoiced quantity less
// what earlier returns already took; at least one line must be nonzero.
func BuildPartial(o *order.Order, reason string, specs []LineSpec, returned map[id.ID]types.Pieces) (*SalesReturn, error) {
	ret := newReturn(o, TypePartial, reason)

	byProduct := make(map[id.ID]*order.Item, len(o.Items))
	for i := range o.Items {
		byProduct[o.Items[i].ProductID] = &o.Items[i]
	}

	for _, spec := range specs {
		line, ok := byProduct[spec.ProductID]
		if !ok {
			return nil, apperror.NewValidation("product is not on the invoice").
				WithDetail("product_id", spec.ProductID.String())
		}
		if spec.GoodQty.IsNegative() || spec.DamagedQty.IsNegative() {
			return nil, apperror.NewValidation("return quantities must not be negative").
				WithDetail("product_id", spec.ProductID.String())
		}

		qty := spec.GoodQty + spec.DamagedQty
		if qty.IsZero() {
			continue
		}

		remaining := line.Qty - returned[line.ProductID]
		if qty > remaining {
			return nil, apperror.NewReturnExceedsInvoiced(
				spec.ProductID.String(), qty.Int64(), remaining.Int64())
		}

		ret.Items = append(ret.Items, Item{
			ID:          id.New(),
			ReturnID:    ret.ID,
			LineNo:      len(ret.Items) + 1,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			InvoicedQty: line.Qty,
			GoodQty:     spec.GoodQty,
			DamagedQty:  spec.DamagedQty,
			Rate:        line.Rate,
			Amount:      lineAmount(line.Rate, qty),
		})
	}

	if len(ret.Items) == 0 {
		return nil, apperror.NewNoItemsSelected()
	}

	ret.recalcTotal()
	return ret, nil
}

func newReturn(o *order.Order, returnType ReturnType, reason string) *SalesReturn {
	return &SalesReturn{
		Document:    entity.NewDocument(),
		OrderID:     o.ID,
		OrderNumber: o.Number,
		CustomerID:  o.CustomerID,
		CompanyID:   o.CompanyID,
		Type:        returnType,
		Reason:      reason,
		TotalAmount: types.Zero(),
	}
}

func lineAmount(rate types.Money, qty types.Pieces) types.Money {
	return types.RoundMoney(rate.Mul(qty.Decimal()))
}

func (r *SalesReturn) recalcTotal() {
	total := types.Zero()
	for i := range r.Items {
		total = total.Add(r.Items[i].Amount)
	}
	r.TotalAmount = total
}

// ReturnedByProduct sums this return's pieces per product.
func (r *SalesReturn) ReturnedByProduct() map[id.ID]types.Pieces {
	out := make(map[id.ID]types.Pieces, len(r.Items))
	for i := range r.Items {
		out[r.Items[i].ProductID] += r.Items[i].ReturnedQty()
	}
	return out
}

// Validate implements entity.Validatable.
func (r *SalesReturn) Validate(ctx context.Context) error {
	if err := r.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(r.OrderID) {
		return apperror.NewValidation("order is required").
			WithDetail("field", "orderId")
	}
	if r.Type != TypeFull && r.Type != TypePartial {
		return apperror.NewValidation("unknown return type").
			WithDetail("type", string(r.Type))
	}
	if len(r.Items) == 0 {
		return apperror.NewNoItemsSelected()
	}

	for i := range r.Items {
		item := &r.Items[i]
		if item.GoodQty.IsNegative() || item.DamagedQty.IsNegative() {
			return apperror.NewValidation("return quantities must not be negative").
				WithDetail("lineNo", item.LineNo)
		}
		if item.ReturnedQty().IsZero() {
			return apperror.NewValidation("return line must not be empty").
				WithDetail("lineNo", item.LineNo)
		}
		if item.ReturnedQty() > item.InvoicedQty {
			return apperror.NewReturnExceedsInvoiced(
				item.ProductID.String(), item.ReturnedQty().Int64(), item.InvoicedQty.Int64())
		}
	}

	return nil
}

// --- Postable interface implementation ---

func (r *SalesReturn) GetDocumentType() string { return "SalesReturn" }

// GenerateMovements splits each line into its pools: good quantities
// re-enter good stock, damaged quantities enter damaged stock only.
func (r *SalesReturn) GenerateMovements(ctx context.Context) (*posting.MovementSet, error) {
	movements := posting.NewMovementSet()
	newVersion := r.PostedVersion + 1

	for i := range r.Items {
		item := &r.Items[i]
		if item.GoodQty.IsPositive() {
			base := entity.NewMovementBase(r.ID, r.GetDocumentType(), newVersion, r.Date)
			movements.AddInventory(entity.NewSaleReturnGoodMovement(base, item.ProductID, item.GoodQty))
		}
		if item.DamagedQty.IsPositive() {
			base := entity.NewMovementBase(r.ID, r.GetDocumentType(), newVersion, r.Date)
			movements.AddInventory(entity.NewSaleReturnDamagedMovement(base, item.ProductID, item.DamagedQty))
		}
	}

	return movements, nil
}

var _ posting.Postable = (*SalesReturn)(nil)
