// Package customer provides the Customer catalog.
// Customers are retail outlets served by the distributor; orders and
// sales returns reference a customer.
package customer

import (
	"context"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/entity"
	"tradelink/internal/core/types"
)

// Customer represents a retail outlet.
type Customer struct {
	entity.Catalog

	// ContactPerson at the outlet
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`

	// Phone of the outlet
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Address of the outlet
	Address *string `db:"address" json:"address,omitempty"`

	// GSTNumber is the outlet's tax registration (optional)
	GSTNumber *string `db:"gst_number" json:"gstNumber,omitempty"`

	// CreditLimit caps the outstanding amount. Zero means no limit.
	CreditLimit types.Money `db:"credit_limit" json:"creditLimit"`

	// CreditDays is the payment term in days
	CreditDays int `db:"credit_days" json:"creditDays"`

	// Outstanding is the current unpaid balance.
	// Maintained by invoicing/payment flows, read by credit checks.
	Outstanding types.Money `db:"outstanding" json:"outstanding"`
}

// New creates a new Customer.
func New(code, name string) *Customer {
	return &Customer{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements Validatable interface.
func (c *Customer) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if c.CreditLimit.IsNegative() {
		return apperror.NewValidation("credit limit must not be negative").
			WithDetail("field", "creditLimit")
	}
	if c.CreditDays < 0 {
		return apperror.NewValidation("credit days must not be negative").
			WithDetail("field", "creditDays")
	}

	return nil
}
