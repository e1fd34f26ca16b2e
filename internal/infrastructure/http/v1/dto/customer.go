package dto

import (
	"github.com/shopspring/decimal"

	"tradelink/internal/domain/catalogs/customer"
)

// CreateCustomerRequest for creating retail outlets.
type CreateCustomerRequest struct {
	Code          string           `json:"code"`
	Name          string           `json:"name" binding:"required"`
	ContactPerson *string          `json:"contactPerson"`
	Phone         *string          `json:"phone"`
	Address       *string          `json:"address"`
	GSTNumber     *string          `json:"gstNumber"`
	CreditLimit   *decimal.Decimal `json:"creditLimit"`
	CreditDays    int              `json:"creditDays"`
}

// ToEntity maps the request to a new Customer.
func (r CreateCustomerRequest) ToEntity() *customer.Customer {
	c := customer.New(r.Code, r.Name)
	c.ContactPerson = r.ContactPerson
	c.Phone = r.Phone
	c.Address = r.Address
	c.GSTNumber = r.GSTNumber
	if r.CreditLimit != nil {
		c.CreditLimit = *r.CreditLimit
	}
	c.CreditDays = r.CreditDays
	return c
}

// UpdateCustomerRequest for updating retail outlets.
type UpdateCustomerRequest struct {
	Code          *string          `json:"code"`
	Name          *string          `json:"name"`
	ContactPerson *string          `json:"contactPerson"`
	Phone         *string          `json:"phone"`
	Address       *string          `json:"address"`
	GSTNumber     *string          `json:"gstNumber"`
	CreditLimit   *decimal.Decimal `json:"creditLimit"`
	CreditDays    *int             `json:"creditDays"`
	IsActive      *bool            `json:"isActive"`
	Version       int              `json:"version" binding:"required,min=1"`
}

// ApplyTo merges the request onto an existing Customer.
// Outstanding is never writable through the API; it is maintained by
// invoicing and return flows.
func (r UpdateCustomerRequest) ApplyTo(c *customer.Customer) {
	if r.Code != nil {
		c.Code = *r.Code
	}
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.ContactPerson != nil {
		c.ContactPerson = r.ContactPerson
	}
	if r.Phone != nil {
		c.Phone = r.Phone
	}
	if r.Address != nil {
		c.Address = r.Address
	}
	if r.GSTNumber != nil {
		c.GSTNumber = r.GSTNumber
	}
	if r.CreditLimit != nil {
		c.CreditLimit = *r.CreditLimit
	}
	if r.CreditDays != nil {
		c.CreditDays = *r.CreditDays
	}
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
	c.Version = r.Version
}
