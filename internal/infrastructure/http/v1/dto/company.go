package dto

import (
	"tradelink/internal/domain/catalogs/company"
)

// CreateCompanyRequest for creating supplier brands.
type CreateCompanyRequest struct {
	Code          string  `json:"code"`
	Name          string  `json:"name" binding:"required"`
	ContactPerson *string `json:"contactPerson"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
}

// ToEntity maps the request to a new Company.
func (r CreateCompanyRequest) ToEntity() *company.Company {
	c := company.New(r.Code, r.Name)
	c.ContactPerson = r.ContactPerson
	c.Phone = r.Phone
	c.Address = r.Address
	return c
}

// UpdateCompanyRequest for updating supplier brands.
type UpdateCompanyRequest struct {
	Code          *string `json:"code"`
	Name          *string `json:"name"`
	ContactPerson *string `json:"contactPerson"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	IsActive      *bool   `json:"isActive"`
	Version       int     `json:"version" binding:"required,min=1"`
}

// ApplyTo merges the request onto an existing Company.
// Version is the client's known version for optimistic locking.
func (r UpdateCompanyRequest) ApplyTo(c *company.Company) {
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
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
	c.Version = r.Version
}
