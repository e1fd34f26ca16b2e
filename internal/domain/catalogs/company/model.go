// Package company provides the Company catalog.
// A company is a brand/supplier whose products the distributor carries;
// every product belongs to exactly one company.
package company

import (
	"context"

	"tradelink/internal/core/entity"
)

// Company represents a supplier brand.
type Company struct {
	entity.Catalog

	// ContactPerson is the supplier-side representative
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`

	// Phone of the contact person
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Address of the supplier office
	Address *string `db:"address" json:"address,omitempty"`
}

// New creates a new Company.
func New(code, name string) *Company {
	return &Company{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements Validatable interface.
func (c *Company) Validate(ctx context.Context) error {
	return c.Catalog.Validate(ctx)
}
