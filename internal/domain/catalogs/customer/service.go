package customer

import (
	"context"
	"fmt"
	"time"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/id"
	"tradelink/internal/core/tx"
	"tradelink/internal/core/types"
	"tradelink/internal/domain"
	"tradelink/pkg/numerator"
)

// Service provides business logic for the Customer catalog.
type Service struct {
	*domain.CatalogService[*Customer]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Customer service.
func NewService(repo Repository, txManager tx.Manager, num *numerator.Service) *Service {
	base := domain.NewCatalogService(repo, txManager, "customer")

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)
	base.Hooks().On(domain.BeforeUpdate, svc.checkCodeUnique)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, c *Customer) error {
	if c.Code == "" {
		cfg := numerator.DefaultConfig("CU")
		cfg.IncludeYear = false
		cfg.ResetPeriod = "never"
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		c.Code = code
	}
	return s.checkCodeUnique(ctx, c)
}

func (s *Service) checkCodeUnique(ctx context.Context, c *Customer) error {
	existing, err := s.repo.GetByCode(ctx, c.Code)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != c.ID {
		return apperror.NewConflict("customer with this code already exists").
			WithDetail("code", c.Code)
	}
	return nil
}

// AdjustOutstanding shifts the customer's unpaid balance.
// Positive delta on invoicing, negative on payment or return.
func (s *Service) AdjustOutstanding(ctx context.Context, customerID id.ID, delta types.Money) error {
	if delta.IsZero() {
		return nil
	}
	return s.repo.AdjustOutstanding(ctx, customerID, delta)
}
