package company

import (
	"context"
	"fmt"
	"time"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/tx"
	"tradelink/internal/domain"
	"tradelink/pkg/numerator"
)

// Service provides business logic for the Company catalog.
type Service struct {
	*domain.CatalogService[*Company]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Company service.
func NewService(repo Repository, txManager tx.Manager, num *numerator.Service) *Service {
	base := domain.NewCatalogService(repo, txManager, "company")

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)
	base.Hooks().On(domain.BeforeUpdate, svc.checkCodeUnique)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, c *Company) error {
	if c.Code == "" {
		cfg := numerator.DefaultConfig("CO")
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

func (s *Service) checkCodeUnique(ctx context.Context, c *Company) error {
	existing, err := s.repo.GetByCode(ctx, c.Code)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != c.ID {
		return apperror.NewConflict("company with this code already exists").
			WithDetail("code", c.Code)
	}
	return nil
}
