package product

import (
	"context"
	"fmt"
	"time"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/id"
	"tradelink/internal/core/tx"
	"tradelink/internal/domain"
	"tradelink/pkg/numerator"
)

// CompanyChecker verifies that a referenced company exists.
type CompanyChecker interface {
	Exists(ctx context.Context, id id.ID) (bool, error)
}

// Service provides business logic for the Product catalog.
type Service struct {
	*domain.CatalogService[*Product]
	repo      Repository
	companies CompanyChecker
	numerator *numerator.Service
}

// NewService creates a new Product service.
func NewService(repo Repository, companies CompanyChecker, txManager tx.Manager, num *numerator.Service) *Service {
	base := domain.NewCatalogService(repo, txManager, "product")

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		companies:      companies,
		numerator:      num,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)
	base.Hooks().On(domain.BeforeUpdate, svc.checkReferences)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, p *Product) error {
	if p.Code == "" {
		cfg := numerator.DefaultConfig("PRD")
		cfg.IncludeYear = false
		cfg.ResetPeriod = "never"
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		p.Code = code
	}

	exists, err := s.repo.ExistsByCode(ctx, p.Code)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewConflict("product with this code already exists").
			WithDetail("code", p.Code)
	}

	return s.checkReferences(ctx, p)
}

func (s *Service) checkReferences(ctx context.Context, p *Product) error {
	exists, err := s.companies.Exists(ctx, p.CompanyID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NewNotFound("company", p.CompanyID.String())
	}
	return nil
}

// ListByCompany retrieves products of one supplier brand.
func (s *Service) ListByCompany(ctx context.Context, companyID id.ID, f domain.ListFilter) (domain.ListResult[*Product], error) {
	return s.repo.ListByCompany(ctx, companyID, f)
}

// GetMany retrieves products by IDs in one round trip.
func (s *Service) GetMany(ctx context.Context, ids []id.ID) (map[id.ID]*Product, error) {
	return s.repo.GetMany(ctx, ids)
}

// SetStockOut flips the stock-out flag.
func (s *Service) SetStockOut(ctx context.Context, productID id.ID, stockOut bool) error {
	if _, err := s.GetByID(ctx, productID); err != nil {
		return err
	}
	return s.repo.SetStockOut(ctx, productID, stockOut)
}
