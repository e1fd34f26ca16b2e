package purchase

import (
	"context"
	"fmt"
	"time"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/id"
	"tradelink/internal/core/tx"
	"tradelink/internal/domain"
	"tradelink/pkg/logger"
	"tradelink/pkg/numerator"
)

// NumberPrefix is the purchase bill number series.
const NumberPrefix = "PR"

// Service provides business operations for purchase bills.
type Service struct {
	repo      Repository
	txManager tx.Manager
	numerator *numerator.Service
}

// NewService creates a new purchase bill service.
func NewService(repo Repository, txManager tx.Manager, num *numerator.Service) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		numerator: num,
	}
}

// Save numbers the bill, recomputes its totals server-side, and stores
// it with its lines. Client-supplied totals are ignored.
func (s *Service) Save(ctx context.Context, bill *Bill) error {
	if err := bill.Validate(ctx); err != nil {
		return err
	}
	bill.Recalc()

	if bill.Number == "" {
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		bill.Number = number
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, bill); err != nil {
			return fmt.Errorf("create bill: %w", err)
		}
		if err := s.repo.SaveLines(ctx, bill.ID, bill.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "purchase bill saved",
		"id", bill.ID,
		"number", bill.Number,
		"company_id", bill.CompanyID,
		"net", bill.NetAmount,
	)
	return nil
}

// Amend stores a correcting bill. The original bill is never modified;
// the new bill references it and gets its own number.
func (s *Service) Amend(ctx context.Context, originalID id.ID, amended *Bill) error {
	original, err := s.repo.GetByID(ctx, originalID)
	if err != nil {
		return err
	}

	if amended.CompanyID != original.CompanyID {
		return apperror.NewValidation("amendment must keep the original supplier").
			WithDetail("original_company", original.CompanyID.String()).
			WithDetail("amended_company", amended.CompanyID.String())
	}

	ref := original.ID
	amended.AmendsBillID = &ref
	amended.Number = "" // amendments get a fresh number

	if err := s.Save(ctx, amended); err != nil {
		return err
	}

	logger.Info(ctx, "purchase bill amended",
		"original_id", original.ID,
		"original_number", original.Number,
		"amended_id", amended.ID,
		"amended_number", amended.Number,
	)
	return nil
}

// GetByID retrieves a bill with lines.
func (s *Service) GetByID(ctx context.Context, billID id.ID) (*Bill, error) {
	bill, err := s.repo.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.GetLines(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	bill.Lines = lines
	return bill, nil
}

// GetAmendments retrieves the correction chain of a bill.
func (s *Service) GetAmendments(ctx context.Context, billID id.ID) ([]*Bill, error) {
	return s.repo.GetAmendments(ctx, billID)
}

// List retrieves bills with filtering.
func (s *Service) List(ctx context.Context, f ListFilter) (domain.ListResult[*Bill], error) {
	return s.repo.List(ctx, f)
}

// Search performs full-text search over bills.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*Bill, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.Search(ctx, query, limit)
}
