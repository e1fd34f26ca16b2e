package damage

import (
	"context"
	"fmt"
	"time"

	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/internal/domain"
	"tradelink/internal/domain/posting"
	"tradelink/pkg/logger"
	"tradelink/pkg/numerator"
)

// NumberPrefix is the damage log number series.
const NumberPrefix = "DG"

// Service provides business operations for the damaged goods log.
type Service struct {
	repo          Repository
	postingEngine *posting.Engine
	numerator     *numerator.Service
}

// NewService creates a new damage log service.
func NewService(repo Repository, postingEngine *posting.Engine, num *numerator.Service) *Service {
	return &Service{
		repo:          repo,
		postingEngine: postingEngine,
		numerator:     num,
	}
}

// LogInternal records warehouse damage and moves the stock from the
// good pool to the damaged pool atomically.
func (s *Service) LogInternal(ctx context.Context, productID id.ID, productName string, qty types.Pieces, reason string) (*Log, error) {
	log := NewInternal(productID, productName, qty, reason)
	if err := log.Validate(ctx); err != nil {
		return nil, err
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix), nil, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}
	log.Number = number

	err = s.postingEngine.Post(ctx, log, func(ctx context.Context) error {
		return s.repo.Create(ctx, log)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "internal damage logged",
		"id", log.ID,
		"number", log.Number,
		"product_id", productID,
		"qty", qty.Int64(),
	)
	return log, nil
}

// RecordReturnDamage records a damaged line of a sales return.
// No movements here: the return document owns them. Must be called
// inside the return's posting transaction.
func (s *Service) RecordReturnDamage(ctx context.Context, returnID id.ID, productID id.ID, productName string, qty types.Pieces, reason string) (*Log, error) {
	log := NewFromReturn(returnID, productID, productName, qty, reason)
	if err := log.Validate(ctx); err != nil {
		return nil, err
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix), nil, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}
	log.Number = number

	if err := s.repo.Create(ctx, log); err != nil {
		return nil, fmt.Errorf("create damage log: %w", err)
	}
	return log, nil
}

// GetByID retrieves a log entry.
func (s *Service) GetByID(ctx context.Context, logID id.ID) (*Log, error) {
	return s.repo.GetByID(ctx, logID)
}

// ListByReturn retrieves the damage entries of one sales return.
func (s *Service) ListByReturn(ctx context.Context, returnID id.ID) ([]*Log, error) {
	return s.repo.ListBySource(ctx, returnID)
}

// List retrieves entries with filtering.
func (s *Service) List(ctx context.Context, f ListFilter) (domain.ListResult[*Log], error) {
	return s.repo.List(ctx, f)
}
