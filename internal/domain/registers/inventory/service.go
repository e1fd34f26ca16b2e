// Package inventory provides the inventory register service.
package inventory

import (
	"context"
	"fmt"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/entity"
	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/pkg/logger"
)

// Service provides business operations for the inventory register.
// Transactions are managed by the caller (posting engine).
type Service struct {
	repo Repository
}

// NewService creates a new inventory register service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SaveMovements records inventory movements from a document posting.
// Called during posting within a transaction.
//
// A sale may transiently drive good stock negative (delivery van sells
// before the purchase bill is entered); this is logged, not rejected.
func (s *Service) SaveMovements(ctx context.Context, movements []entity.InventoryMovement) error {
	if len(movements) == 0 {
		return nil
	}

	for i := range movements {
		if id.IsNil(movements[i].RecorderID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: recorder_id is required", i))
		}
		if err := movements[i].Validate(); err != nil {
			return apperror.NewValidation(fmt.Sprintf("movement %d: %v", i, err))
		}
	}

	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	s.warnNegativeBalances(ctx, movements)

	logger.Info(ctx, "recorded inventory movements",
		"count", len(movements),
		"recorder_id", movements[0].RecorderID,
	)
	return nil
}

// warnNegativeBalances logs products whose good pool went negative.
func (s *Service) warnNegativeBalances(ctx context.Context, movements []entity.InventoryMovement) {
	seen := make(map[id.ID]bool)
	for i := range movements {
		m := &movements[i]
		if m.Pool != entity.PoolGood || !m.QtyDelta.IsNegative() || seen[m.ProductID] {
			continue
		}
		seen[m.ProductID] = true

		balance, err := s.repo.GetBalance(ctx, m.ProductID, entity.PoolGood)
		if err != nil {
			continue
		}
		if balance.Quantity.IsNegative() {
			logger.Warn(ctx, "good stock went negative",
				"product_id", m.ProductID,
				"balance", balance.Quantity.Int64(),
			)
		}
	}
}

// DeleteStaleMovements removes movements of older posting versions.
func (s *Service) DeleteStaleMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	if err := s.repo.DeleteMovementsByRecorder(ctx, recorderID, beforeVersion); err != nil {
		return fmt.Errorf("delete stale movements: %w", err)
	}
	return nil
}

// DeleteMovements removes all movements of a document (unposting).
func (s *Service) DeleteMovements(ctx context.Context, recorderID id.ID) error {
	if err := s.repo.DeleteMovementsByRecorder(ctx, recorderID, 0); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}

	logger.Info(ctx, "removed inventory movements", "recorder_id", recorderID)
	return nil
}

// GetGoodStock returns the resellable quantity of a product.
func (s *Service) GetGoodStock(ctx context.Context, productID id.ID) (types.Pieces, error) {
	balance, err := s.repo.GetBalance(ctx, productID, entity.PoolGood)
	if err != nil {
		if apperror.IsNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get good stock: %w", err)
	}
	return balance.Quantity, nil
}

// GetDamagedStock returns the damaged quantity of a product.
func (s *Service) GetDamagedStock(ctx context.Context, productID id.ID) (types.Pieces, error) {
	balance, err := s.repo.GetBalance(ctx, productID, entity.PoolDamaged)
	if err != nil {
		if apperror.IsNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get damaged stock: %w", err)
	}
	return balance.Quantity, nil
}

// GetProductStock returns both pools for a product.
func (s *Service) GetProductStock(ctx context.Context, productID id.ID) (good, damaged types.Pieces, err error) {
	balances, err := s.repo.GetBalancesByProduct(ctx, productID)
	if err != nil {
		return 0, 0, fmt.Errorf("get balances: %w", err)
	}
	for _, b := range balances {
		switch b.Pool {
		case entity.PoolGood:
			good = b.Quantity
		case entity.PoolDamaged:
			damaged = b.Quantity
		}
	}
	return good, damaged, nil
}

// ListBalances returns balances across products (stock report).
func (s *Service) ListBalances(ctx context.Context, f BalanceFilter) ([]entity.StockBalance, error) {
	return s.repo.ListBalances(ctx, f)
}

// GetMovementHistory returns the movement trail for a product.
func (s *Service) GetMovementHistory(ctx context.Context, productID id.ID, f MovementFilter) ([]entity.InventoryMovement, error) {
	return s.repo.GetMovementHistory(ctx, productID, f)
}

// GetTurnover generates a turnover report for the period.
func (s *Service) GetTurnover(ctx context.Context, f TurnoverFilter) (Turnover, error) {
	return s.repo.GetTurnover(ctx, f)
}

// Recalculate rebuilds cached balances from the movement ledger.
func (s *Service) Recalculate(ctx context.Context, productID *id.ID) error {
	if err := s.repo.RecalculateBalances(ctx, productID); err != nil {
		return fmt.Errorf("recalculate balances: %w", err)
	}

	logger.Info(ctx, "recalculated inventory balances")
	return nil
}
