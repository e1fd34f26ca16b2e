package salesreturn

import (
	"context"
	"fmt"
	"time"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/internal/domain"
	"tradelink/internal/domain/documents/damage"
	"tradelink/internal/domain/documents/order"
	"tradelink/internal/domain/posting"
	"tradelink/pkg/logger"
	"tradelink/pkg/numerator"
)

// NumberPrefix is the sales return number series.
const NumberPrefix = "SR"

// OrderStore loads and updates the referenced order.
type OrderStore interface {
	GetByID(ctx context.Context, id id.ID) (*order.Order, error)
	Update(ctx context.Context, doc *order.Order) error
	GetItems(ctx context.Context, orderID id.ID) ([]order.Item, error)
}

// CustomerStore releases the customer's outstanding balance.
type CustomerStore interface {
	AdjustOutstanding(ctx context.Context, id id.ID, delta types.Money) error
}

// DamageRecorder writes damage log entries for damaged lines.
type DamageRecorder interface {
	RecordReturnDamage(ctx context.Context, returnID id.ID, productID id.ID, productName string, qty types.Pieces, reason string) (*damage.Log, error)
}

// Service provides business operations for sales returns.
type Service struct {
	repo          Repository
	orders        OrderStore
	customers     CustomerStore
	damageLog     DamageRecorder
	postingEngine *posting.Engine
	numerator     *numerator.Service
}

// NewService creates a new sales return service.
func NewService(
	repo Repository,
	orders OrderStore,
	customers CustomerStore,
	damageLog DamageRecorder,
	postingEngine *posting.Engine,
	num *numerator.Service,
) *Service {
	return &Service{
		repo:          repo,
		orders:        orders,
		customers:     customers,
		damageLog:     damageLog,
		postingEngine: postingEngine,
		numerator:     num,
	}
}

// RegisterFull returns every not-yet-returned piece of the order.
// A damage/expiry reason routes the stock to the damaged pool.
func (s *Service) RegisterFull(ctx context.Context, orderID id.ID, reason string) (*SalesReturn, error) {
	o, returned, err := s.loadOrderForReturn(ctx, orderID)
	if err != nil {
		return nil, err
	}

	ret, err := BuildFull(o, reason, returned)
	if err != nil {
		return nil, err
	}

	return s.register(ctx, ret, o, returned)
}

// RegisterPartial returns the requested quantities.
func (s *Service) RegisterPartial(ctx context.Context, orderID id.ID, reason string, specs []LineSpec) (*SalesReturn, error) {
	o, returned, err := s.loadOrderForReturn(ctx, orderID)
	if err != nil {
		return nil, err
	}

	ret, err := BuildPartial(o, reason, specs, returned)
	if err != nil {
		return nil, err
	}

	return s.register(ctx, ret, o, returned)
}

func (s *Service) loadOrderForReturn(ctx context.Context, orderID id.ID) (*order.Order, map[id.ID]types.Pieces, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.orders.GetItems(ctx, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("get order items: %w", err)
	}
	o.Items = items

	if !o.IsReturnable() {
		return nil, nil, apperror.NewBusinessRule(
			apperror.CodeInvalidStatusChange,
			fmt.Sprintf("Returns are only accepted for approved, dispatched or delivered orders (status is %s)", o.Status),
		).WithDetail("order_id", o.ID.String())
	}

	returned, err := s.repo.GetReturnedQuantities(ctx, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("get returned quantities: %w", err)
	}
	return o, returned, nil
}

// register numbers and posts the return: movements, damage logs, order
// status, and the customer's balance change in one transaction.
func (s *Service) register(ctx context.Context, ret *SalesReturn, o *order.Order, returned map[id.ID]types.Pieces) (*SalesReturn, error) {
	if err := ret.Validate(ctx); err != nil {
		return nil, err
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix), nil, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}
	ret.Number = number

	target := s.targetStatus(o, ret, returned)

	updateDoc := func(ctx context.Context) error {
		if err := s.repo.Create(ctx, ret); err != nil {
			return err
		}
		if err := s.repo.SaveItems(ctx, ret.ID, ret.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}

		for i := range ret.Items {
			item := &ret.Items[i]
			if !item.DamagedQty.IsPositive() {
				continue
			}
			if _, err := s.damageLog.RecordReturnDamage(ctx, ret.ID, item.ProductID, item.ProductName, item.DamagedQty, ret.Reason); err != nil {
				return fmt.Errorf("record damage log: %w", err)
			}
		}

		if err := o.ChangeStatus(ctx, target); err != nil {
			return err
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		return s.customers.AdjustOutstanding(ctx, ret.CustomerID, ret.TotalAmount.Neg())
	}

	if err := s.postingEngine.Post(ctx, ret, updateDoc); err != nil {
		return nil, err
	}

	logger.Info(ctx, "sales return registered",
		"id", ret.ID,
		"number", ret.Number,
		"order_id", ret.OrderID,
		"type", ret.Type,
		"total", ret.TotalAmount,
	)
	return ret, nil
}

// targetStatus decides between returned and partially_returned: the
// order is fully returned once every line's cumulative returns reach
// the invoiced quantity.
func (s *Service) targetStatus(o *order.Order, ret *SalesReturn, returned map[id.ID]types.Pieces) order.Status {
	thisReturn := ret.ReturnedByProduct()
	for i := range o.Items {
		line := &o.Items[i]
		if returned[line.ProductID]+thisReturn[line.ProductID] < line.Qty {
			return order.StatusPartiallyReturned
		}
	}
	return order.StatusReturned
}

// GetByID retrieves a return with items.
func (s *Service) GetByID(ctx context.Context, retID id.ID) (*SalesReturn, error) {
	ret, err := s.repo.GetByID(ctx, retID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, retID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	ret.Items = items
	return ret, nil
}

// ListByOrder retrieves all returns of one order.
func (s *Service) ListByOrder(ctx context.Context, orderID id.ID) ([]*SalesReturn, error) {
	return s.repo.ListByOrder(ctx, orderID)
}

// List retrieves returns with filtering.
func (s *Service) List(ctx context.Context, f ListFilter) (domain.ListResult[*SalesReturn], error) {
	return s.repo.List(ctx, f)
}
