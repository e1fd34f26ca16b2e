package order

import (
	"context"
	"fmt"
	"time"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/id"
	"tradelink/internal/core/security"
	"tradelink/internal/core/types"
	"tradelink/internal/domain"
	"tradelink/internal/domain/catalogs/customer"
	"tradelink/internal/domain/catalogs/product"
	"tradelink/internal/domain/posting"
	"tradelink/pkg/logger"
	"tradelink/pkg/numerator"
)

// NumberPrefix is the invoice number series.
const NumberPrefix = "INV"

// ProductStore resolves order line products.
type ProductStore interface {
	GetMany(ctx context.Context, ids []id.ID) (map[id.ID]*product.Product, error)
}

// CustomerStore resolves customers and maintains their balance.
type CustomerStore interface {
	GetByID(ctx context.Context, id id.ID) (*customer.Customer, error)
	AdjustOutstanding(ctx context.Context, id id.ID, delta types.Money) error
}

// Service provides business operations for sales orders.
type Service struct {
	repo          Repository
	products      ProductStore
	customers     CustomerStore
	postingEngine *posting.Engine
	numerator     *numerator.Service

	// acceptRule is the optional credit/acceptance policy; nil accepts all
	acceptRule *security.OrderRule
}

// NewService creates a new order service.
func NewService(
	repo Repository,
	products ProductStore,
	customers CustomerStore,
	postingEngine *posting.Engine,
	num *numerator.Service,
	acceptRule *security.OrderRule,
) *Service {
	return &Service{
		repo:          repo,
		products:      products,
		customers:     customers,
		postingEngine: postingEngine,
		numerator:     num,
		acceptRule:    acceptRule,
	}
}

// Place validates, numbers, and posts a captured order in one step.
// All quantity rule violations are collected and reported together.
// On success the sale movements are in the ledger and the customer's
// outstanding balance includes the order total.
func (s *Service) Place(ctx context.Context, doc *Order) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	products, err := s.loadProducts(ctx, doc)
	if err != nil {
		return err
	}
	if err := s.checkCompanyPolicy(doc, products); err != nil {
		return err
	}

	if violations := doc.CheckQuantityRules(products); len(violations) > 0 {
		return apperror.NewOrderRejected(violations)
	}

	cust, err := s.customers.GetByID(ctx, doc.CustomerID)
	if err != nil {
		return err
	}
	if err := s.checkAcceptRule(doc, cust); err != nil {
		return err
	}

	if doc.Number == "" {
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	isNew := doc.Version == 1
	updateDoc := func(ctx context.Context) error {
		if isNew {
			if err := s.repo.Create(ctx, doc); err != nil {
				return err
			}
		} else {
			if err := s.repo.Update(ctx, doc); err != nil {
				return err
			}
		}
		if err := s.repo.SaveItems(ctx, doc.ID, doc.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}
		return s.customers.AdjustOutstanding(ctx, doc.CustomerID, doc.TotalAmount)
	}

	if err := s.postingEngine.Post(ctx, doc, updateDoc); err != nil {
		return err
	}

	logger.Info(ctx, "order placed",
		"id", doc.ID,
		"number", doc.Number,
		"customer_id", doc.CustomerID,
		"total", doc.TotalAmount,
	)
	return nil
}

func (s *Service) loadProducts(ctx context.Context, doc *Order) (map[id.ID]*product.Product, error) {
	ids := make([]id.ID, 0, len(doc.Items))
	for i := range doc.Items {
		ids = append(ids, doc.Items[i].ProductID)
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return products, nil
}

// checkCompanyPolicy enforces one company per invoice and pins the
// order's company from its lines.
func (s *Service) checkCompanyPolicy(doc *Order, products map[id.ID]*product.Product) error {
	for i := range doc.Items {
		p, ok := products[doc.Items[i].ProductID]
		if !ok {
			return apperror.NewNotFound("product", doc.Items[i].ProductID.String())
		}
		if id.IsNil(doc.CompanyID) {
			doc.CompanyID = p.CompanyID
			continue
		}
		if doc.CompanyID != p.CompanyID {
			return apperror.NewCompanyMismatch(doc.CompanyID.String(), p.CompanyID.String())
		}
	}
	return nil
}

func (s *Service) checkAcceptRule(doc *Order, cust *customer.Customer) error {
	allowed, err := s.acceptRule.Allow(security.OrderRuleInput{
		OrderTotal:          doc.TotalAmount.InexactFloat64(),
		TotalItems:          int64(len(doc.Items)),
		CustomerOutstanding: cust.Outstanding.InexactFloat64(),
		CreditLimit:         cust.CreditLimit.InexactFloat64(),
		CreditDays:          int64(cust.CreditDays),
	})
	if err != nil {
		return apperror.NewInternal(err).WithDetail("rule", s.acceptRule.Expression())
	}
	if !allowed {
		return apperror.NewOrderRejected([]string{
			fmt.Sprintf("order rejected by acceptance policy for customer %s", cust.Name),
		})
	}
	return nil
}

// GetByID retrieves an order with items.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Order, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.GetItems(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	doc.Items = items
	return doc, nil
}

// List retrieves orders with filtering.
func (s *Service) List(ctx context.Context, f ListFilter) (domain.ListResult[*Order], error) {
	return s.repo.List(ctx, f)
}

// ChangeStatus moves the order through its lifecycle.
// Cancelling a posted order also removes its ledger movements and
// releases the customer's outstanding balance.
func (s *Service) ChangeStatus(ctx context.Context, docID id.ID, target Status) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	prev := doc.Status
	if err := doc.ChangeStatus(ctx, target); err != nil {
		return err
	}

	if target == StatusCancelled && doc.IsPosted() {
		err = s.postingEngine.Unpost(ctx, doc, func(ctx context.Context) error {
			if err := s.repo.Update(ctx, doc); err != nil {
				return err
			}
			return s.customers.AdjustOutstanding(ctx, doc.CustomerID, doc.TotalAmount.Neg())
		})
	} else {
		err = s.repo.Update(ctx, doc)
	}
	if err != nil {
		return err
	}

	logger.Info(ctx, "order status changed",
		"id", doc.ID,
		"from", prev,
		"to", doc.Status,
	)
	return nil
}

// Delete soft-deletes an unposted order.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if err := doc.CanModify(); err != nil {
		return err
	}
	return s.repo.Delete(ctx, docID)
}
