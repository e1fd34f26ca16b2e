package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/internal/domain/catalogs/product"
	"tradelink/internal/domain/documents/order"
	"tradelink/internal/infrastructure/http/v1/dto"
)

// OrderHandler handles HTTP requests for sales orders.
type OrderHandler struct {
	*BaseHandler
	service  *order.Service
	products *product.Service
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(base *BaseHandler, service *order.Service, products *product.Service) *OrderHandler {
	return &OrderHandler{
		BaseHandler: base,
		service:     service,
		products:    products,
	}
}

// Place handles POST /documents/orders
// Prices the lines, validates quantity rules, and posts in one step.
func (h *OrderHandler) Place(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.PlaceOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.buildOrder(c, req)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Place(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// buildOrder prices the requested lines from the product catalog.
func (h *OrderHandler) buildOrder(c *gin.Context, req dto.PlaceOrderRequest) (*order.Order, error) {
	ctx := c.Request.Context()

	ids := make([]id.ID, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := h.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	doc := order.New(req.CustomerID)
	if req.Date != nil {
		doc.Date = *req.Date
	}
	doc.Comment = req.Comment

	for _, item := range req.Items {
		p, ok := products[item.ProductID]
		if !ok {
			return nil, apperror.NewNotFound("product", item.ProductID.String())
		}

		if item.Rate != nil {
			err = doc.AddLineWithRate(p, types.Pieces(item.Qty), *item.Rate)
		} else {
			err = doc.AddLine(p, types.Pieces(item.Qty))
		}
		if err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// Get handles GET /documents/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(ctx, orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// List handles GET /documents/orders
func (h *OrderHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	base, ok := h.ParseListFilter(c)
	if !ok {
		return
	}
	base.OrderBy = c.DefaultQuery("orderBy", "date DESC")
	filter := order.ListFilter{ListFilter: base}

	if v := c.Query("customerId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid customerId format"))
			return
		}
		filter.CustomerID = &parsed
	}
	if v := c.Query("companyId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid companyId format"))
			return
		}
		filter.CompanyID = &parsed
	}
	if v := c.Query("status"); v != "" {
		status := order.Status(v)
		if !order.ValidStatus(status) {
			h.Error(c, apperror.NewValidation("unknown order status").WithDetail("status", v))
			return
		}
		filter.Status = &status
	}
	if v := c.Query("fromDate"); v != "" {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			filter.FromDate = &parsed
		}
	}
	if v := c.Query("toDate"); v != "" {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			filter.ToDate = &parsed
		}
	}
	filter.PostedOnly = c.Query("postedOnly") == "true"

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// ChangeStatus handles POST /documents/orders/:id/status
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ChangeOrderStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	target := order.Status(req.Status)
	if !order.ValidStatus(target) {
		h.Error(c, apperror.NewValidation("unknown order status").WithDetail("status", req.Status))
		return
	}

	if err := h.service.ChangeStatus(ctx, orderID, target); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "order status updated")
}

// Delete handles DELETE /documents/orders/:id
func (h *OrderHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, orderID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
