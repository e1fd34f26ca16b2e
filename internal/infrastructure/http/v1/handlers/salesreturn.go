package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/id"
	"tradelink/internal/domain/documents/salesreturn"
	"tradelink/internal/infrastructure/http/v1/dto"
)

// SalesReturnHandler handles HTTP requests for sales returns.
type SalesReturnHandler struct {
	*BaseHandler
	service *salesreturn.Service
}

// NewSalesReturnHandler creates a new sales return handler.
func NewSalesReturnHandler(base *BaseHandler, service *salesreturn.Service) *SalesReturnHandler {
	return &SalesReturnHandler{
		BaseHandler: base,
		service:     service,
	}
}

// RegisterFull handles POST /documents/sales-returns/full
// Returns every not-yet-returned piece of the order; a damage or expiry
// reason routes the stock to the damaged pool.
func (h *SalesReturnHandler) RegisterFull(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.FullReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ret, err := h.service.RegisterFull(ctx, req.OrderID, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, ret)
}

// RegisterPartial handles POST /documents/sales-returns/partial
func (h *SalesReturnHandler) RegisterPartial(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.PartialReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ret, err := h.service.RegisterPartial(ctx, req.OrderID, req.Reason, req.ToSpecs())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, ret)
}

// Get handles GET /documents/sales-returns/:id
func (h *SalesReturnHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	returnID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	ret, err := h.service.GetByID(ctx, returnID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ret)
}

// ListByOrder handles GET /documents/sales-returns/by-order/:orderId
func (h *SalesReturnHandler) ListByOrder(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, ok := h.ParseIDParam(c, "orderId")
	if !ok {
		return
	}

	returns, err := h.service.ListByOrder(ctx, orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      returns,
		TotalCount: int64(len(returns)),
	})
}

// List handles GET /documents/sales-returns
func (h *SalesReturnHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	base, ok := h.ParseListFilter(c)
	if !ok {
		return
	}
	base.OrderBy = c.DefaultQuery("orderBy", "date DESC")
	filter := salesreturn.ListFilter{ListFilter: base}

	if v := c.Query("orderId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid orderId format"))
			return
		}
		filter.OrderID = &parsed
	}
	if v := c.Query("customerId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid customerId format"))
			return
		}
		filter.CustomerID = &parsed
	}
	if v := c.Query("type"); v != "" {
		rt := salesreturn.ReturnType(v)
		if rt != salesreturn.TypeFull && rt != salesreturn.TypePartial {
			h.Error(c, apperror.NewValidation("unknown return type").WithDetail("type", v))
			return
		}
		filter.Type = &rt
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
