package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/internal/domain/catalogs/product"
	"tradelink/internal/domain/documents/damage"
	"tradelink/internal/infrastructure/http/v1/dto"
)

// DamageHandler handles HTTP requests for damage logs.
type DamageHandler struct {
	*BaseHandler
	service  *damage.Service
	products *product.Service
}

// NewDamageHandler creates a new damage log handler.
func NewDamageHandler(base *BaseHandler, service *damage.Service, products *product.Service) *DamageHandler {
	return &DamageHandler{
		BaseHandler: base,
		service:     service,
		products:    products,
	}
}

// Log handles POST /documents/damage-logs
// Records damage found in the warehouse, outside any sales return.
func (h *DamageHandler) Log(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LogDamageRequest
	if !h.BindJSON(c, &req) {
		return
	}

	products, err := h.products.GetMany(ctx, []id.ID{req.ProductID})
	if err != nil {
		h.Error(c, err)
		return
	}
	p, ok := products[req.ProductID]
	if !ok {
		h.Error(c, apperror.NewNotFound("product", req.ProductID.String()))
		return
	}

	log, err := h.service.LogInternal(ctx, p.ID, p.Name, types.Pieces(req.Qty), req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, log)
}

// Get handles GET /documents/damage-logs/:id
func (h *DamageHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	logID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	log, err := h.service.GetByID(ctx, logID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, log)
}

// ListByReturn handles GET /documents/damage-logs/by-return/:returnId
func (h *DamageHandler) ListByReturn(c *gin.Context) {
	ctx := c.Request.Context()

	returnID, ok := h.ParseIDParam(c, "returnId")
	if !ok {
		return
	}

	logs, err := h.service.ListByReturn(ctx, returnID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      logs,
		TotalCount: int64(len(logs)),
	})
}

// List handles GET /documents/damage-logs
func (h *DamageHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	base, ok := h.ParseListFilter(c)
	if !ok {
		return
	}
	base.OrderBy = c.DefaultQuery("orderBy", "date DESC")
	filter := damage.ListFilter{ListFilter: base}

	if v := c.Query("productId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid productId format"))
			return
		}
		filter.ProductID = &parsed
	}
	if v := c.Query("sourceType"); v != "" {
		st := damage.SourceType(v)
		if st != damage.SourceSaleReturn && st != damage.SourceInternal {
			h.Error(c, apperror.NewValidation("unknown source type").WithDetail("sourceType", v))
			return
		}
		filter.SourceType = &st
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
