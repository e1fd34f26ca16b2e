package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/entity"
	"tradelink/internal/core/id"
	"tradelink/internal/domain/registers/inventory"
	"tradelink/internal/infrastructure/http/v1/dto"
)

// StockHandler exposes the inventory register over HTTP.
type StockHandler struct {
	*BaseHandler
	service *inventory.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *inventory.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetBalances handles GET /registers/inventory/balances
func (h *StockHandler) GetBalances(c *gin.Context) {
	ctx := c.Request.Context()

	filter := inventory.BalanceFilter{
		ExcludeZero: c.Query("excludeZero") == "true",
		Limit:       h.ParseIntQuery(c, "limit", 100),
		Offset:      h.ParseIntQuery(c, "offset", 0),
	}

	if v := c.Query("productIds"); v != "" {
		for _, raw := range strings.Split(v, ",") {
			parsed, err := id.Parse(strings.TrimSpace(raw))
			if err != nil {
				h.Error(c, apperror.NewValidation("invalid productIds format"))
				return
			}
			filter.ProductIDs = append(filter.ProductIDs, parsed)
		}
	}
	pool, ok := h.parsePoolQuery(c)
	if !ok {
		return
	}
	filter.Pool = pool

	balances, err := h.service.ListBalances(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StockBalanceListResponse{Items: balances})
}

// GetAvailability handles GET /registers/inventory/availability/:productId
// Reports both pools in one response.
func (h *StockHandler) GetAvailability(c *gin.Context) {
	ctx := c.Request.Context()

	productID, ok := h.ParseIDParam(c, "productId")
	if !ok {
		return
	}

	good, damaged, err := h.service.GetProductStock(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewProductStockResponse(productID, good.Int64(), damaged.Int64()))
}

// GetMovements handles GET /registers/inventory/movements?productId=...
func (h *StockHandler) GetMovements(c *gin.Context) {
	ctx := c.Request.Context()

	raw := c.Query("productId")
	if raw == "" {
		h.Error(c, apperror.NewValidation("query parameter 'productId' is required"))
		return
	}
	productID, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	filter := inventory.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	pool, ok := h.parsePoolQuery(c)
	if !ok {
		return
	}
	filter.Pool = pool

	if v := c.Query("movementType"); v != "" {
		mt := entity.MovementType(v)
		switch mt {
		case entity.MovementSale, entity.MovementSaleReturnGood,
			entity.MovementSaleReturnDamaged, entity.MovementDamageAdjustment:
			filter.MovementType = &mt
		default:
			h.Error(c, apperror.NewValidation("unknown movement type").WithDetail("movementType", v))
			return
		}
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

	movements, err := h.service.GetMovementHistory(ctx, productID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StockMovementListResponse{
		Items:      movements,
		TotalCount: len(movements),
	})
}

// GetTurnovers handles GET /registers/inventory/turnovers
// fromDate and toDate are required; pool defaults to good.
func (h *StockHandler) GetTurnovers(c *gin.Context) {
	ctx := c.Request.Context()

	fromDate, err := time.Parse(time.RFC3339, c.Query("fromDate"))
	if err != nil {
		h.Error(c, apperror.NewValidation("fromDate is required (RFC3339)"))
		return
	}
	toDate, err := time.Parse(time.RFC3339, c.Query("toDate"))
	if err != nil {
		h.Error(c, apperror.NewValidation("toDate is required (RFC3339)"))
		return
	}

	filter := inventory.TurnoverFilter{
		Pool:     entity.PoolGood,
		FromDate: fromDate,
		ToDate:   toDate,
	}
	pool, ok := h.parsePoolQuery(c)
	if !ok {
		return
	}
	if pool != nil {
		filter.Pool = *pool
	}
	if v := c.Query("productId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid productId format"))
			return
		}
		filter.ProductID = &parsed
	}

	turnover, err := h.service.GetTurnover(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, turnover)
}

// Recalculate handles POST /registers/inventory/recalculate
// Rebuilds cached balances from the movement rows. Without a productId
// query parameter it rebuilds every product.
func (h *StockHandler) Recalculate(c *gin.Context) {
	ctx := c.Request.Context()

	var productID *id.ID
	if v := c.Query("productId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid productId format"))
			return
		}
		productID = &parsed
	}

	if err := h.service.Recalculate(ctx, productID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "stock balances recalculated")
}

func (h *StockHandler) parsePoolQuery(c *gin.Context) (*entity.StockPool, bool) {
	v := c.Query("pool")
	if v == "" {
		return nil, true
	}
	pool := entity.StockPool(v)
	if pool != entity.PoolGood && pool != entity.PoolDamaged {
		h.Error(c, apperror.NewValidation("unknown stock pool").WithDetail("pool", v))
		return nil, false
	}
	return &pool, true
}
