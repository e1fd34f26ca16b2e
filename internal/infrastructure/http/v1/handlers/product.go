package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradelink/internal/domain/catalogs/product"
	"tradelink/internal/infrastructure/http/v1/dto"
)

// ProductCatalogHandler is the configured generic handler for products.
type ProductCatalogHandler = CatalogHandler[
	*product.Product,
	dto.CreateProductRequest,
	dto.UpdateProductRequest,
]

// ProductHandler extends the generic catalog handler with product
// specific operations: per-company listing and the stock-out flag.
type ProductHandler struct {
	*ProductCatalogHandler
	service *product.Service
}

// NewProductHandler wires the product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	config := CatalogHandlerConfig[
		*product.Product,
		dto.CreateProductRequest,
		dto.UpdateProductRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "product",
		MapCreateDTO: func(req dto.CreateProductRequest) *product.Product {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateProductRequest, existing *product.Product) *product.Product {
			req.ApplyTo(existing)
			return existing
		},
	}

	return &ProductHandler{
		ProductCatalogHandler: NewCatalogHandler(base, config),
		service:               service,
	}
}

// ListByCompany handles GET /catalog/products/by-company/:companyId
func (h *ProductHandler) ListByCompany(c *gin.Context) {
	ctx := c.Request.Context()

	companyID, ok := h.ParseIDParam(c, "companyId")
	if !ok {
		return
	}

	filter, ok := h.ParseListFilter(c)
	if !ok {
		return
	}

	result, err := h.service.ListByCompany(ctx, companyID, filter)
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

// SetStockOut handles POST /catalog/products/:id/stock-out
func (h *ProductHandler) SetStockOut(c *gin.Context) {
	ctx := c.Request.Context()

	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.SetStockOutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetStockOut(ctx, productID, req.StockOut); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "stock-out flag updated")
}
