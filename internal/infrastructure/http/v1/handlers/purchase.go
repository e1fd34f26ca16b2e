package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/id"
	"tradelink/internal/domain/catalogs/product"
	"tradelink/internal/domain/documents/purchase"
	"tradelink/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler handles HTTP requests for purchase bills.
type PurchaseHandler struct {
	*BaseHandler
	service  *purchase.Service
	products *product.Service
}

// NewPurchaseHandler creates a new purchase bill handler.
func NewPurchaseHandler(base *BaseHandler, service *purchase.Service, products *product.Service) *PurchaseHandler {
	return &PurchaseHandler{
		BaseHandler: base,
		service:     service,
		products:    products,
	}
}

// Save handles POST /documents/purchase-bills
func (h *PurchaseHandler) Save(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SaveBillRequest
	if !h.BindJSON(c, &req) {
		return
	}

	bill, err := h.buildBill(c, req)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Save(ctx, bill); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, bill)
}

// Amend handles POST /documents/purchase-bills/:id/amend
// The amended bill references the original; the original stays on record.
func (h *PurchaseHandler) Amend(c *gin.Context) {
	ctx := c.Request.Context()

	billID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.SaveBillRequest
	if !h.BindJSON(c, &req) {
		return
	}

	amended, err := h.buildBill(c, req)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Amend(ctx, billID, amended); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, amended)
}

// buildBill snapshots product names from the catalog into the bill lines.
func (h *PurchaseHandler) buildBill(c *gin.Context, req dto.SaveBillRequest) (*purchase.Bill, error) {
	ctx := c.Request.Context()

	ids := make([]id.ID, 0, len(req.Lines))
	for _, line := range req.Lines {
		ids = append(ids, line.ProductID)
	}
	products, err := h.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	names := make(map[id.ID]string, len(products))
	for _, line := range req.Lines {
		p, ok := products[line.ProductID]
		if !ok {
			return nil, apperror.NewNotFound("product", line.ProductID.String())
		}
		names[line.ProductID] = p.Name
	}
	return req.ToEntity(names), nil
}

// Get handles GET /documents/purchase-bills/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	billID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	bill, err := h.service.GetByID(ctx, billID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, bill)
}

// GetAmendments handles GET /documents/purchase-bills/:id/amendments
func (h *PurchaseHandler) GetAmendments(c *gin.Context) {
	ctx := c.Request.Context()

	billID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	amendments, err := h.service.GetAmendments(ctx, billID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      amendments,
		TotalCount: int64(len(amendments)),
	})
}

// Search handles GET /documents/purchase-bills/search?q=...
// Matches bill numbers, supplier invoice numbers, and line product names.
func (h *PurchaseHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()

	query := c.Query("q")
	if query == "" {
		h.Error(c, apperror.NewValidation("query parameter 'q' is required"))
		return
	}
	limit := h.ParseIntQuery(c, "limit", 20)

	bills, err := h.service.Search(ctx, query, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      bills,
		TotalCount: int64(len(bills)),
	})
}

// List handles GET /documents/purchase-bills
func (h *PurchaseHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	base, ok := h.ParseListFilter(c)
	if !ok {
		return
	}
	base.OrderBy = c.DefaultQuery("orderBy", "date DESC")
	filter := purchase.ListFilter{ListFilter: base}

	if v := c.Query("companyId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid companyId format"))
			return
		}
		filter.CompanyID = &parsed
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
	filter.SupplierInvoiceNo = c.Query("supplierInvoiceNo")
	filter.ExcludeAmended = c.Query("excludeAmended") == "true"

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
