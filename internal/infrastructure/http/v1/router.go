package v1

import (
	"context"

	"github.com/gin-gonic/gin"

	"tradelink/internal/core/entity"
	"tradelink/internal/core/id"
	"tradelink/internal/core/security"
	"tradelink/internal/domain"
	"tradelink/internal/domain/auth"
	"tradelink/internal/domain/catalogs/company"
	"tradelink/internal/domain/catalogs/customer"
	"tradelink/internal/domain/catalogs/product"
	"tradelink/internal/domain/documents/damage"
	"tradelink/internal/domain/documents/order"
	"tradelink/internal/domain/documents/purchase"
	"tradelink/internal/domain/documents/salesreturn"
	"tradelink/internal/domain/posting"
	"tradelink/internal/domain/registers/inventory"
	"tradelink/internal/infrastructure/http/v1/handlers"
	"tradelink/internal/infrastructure/http/v1/middleware"
	"tradelink/internal/infrastructure/storage/postgres"
	"tradelink/internal/infrastructure/storage/postgres/catalog_repo"
	"tradelink/internal/infrastructure/storage/postgres/document_repo"
	"tradelink/internal/infrastructure/storage/postgres/register_repo"
	"tradelink/pkg/logger"
	"tradelink/pkg/numerator"
)

// newAuditService builds the audit trail writer. A failure here only
// disables auditing, it does not stop the server.
func newAuditService(cfg RouterConfig) *postgres.AuditService {
	audit, err := postgres.NewAuditService(cfg.TxManager)
	if err != nil {
		cfg.Logger.Warnw("audit service unavailable", "error", err)
		return nil
	}
	return audit
}

// attachCatalogAudit records create/update actions on a catalog.
func attachCatalogAudit[T interface {
	entity.Validatable
	GetID() id.ID
}](service *domain.CatalogService[T], audit *postgres.AuditService, entityType string) {
	if audit == nil {
		return
	}

	record := func(action postgres.AuditAction) domain.Hook[T] {
		return func(ctx context.Context, item T) error {
			err := audit.LogChange(ctx, entityType, item.GetID(), action, map[string]any{"entity": item})
			if err != nil {
				logger.Warn(ctx, "audit write failed", "entity", entityType, "error", err)
			}
			return nil
		}
	}

	service.Hooks().On(domain.AfterCreate, record(postgres.AuditActionCreate))
	service.Hooks().On(domain.AfterUpdate, record(postgres.AuditActionUpdate))
}

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// TxManager runs repository calls in transactions
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// AuthService for authentication endpoints and token validation
	AuthService *auth.Service

	// Numerator for document number generation
	Numerator *numerator.Service

	// OrderRule is the optional order acceptance rule; nil accepts all
	OrderRule *security.OrderRule

	// PostingPolicy guards document posting dates
	PostingPolicy security.PostingPolicy
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.AuthService))

		registerCatalogRoutes(protected, cfg)
		registerDocumentRoutes(protected, cfg)
		registerRegisterRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required)
	publicAuth := rg.Group("/auth")

	// Protected auth endpoints (JWT required)
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.AuthService))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// registerCatalogRoutes registers catalog endpoints.
// Catalog writes are an admin operation; sales and delivery staff read.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()
	auditService := newAuditService(cfg)

	// --- COMPANIES ---
	{
		repo := catalog_repo.NewCompanyRepo(cfg.TxManager)
		service := company.NewService(repo, cfg.TxManager, cfg.Numerator)
		attachCatalogAudit(service.CatalogService, auditService, "company")
		handler := handlers.NewCompanyHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/companies"), handler, auth.RoleAdmin)
	}

	// --- CUSTOMERS ---
	{
		repo := catalog_repo.NewCustomerRepo(cfg.TxManager)
		service := customer.NewService(repo, cfg.TxManager, cfg.Numerator)
		attachCatalogAudit(service.CatalogService, auditService, "customer")
		handler := handlers.NewCustomerHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/customers"), handler, auth.RoleAdmin)
	}

	// --- PRODUCTS ---
	{
		companyRepo := catalog_repo.NewCompanyRepo(cfg.TxManager)
		companyService := company.NewService(companyRepo, cfg.TxManager, cfg.Numerator)

		repo := catalog_repo.NewProductRepo(cfg.TxManager)
		service := product.NewService(repo, companyService, cfg.TxManager, cfg.Numerator)
		attachCatalogAudit(service.CatalogService, auditService, "product")
		handler := handlers.NewProductHandler(baseHandler, service)

		group := catalogs.Group("/products")
		RegisterCatalogRoutes(group, handler, auth.RoleAdmin)
		group.GET("/by-company/:companyId", handler.ListByCompany)
		group.POST("/:id/stock-out", middleware.RequireRole(auth.RoleAdmin, auth.RoleSales), handler.SetStockOut)
	}
}

// registerDocumentRoutes registers document endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	docs := rg.Group("/documents")
	baseHandler := handlers.NewBaseHandler()

	// Shared posting dependencies
	inventoryRepo := register_repo.NewInventoryRepo(cfg.TxManager)
	inventoryService := inventory.NewService(inventoryRepo)
	postingEngine := posting.NewEngine(inventoryService, cfg.TxManager, cfg.PostingPolicy)
	if auditService := newAuditService(cfg); auditService != nil {
		postingEngine = postingEngine.WithAudit(auditService)
	}

	// Shared catalog lookups
	companyRepo := catalog_repo.NewCompanyRepo(cfg.TxManager)
	companyService := company.NewService(companyRepo, cfg.TxManager, cfg.Numerator)
	productRepo := catalog_repo.NewProductRepo(cfg.TxManager)
	productService := product.NewService(productRepo, companyService, cfg.TxManager, cfg.Numerator)
	customerRepo := catalog_repo.NewCustomerRepo(cfg.TxManager)
	customerService := customer.NewService(customerRepo, cfg.TxManager, cfg.Numerator)

	orderRepo := document_repo.NewOrderRepo(cfg.TxManager)
	damageRepo := document_repo.NewDamageRepo(cfg.TxManager)
	damageService := damage.NewService(damageRepo, postingEngine, cfg.Numerator)

	// --- ORDERS ---
	{
		service := order.NewService(orderRepo, productService, customerService, postingEngine, cfg.Numerator, cfg.OrderRule)
		handler := handlers.NewOrderHandler(baseHandler, service, productService)

		group := docs.Group("/orders")
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.POST("", middleware.RequireRole(auth.RoleAdmin, auth.RoleSales), handler.Place)
		group.POST("/:id/status", middleware.RequireRole(auth.RoleAdmin, auth.RoleSales, auth.RoleDelivery), handler.ChangeStatus)
		group.DELETE("/:id", middleware.RequireRole(auth.RoleAdmin), handler.Delete)
	}

	// --- SALES RETURNS ---
	{
		repo := document_repo.NewSalesReturnRepo(cfg.TxManager)
		service := salesreturn.NewService(repo, orderRepo, customerService, damageService, postingEngine, cfg.Numerator)
		handler := handlers.NewSalesReturnHandler(baseHandler, service)

		group := docs.Group("/sales-returns")
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.GET("/by-order/:orderId", handler.ListByOrder)
		group.POST("/full", middleware.RequireRole(auth.RoleAdmin, auth.RoleSales), handler.RegisterFull)
		group.POST("/partial", middleware.RequireRole(auth.RoleAdmin, auth.RoleSales), handler.RegisterPartial)
	}

	// --- DAMAGE LOGS ---
	{
		handler := handlers.NewDamageHandler(baseHandler, damageService, productService)

		group := docs.Group("/damage-logs")
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.GET("/by-return/:returnId", handler.ListByReturn)
		group.POST("", middleware.RequireRole(auth.RoleAdmin, auth.RoleSales), handler.Log)
	}

	// --- PURCHASE BILLS ---
	{
		repo := document_repo.NewPurchaseRepo(cfg.TxManager)
		service := purchase.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewPurchaseHandler(baseHandler, service, productService)

		group := docs.Group("/purchase-bills")
		group.GET("", handler.List)
		group.GET("/search", handler.Search)
		group.GET("/:id", handler.Get)
		group.GET("/:id/amendments", handler.GetAmendments)
		group.POST("", middleware.RequireRole(auth.RoleAdmin), handler.Save)
		group.POST("/:id/amend", middleware.RequireRole(auth.RoleAdmin), handler.Amend)
	}
}

// registerRegisterRoutes registers accumulation register endpoints.
func registerRegisterRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	registers := rg.Group("/registers")
	baseHandler := handlers.NewBaseHandler()

	// Inventory register
	{
		repo := register_repo.NewInventoryRepo(cfg.TxManager)
		service := inventory.NewService(repo)
		handler := handlers.NewStockHandler(baseHandler, service)

		group := registers.Group("/inventory")
		group.GET("/balances", handler.GetBalances)
		group.GET("/movements", handler.GetMovements)
		group.GET("/turnovers", handler.GetTurnovers)
		group.GET("/availability/:productId", handler.GetAvailability)
		group.POST("/recalculate", middleware.RequireRole(auth.RoleAdmin), handler.Recalculate)
	}
}
