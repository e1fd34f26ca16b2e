// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/internal/domain/auth"
	"tradelink/internal/domain/catalogs/company"
	"tradelink/internal/domain/catalogs/customer"
	"tradelink/internal/domain/catalogs/product"
	"tradelink/internal/infrastructure/storage/postgres"
	"tradelink/internal/infrastructure/storage/postgres/auth_repo"
	"tradelink/internal/infrastructure/storage/postgres/catalog_repo"
	"tradelink/pkg/logger"
	"tradelink/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	numeratorService := numerator.New(pool)

	if err := seedAdminUser(ctx, txManager, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, txManager, numeratorService, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@tradelink.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	userRepo := auth_repo.NewUserRepo(txManager)
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig("seed-only"))
	authService := auth.NewService(userRepo, jwtService)

	user, err := authService.Register(ctx, adminEmail, "System Admin", adminPassword, auth.RoleAdmin)
	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeDuplicate {
			log.Infow("admin user already exists", "email", adminEmail)
			return nil
		}
		return err
	}

	log.Infow("admin user created", "email", adminEmail, "user_id", user.ID)
	return nil
}

func seedDemoData(ctx context.Context, txManager *postgres.TxManager, num *numerator.Service, log *logger.Logger) error {
	log.Info("seeding demo data...")

	companyRepo := catalog_repo.NewCompanyRepo(txManager)
	companyService := company.NewService(companyRepo, txManager, num)

	customerRepo := catalog_repo.NewCustomerRepo(txManager)
	customerService := customer.NewService(customerRepo, txManager, num)

	productRepo := catalog_repo.NewProductRepo(txManager)
	productService := product.NewService(productRepo, companyService, txManager, num)

	// 1. Companies (supplier brands)
	companies := []struct {
		code string
		name string
	}{
		{"CO-001", "Sunrise Foods"},
		{"CO-002", "Everest Consumer Care"},
		{"CO-003", "Blue Hills Beverages"},
	}

	companyIDs := make(map[string]id.ID)
	for _, c := range companies {
		entity := company.New(c.code, c.name)
		if err := companyService.Create(ctx, entity); err != nil {
			if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeConflict {
				existing, getErr := companyService.GetByCode(ctx, c.code)
				if getErr != nil {
					return fmt.Errorf("fetch existing company %s: %w", c.code, getErr)
				}
				companyIDs[c.code] = existing.ID
				continue
			}
			log.Warnw("failed to seed company", "name", c.name, "error", err)
			continue
		}
		companyIDs[c.code] = entity.ID
	}

	// 2. Customers (retail outlets)
	customers := []struct {
		code        string
		name        string
		phone       string
		creditLimit int64
		creditDays  int
	}{
		{"CU-001", "New Market Store", "9800000001", 50000, 15},
		{"CU-002", "Lakeside Mart", "9800000002", 30000, 7},
		{"CU-003", "Hill Road Traders", "9800000003", 0, 0},
	}

	for _, c := range customers {
		entity := customer.New(c.code, c.name)
		phone := c.phone
		entity.Phone = &phone
		entity.CreditLimit = decimal.NewFromInt(c.creditLimit)
		entity.CreditDays = c.creditDays
		if err := customerService.Create(ctx, entity); err != nil {
			if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeConflict {
				continue
			}
			log.Warnw("failed to seed customer", "name", c.name, "error", err)
		}
	}

	// 3. Products
	products := []struct {
		companyCode   string
		code          string
		name          string
		baseRate      string
		discountPct   string
		qualifyingQty int64
		schemePct     string
	}{
		{"CO-001", "PR-00001", "Instant Noodles 75g", "22.00", "5", 48, "3"},
		{"CO-001", "PR-00002", "Tomato Ketchup 500g", "145.00", "0", 12, "2.5"},
		{"CO-002", "PR-00003", "Herbal Soap 100g", "48.00", "4", 36, "0"},
		{"CO-002", "PR-00004", "Toothpaste 150g", "120.00", "2", 0, "0"},
		{"CO-003", "PR-00005", "Mango Juice 1L", "95.00", "0", 24, "5"},
	}

	for _, p := range products {
		companyID, ok := companyIDs[p.companyCode]
		if !ok {
			log.Warnw("company not found for product, skipping", "product", p.name, "company", p.companyCode)
			continue
		}

		baseRate, _ := decimal.NewFromString(p.baseRate)
		entity := product.New(p.code, p.name, companyID, baseRate)

		discountPct, _ := decimal.NewFromString(p.discountPct)
		if !discountPct.IsZero() {
			entity.ProductDiscountPct = discountPct
			entity.DiscountedRate = baseRate.
				Sub(baseRate.Mul(discountPct).Div(decimal.NewFromInt(100))).
				Round(2)
		}
		schemePct, _ := decimal.NewFromString(p.schemePct)
		if p.qualifyingQty > 0 && !schemePct.IsZero() {
			entity.SecondaryAvailable = true
			entity.SecondaryQualifyingQty = types.Pieces(p.qualifyingQty)
			entity.SecondaryDiscountPct = schemePct
		}

		if err := productService.Create(ctx, entity); err != nil {
			if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeConflict {
				continue
			}
			log.Warnw("failed to seed product", "name", p.name, "error", err)
		}
	}

	log.Info("demo data seeded successfully")
	return nil
}
