// Package main is the entry point for the tradelink API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradelink/internal/core/security"
	"tradelink/internal/domain/auth"
	v1 "tradelink/internal/infrastructure/http/v1"
	"tradelink/internal/infrastructure/storage/postgres"
	"tradelink/internal/infrastructure/storage/postgres/auth_repo"
	"tradelink/pkg/logger"
	"tradelink/pkg/numerator"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting tradelink server")

	// --- Database connection ---
	dsn := mustEnv("DATABASE_URL")
	poolCfg := postgres.DefaultPoolConfig(dsn)
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- JWT Service ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	jwtConfig := auth.DefaultJWTConfig(jwtSecret)
	if ttl := getEnvDuration("JWT_ACCESS_TOKEN_TTL", 0); ttl > 0 {
		jwtConfig.AccessTokenTTL = ttl
	}
	jwtService := auth.NewJWTService(jwtConfig)

	// --- Auth Service ---
	userRepo := auth_repo.NewUserRepo(txManager)
	authService := auth.NewService(userRepo, jwtService)

	// --- Numerator Service ---
	numeratorService := numerator.New(pool)

	// --- Order acceptance rule (optional CEL expression) ---
	var orderRule *security.OrderRule
	if expr := os.Getenv("ORDER_ACCEPT_RULE"); expr != "" {
		orderRule, err = security.CompileOrderRule(expr)
		if err != nil {
			log.Fatalw("failed to compile order acceptance rule", "error", err)
		}
		log.Infow("order acceptance rule active", "expression", expr)
	}

	// --- Posting policy ---
	var postingPolicy security.PostingPolicy = security.OpenPolicy{}
	if closedUntil := os.Getenv("PERIOD_CLOSED_UNTIL"); closedUntil != "" {
		date, err := time.Parse("2006-01-02", closedUntil)
		if err != nil {
			log.Fatalw("invalid PERIOD_CLOSED_UNTIL, want YYYY-MM-DD", "error", err)
		}
		postingPolicy = security.NewStrictPolicy(date)
		log.Infow("posting closed period active", "closed_until", closedUntil)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:          pool,
		TxManager:     txManager,
		Logger:        log,
		AuthService:   authService,
		Numerator:     numeratorService,
		OrderRule:     orderRule,
		PostingPolicy: postingPolicy,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
