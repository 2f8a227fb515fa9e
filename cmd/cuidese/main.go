package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cuide-se/cuidese-api/internal/config"
	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/handler"
	"github.com/cuide-se/cuidese-api/internal/infra/cache"
	"github.com/cuide-se/cuidese-api/internal/infra/observability"
	"github.com/cuide-se/cuidese-api/internal/infra/realtime"
	"github.com/cuide-se/cuidese-api/internal/infra/resilience"
	"github.com/cuide-se/cuidese-api/internal/infra/supabase"
	"github.com/cuide-se/cuidese-api/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Bool("realtime_enabled", cfg.RealtimeEnabled),
		zap.Duration("realtime_debounce", cfg.RealtimeDebounce),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("jwt_refresh_ttl", cfg.JWTRefreshTTL),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "cuidese-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	dashboardCache := cache.New[*domain.DashboardSummary](cfg.CacheTTL)

	// --- Resilience ---
	cb := resilience.NewCircuitBreaker("supabase")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Supabase client (PostgREST store) ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	store := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		bulkhead,
		metrics,
		logger,
	)
	blobs := supabase.NewStorage(store, cfg.StorageBucket)

	// --- Services ---
	salonSvc := service.NewSalonService(store, store, store, metrics, logger)
	orderSvc := service.NewOrderService(store, store, store, metrics, logger)
	boardSvc := service.NewBoardService(store, logger)
	intakeSvc := service.NewIntakeService(store, logger)
	inventorySvc := service.NewInventoryService(store, metrics, logger)
	financeSvc := service.NewFinanceService(store, metrics, logger)
	loyaltySvc := service.NewLoyaltyService(store, store, metrics, logger)
	reportsSvc := service.NewReportsService(store, store, store, store, store, dashboardCache, metrics, logger)
	authSvc := service.NewAuthService(store, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, logger)
	userSvc := service.NewUserService(store, logger)
	uploadSvc := service.NewUploadService(blobs, logger)

	// --- Realtime invalidation ---
	var feed *realtime.Feed
	var invalidators []*realtime.Invalidator
	if cfg.RealtimeEnabled {
		wsURL := strings.Replace(cfg.SupabaseURL, "http", "ws", 1)
		dialCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		feed, err = realtime.Dial(dialCtx, wsURL, cfg.SupabaseAnonKey, logger)
		cancel()
		if err != nil {
			logger.Warn("realtime feed unavailable, dashboard cache will expire by TTL only", zap.Error(err))
		} else {
			for _, table := range []string{"orders", "order_items", "transactions", "clients", "products"} {
				table := table
				inv := realtime.NewInvalidator(feed, table, cfg.RealtimeDebounce, func() {
					metrics.IncrInvalidation(table)
					reportsSvc.InvalidateDashboard()
					if table == "orders" || table == "order_items" {
						refreshCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
						boardSvc.Invalidate(refreshCtx)
						cancel()
					}
				}, logger)
				if err := inv.Start(context.Background()); err != nil {
					logger.Warn("invalidator failed to start", zap.String("table", table), zap.Error(err))
					continue
				}
				invalidators = append(invalidators, inv)
			}
			logger.Info("realtime invalidation active", zap.Int("tables", len(invalidators)))
		}
	}

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Salon:     salonSvc,
		Orders:    orderSvc,
		Board:     boardSvc,
		Intake:    intakeSvc,
		Inventory: inventorySvc,
		Finance:   financeSvc,
		Loyalty:   loyaltySvc,
		Reports:   reportsSvc,
		Auth:      authSvc,
		Users:     userSvc,
		Uploads:   uploadSvc,
	}, metrics, logger, cfg.CORSOrigin)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	for _, inv := range invalidators {
		inv.Stop()
	}
	if feed != nil {
		feed.Close()
	}
	boardSvc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
