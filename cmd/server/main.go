package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	financeapp "github.com/dmitriyabr/duma-erp-sub001/internal/application/finance"
	inventoryapp "github.com/dmitriyabr/duma-erp-sub001/internal/application/inventory"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/finance"
	"github.com/dmitriyabr/duma-erp-sub001/internal/infrastructure/cache"
	"github.com/dmitriyabr/duma-erp-sub001/internal/infrastructure/config"
	"github.com/dmitriyabr/duma-erp-sub001/internal/infrastructure/logger"
	"github.com/dmitriyabr/duma-erp-sub001/internal/infrastructure/persistence"
	"github.com/dmitriyabr/duma-erp-sub001/internal/interfaces/http/handler"
	"github.com/dmitriyabr/duma-erp-sub001/internal/interfaces/http/middleware"
	"github.com/dmitriyabr/duma-erp-sub001/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting payment engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Advisory balance cache
	balanceCache, err := cache.NewRedisBalanceCache(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Redis.BalanceTTL)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := balanceCache.Close(); err != nil {
			log.Error("Error closing Redis", zap.Error(err))
		}
	}()
	log.Info("Redis connected successfully")

	// Transaction scope and supporting infrastructure
	scope := persistence.NewGormTransactionScope(db.DB)
	numberGen := persistence.NewGormNumberGenerator(db.DB)

	// Application services
	reservationSyncer := inventoryapp.NewReservationSyncService(log)
	paymentService := financeapp.NewPaymentService(scope, numberGen, balanceCache, log)
	allocationService := financeapp.NewAllocationService(
		scope,
		finance.NewAllocationPlanner(),
		reservationSyncer,
		balanceCache,
		log,
	)
	balanceService := financeapp.NewBalanceService(scope, balanceCache, log)
	statementService := financeapp.NewStatementService(scope)

	// HTTP engine and middleware
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
	)
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	r := router.NewRouter(engine)
	r.Register(handler.NewPaymentHandler(paymentService))
	r.Register(handler.NewAllocationHandler(allocationService))
	r.Register(handler.NewStudentFinanceHandler(balanceService, statementService))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
