package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	manufacturingapp "github.com/aurum/backend/internal/application/manufacturing"
	ownershipapp "github.com/aurum/backend/internal/application/ownership"
	pricingapp "github.com/aurum/backend/internal/application/pricing"
	purchasingapp "github.com/aurum/backend/internal/application/purchasing"
	rawgoldapp "github.com/aurum/backend/internal/application/rawgold"
	treasuryapp "github.com/aurum/backend/internal/application/treasury"
	"github.com/aurum/backend/internal/infrastructure/auth"
	"github.com/aurum/backend/internal/infrastructure/cache"
	"github.com/aurum/backend/internal/infrastructure/config"
	"github.com/aurum/backend/internal/infrastructure/event"
	"github.com/aurum/backend/internal/infrastructure/logger"
	"github.com/aurum/backend/internal/infrastructure/persistence"
	"github.com/aurum/backend/internal/infrastructure/telemetry"
	"github.com/aurum/backend/internal/interfaces/http/handler"
	"github.com/aurum/backend/internal/interfaces/http/middleware"
	"github.com/aurum/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			Aurum Backend API
//	@version		1.0
//	@description	Jewelry retail backend - raw gold, manufacturing, ownership and treasury ledgers

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Aurum Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize OpenTelemetry providers when enabled
	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Database query tracing via otelgorm
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        "postgresql",
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := eventBus.Stop(stopCtx); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Gold rate cache backed by Redis. The pricing service works without
	// it, so a missing Redis only costs the cache, not the process.
	var rateCache pricingapp.RateCache
	if redisCache, err := cache.NewRedisRateCache(cfg.Redis); err != nil {
		log.Warn("Redis unavailable, gold rate cache disabled", zap.Error(err))
	} else {
		rateCache = redisCache
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("Error closing rate cache", zap.Error(err))
			}
		}()
	}

	// Initialize repositories
	lotRepo := persistence.NewGormRawGoldLotRepository(db.DB)
	rawGoldMovementRepo := persistence.NewGormRawGoldMovementRepository(db.DB)
	manufacturingRecordRepo := persistence.NewGormManufacturingRecordRepository(db.DB)
	workflowHistoryRepo := persistence.NewGormWorkflowHistoryRepository(db.DB)
	ownershipRecordRepo := persistence.NewGormOwnershipRecordRepository(db.DB)
	ownershipMovementRepo := persistence.NewGormOwnershipMovementRepository(db.DB)
	treasuryAccountRepo := persistence.NewGormTreasuryAccountRepository(db.DB)
	treasuryTxRepo := persistence.NewGormTreasuryTransactionRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	supplierTxRepo := persistence.NewGormSupplierTransactionRepository(db.DB)
	goldRateRepo := persistence.NewGormGoldRateRepository(db.DB)

	// Transaction scopes
	rawGoldScope := persistence.NewGormRawGoldTransactionScope(db.DB)
	ownershipScope := persistence.NewGormOwnershipTransactionScope(db.DB)
	manufacturingScope := persistence.NewGormManufacturingTransactionScope(db.DB)
	treasuryScope := persistence.NewGormTreasuryTransactionScope(db.DB)
	purchasingScope := persistence.NewGormPurchasingTransactionScope(db.DB)
	pricingScope := persistence.NewGormPricingTransactionScope(db.DB)

	// Initialize application services
	ledgerService := rawgoldapp.NewLedgerService(rawGoldScope, lotRepo, rawGoldMovementRepo, manufacturingRecordRepo)
	ownershipService := ownershipapp.NewService(ownershipScope, ownershipRecordRepo, ownershipMovementRepo, eventBus)
	workflowService := manufacturingapp.NewWorkflowService(
		manufacturingScope,
		manufacturingRecordRepo,
		workflowHistoryRepo,
		lotRepo,
		ledgerService,
		ownershipService,
		eventBus,
	)
	treasuryService := treasuryapp.NewService(
		treasuryScope,
		treasuryAccountRepo,
		treasuryTxRepo,
		supplierRepo,
		supplierTxRepo,
		ownershipService,
		cfg.Treasury.AllowNegativeBalance,
	)
	rateService := pricingapp.NewRateService(pricingScope, goldRateRepo, rateCache, eventBus)
	receivingService := purchasingapp.NewReceivingService(purchasingScope, ledgerService, ownershipService, treasuryService)

	// JWT service for authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize handlers
	rawGoldHandler := handler.NewRawGoldHandler(ledgerService)
	manufacturingHandler := handler.NewManufacturingHandler(workflowService)
	ownershipHandler := handler.NewOwnershipHandler(ownershipService)
	treasuryHandler := handler.NewTreasuryHandler(treasuryService)
	goldRateHandler := handler.NewGoldRateHandler(rateService)
	receivingHandler := handler.NewReceivingHandler(receivingService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing/Metrics - OpenTelemetry instrumentation
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.HTTPMetricsWithMeter(meterProvider.Meter("http.server"), true))
	}
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	// Configure skip paths for public endpoints
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Raw gold ledger
	rawGoldRoutes := router.NewDomainGroup("raw-gold", "/raw-gold")
	rawGoldRoutes.POST("/receipts", rawGoldHandler.Receive)
	rawGoldRoutes.GET("/lots", rawGoldHandler.List)
	rawGoldRoutes.GET("/lots/:id", rawGoldHandler.Get)
	rawGoldRoutes.POST("/lots/:id/consume", rawGoldHandler.Consume)
	rawGoldRoutes.GET("/lots/:id/movements", rawGoldHandler.Movements)
	rawGoldRoutes.GET("/lots/:id/verification", rawGoldHandler.Verify)
	rawGoldRoutes.POST("/movements/:id/reverse", rawGoldHandler.Reverse)

	// Manufacturing workflow
	manufacturingRoutes := router.NewDomainGroup("manufacturing", "/manufacturing")
	manufacturingRoutes.POST("/records", manufacturingHandler.Create)
	manufacturingRoutes.GET("/records", manufacturingHandler.List)
	manufacturingRoutes.GET("/records/:id", manufacturingHandler.Get)
	manufacturingRoutes.POST("/records/:id/materials", manufacturingHandler.DeclareMaterial)
	manufacturingRoutes.POST("/records/:id/transition", manufacturingHandler.Transition)
	manufacturingRoutes.GET("/records/:id/history", manufacturingHandler.History)

	// Ownership ledger
	ownershipRoutes := router.NewDomainGroup("ownership", "/ownership")
	ownershipRoutes.GET("/records", ownershipHandler.List)
	ownershipRoutes.GET("/records/:id", ownershipHandler.Get)
	ownershipRoutes.GET("/records/:id/movements", ownershipHandler.Movements)
	ownershipRoutes.POST("/records/:id/payments", ownershipHandler.ApplyPayment)
	ownershipRoutes.GET("/stock/:kind/:ref_id", ownershipHandler.GetByStockRef)
	ownershipRoutes.GET("/lots/:id/percentage", ownershipHandler.LotPercentage)

	// Treasury
	treasuryRoutes := router.NewDomainGroup("treasury", "/treasury")
	treasuryRoutes.GET("/account", treasuryHandler.GetAccount)
	treasuryRoutes.POST("/adjustments", treasuryHandler.Adjust)
	treasuryRoutes.POST("/feeds", treasuryHandler.Feed)
	treasuryRoutes.POST("/supplier-payments", treasuryHandler.PaySupplier)
	treasuryRoutes.GET("/transactions", treasuryHandler.Transactions)
	treasuryRoutes.POST("/suppliers", treasuryHandler.CreateSupplier)
	treasuryRoutes.GET("/suppliers", treasuryHandler.ListSuppliers)
	treasuryRoutes.GET("/suppliers/:id", treasuryHandler.GetSupplier)
	treasuryRoutes.GET("/suppliers/:id/transactions", treasuryHandler.SupplierTransactions)

	// Gold rate versioning
	pricingRoutes := router.NewDomainGroup("pricing", "/pricing")
	pricingRoutes.POST("/rates", goldRateHandler.Set)
	pricingRoutes.GET("/rates/:karat/current", goldRateHandler.Current)
	pricingRoutes.GET("/rates/:karat/at", goldRateHandler.At)
	pricingRoutes.GET("/rates/:karat/history", goldRateHandler.History)
	pricingRoutes.GET("/rates/:karat/price", goldRateHandler.Price)

	// Purchase order deliveries
	purchasingRoutes := router.NewDomainGroup("purchasing", "/purchasing")
	purchasingRoutes.POST("/deliveries", receivingHandler.Receive)

	// Register all domain groups
	r.Register(rawGoldRoutes).
		Register(manufacturingRoutes).
		Register(ownershipRoutes).
		Register(treasuryRoutes).
		Register(pricingRoutes).
		Register(purchasingRoutes)

	// Register system routes
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
