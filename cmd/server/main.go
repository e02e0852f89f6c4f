package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	settlementapp "github.com/jtrade/backend/internal/application/settlement"
	"github.com/jtrade/backend/internal/domain/settlement"
	"github.com/jtrade/backend/internal/infrastructure/cache"
	"github.com/jtrade/backend/internal/infrastructure/config"
	"github.com/jtrade/backend/internal/infrastructure/logger"
	"github.com/jtrade/backend/internal/infrastructure/persistence"
	"github.com/jtrade/backend/internal/infrastructure/telemetry"
	"github.com/jtrade/backend/internal/interfaces/http/handler"
	"github.com/jtrade/backend/internal/interfaces/http/middleware"
	"github.com/jtrade/backend/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//	@title			Settlement Engine API
//	@version		1.0
//	@description	Metal-weight settlement decomposition and reconciliation for the jewelry trade

//	@contact.name	API Support
//	@contact.url	https://github.com/jtrade/backend

//	@host		localhost:8080
//	@BasePath	/api/v1

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

	log.Info("Starting Settlement Engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing must be installed before anything opens spans
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Failed to shut down tracer provider", zap.Error(err))
		}
	}()

	// Initialize database with zap-backed gorm logging
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.Open(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.InstrumentGorm(db.DB, cfg.Database.DBName, log); err != nil {
			log.Fatal("Failed to instrument database tracing", zap.Error(err))
		}
	}

	// Engine tuning from configuration
	settlement.DefaultSilverAdjustFactor = decimal.NewFromFloat(cfg.Engine.SilverAdjustFactor)
	calculator := settlement.NewLineAmountCalculator(buildMaterialTable(cfg.Engine))

	// Repositories
	lineRepo := persistence.NewGormLineRepository(db.DB)
	policyRepo := persistence.NewGormPolicySnapshotRepository(db.DB)
	matchRepo := persistence.NewGormMatchRepository(db.DB)
	oracle := persistence.NewGormLedgerOracle(db.DB)

	// Party positions are served through a read-through cache; Redis when
	// reachable, in-memory otherwise.
	positionCache, err := cache.NewPositionCacheFactory(
		cfg.Redis,
		cfg.Engine.PositionCacheTTL,
		cache.WithLogger(log),
	).Create()
	if err != nil {
		log.Fatal("Failed to initialize position cache", zap.Error(err))
	}
	defer func() {
		if err := positionCache.Close(); err != nil {
			log.Error("Failed to close position cache", zap.Error(err))
		}
	}()
	cachedOracle := cache.NewCachedLedgerOracle(oracle, positionCache)

	// Application services
	settlementService := settlementapp.NewSettlementService(lineRepo, policyRepo, oracle, calculator)
	matchService := settlementapp.NewMatchService(matchRepo, matchRepo)
	positionService := settlementapp.NewPositionService(cachedOracle)

	// Handlers
	settlementHandler := handler.NewSettlementHandler(settlementService)
	matchHandler := handler.NewMatchHandler(matchService)
	positionHandler := handler.NewPositionHandler(positionService)
	systemHandler := handler.NewSystemHandler()

	// Set gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Register custom validators
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, in order: request ID, tracing, panic recovery,
	// request logging, security headers, CORS, body size limit.
	engine.Use(middleware.RequestID())
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
		engine.Use(middleware.TraceEnrichment())
	}
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(settlementHandler).
		Register(matchHandler).
		Register(positionHandler).
		Register(systemHandler)
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// buildMaterialTable merges configured material overrides onto the built-in
// purity table.
func buildMaterialTable(cfg config.EngineConfig) *settlement.MaterialTable {
	table := settlement.DefaultMaterialTable()
	if len(cfg.MaterialOverrides) == 0 {
		return table
	}

	overrides := make(map[string]settlement.MaterialBucket, len(cfg.MaterialOverrides))
	for code, rule := range cfg.MaterialOverrides {
		overrides[code] = settlement.MaterialBucket{
			Kind:                settlement.BucketKind(rule.Kind),
			WeightFactor:        decimal.NewFromFloat(rule.WeightFactor),
			SilverAdjustApplies: rule.SilverAdjust,
		}
	}
	return table.WithOverrides(overrides)
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
		body := gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		}
		if stats, err := db.Stats(); err == nil {
			body["pool"] = stats
		}
		c.JSON(http.StatusOK, body)
	}
}
