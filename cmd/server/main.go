package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	inventoryapp "github.com/erp/stockcore/internal/application/inventory"
	"github.com/erp/stockcore/internal/infrastructure/cache"
	"github.com/erp/stockcore/internal/infrastructure/config"
	"github.com/erp/stockcore/internal/infrastructure/event"
	"github.com/erp/stockcore/internal/infrastructure/logger"
	"github.com/erp/stockcore/internal/infrastructure/persistence"
	"github.com/erp/stockcore/internal/infrastructure/stocksync"
	"github.com/erp/stockcore/internal/infrastructure/telemetry"
	"github.com/erp/stockcore/internal/interfaces/http/handler"
	"github.com/erp/stockcore/internal/interfaces/http/middleware"
	"github.com/erp/stockcore/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const (
	slowQueryThreshold = 200 * time.Millisecond
	shutdownTimeout    = 30 * time.Second
)

func main() {
	// .env is optional and only used for local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting stock service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry comes first so database and HTTP instrumentation pick up the
	// global providers
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, 0, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), slowQueryThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	if err := telemetry.RegisterDBTracing(db.DB, dbTracing, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	meter := meterProvider.Meter("stockcore")
	stockMetrics, err := telemetry.NewStockMetrics(meter, telemetry.NewGormStockSnapshotProvider(db.DB), log)
	if err != nil {
		log.Fatal("Failed to create stock metrics", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis", zap.Error(err))
			}
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	eventBus := event.NewInMemoryEventBus(log)
	if cfg.Sync.Enabled {
		stopSync := subscribeStockSync(eventBus, cfg, redisClient, log)
		defer stopSync()
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	repos := persistence.NewRepositories(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB, cfg.Database.LockTimeout)
	opts := inventoryapp.Options{
		Publisher: eventBus,
		Logger:    log,
		Metrics:   stockMetrics,
		Retry: inventoryapp.RetryPolicy{
			Attempts:  cfg.Inventory.RetryAttempts,
			BaseDelay: cfg.Inventory.RetryBaseDelay,
			MaxDelay:  cfg.Inventory.RetryMaxDelay,
		},
	}

	catalogService := inventoryapp.NewCatalogService(scope, repos, opts)
	ledgerService := inventoryapp.NewLedgerService(scope, repos.Ledger, cfg.Inventory.HistoryPageSize, opts)
	fulfillmentService := inventoryapp.NewFulfillmentService(scope, repos.Shipments, inventoryapp.NewReservationManager(log, stockMetrics), opts)
	stocktakingService := inventoryapp.NewStocktakingService(scope, repos.Counts, opts)
	productionService := inventoryapp.NewProductionService(scope, repos.Orders, repos.WorkOrders, opts)

	if cfg.Inventory.AnomalyScanInterval > 0 {
		monitor := inventoryapp.NewAnomalyMonitor(repos.StockItems, stockMetrics, log, cfg.Inventory.AnomalyScanInterval)
		monitor.Start(ctx)
		defer monitor.Stop()
	}

	checks := []handler.SystemOption{
		handler.WithHealthCheck("database", db.Ping),
	}
	if redisClient != nil {
		checks = append(checks, handler.WithHealthCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}))
	}

	handlers := router.Handlers{
		System:      handler.NewSystemHandler(cfg.App.Name, version, checks...),
		Catalog:     handler.NewCatalogHandler(catalogService),
		Ledger:      handler.NewLedgerHandler(ledgerService),
		Shipments:   handler.NewShipmentHandler(fulfillmentService),
		Stocktaking: handler.NewStocktakingHandler(stocktakingService),
		Production:  handler.NewProductionHandler(productionService),
	}

	engine := newEngine(cfg, meter, log)
	router.RegisterProbes(engine, handlers.System)
	router.RegisterStockRoutes(router.NewRouter(engine), handlers).Setup()
	log.Info("Routes registered", zap.Int("count", len(engine.Routes())))

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}

// newEngine builds the gin engine with the middleware stack in order:
// request ID, panic recovery, tracing, actor, span annotation, access log,
// security headers, CORS, body limit, rate limit and HTTP metrics.
func newEngine(cfg *config.Config, meter metric.Meter, log *zap.Logger) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSOrigins

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.Actor(),
		middleware.SpanEnricher(),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(corsCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	if cfg.HTTP.RateLimitRequests > 0 {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)))
	}
	engine.Use(middleware.HTTPMetrics(meter, log))
	return engine
}

// subscribeStockSync forwards committed stock changes to the Redis stream.
// The returned func releases the idempotency store.
func subscribeStockSync(bus *event.InMemoryEventBus, cfg *config.Config, client *redis.Client, log *zap.Logger) func() {
	factory := cache.NewIdempotencyStoreFactory(cache.WithLogger(log))
	var cmdable redis.Cmdable
	if client != nil {
		cmdable = client
	}
	store, err := factory.CreateStore(cmdable)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	publisher := stocksync.NewStreamPublisher(client, cfg.Sync.Stream, cfg.Sync.MaxLen, log)
	syncHandler := inventoryapp.NewStockSyncHandler(publisher, store, cfg.Sync.IdempotencyTTL, log)
	bus.Subscribe(syncHandler)
	log.Info("Stock sync enabled",
		zap.String("stream", cfg.Sync.Stream),
		zap.Strings("event_types", syncHandler.EventTypes()),
	)

	return func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}
}
