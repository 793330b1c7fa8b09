package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apppos "github.com/swagpaypal/backend/internal/application/pos"
	"github.com/swagpaypal/backend/internal/domain/shared"
	"github.com/swagpaypal/backend/internal/infrastructure/auth"
	"github.com/swagpaypal/backend/internal/infrastructure/cache"
	"github.com/swagpaypal/backend/internal/infrastructure/config"
	"github.com/swagpaypal/backend/internal/infrastructure/event"
	"github.com/swagpaypal/backend/internal/infrastructure/izettle"
	"github.com/swagpaypal/backend/internal/infrastructure/logger"
	"github.com/swagpaypal/backend/internal/infrastructure/migration"
	"github.com/swagpaypal/backend/internal/infrastructure/persistence"
	"github.com/swagpaypal/backend/internal/infrastructure/scheduler"
	"github.com/swagpaypal/backend/internal/infrastructure/telemetry"
	"github.com/swagpaypal/backend/internal/interfaces/http/handler"
	"github.com/swagpaypal/backend/internal/interfaces/http/middleware"
	"github.com/swagpaypal/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	telemetry.ServiceVersion = version

	// OTLP logs are teed into the zap logger once the provider exists
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	if logProvider.IsEnabled() {
		if log, err = logger.New(logCfg, logProvider.Core(logger.ParseLevel(cfg.Log.Level))); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting PayPal POS service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Exporter:          cfg.Telemetry.MetricsExporter,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)
	posMetrics, err := telemetry.NewPOSMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create POS metrics", zap.Error(err))
	}

	// Database
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		DBName:     cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if cfg.Database.MigrateOnStart {
		if err := migrateUp(db.SQL(), log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Caches
	stores, err := cache.NewStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	).Create(ctx)
	if err != nil {
		log.Fatal("Failed to initialize caches", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing caches", zap.Error(err))
		}
	}()

	// iZettle
	izettleClient := izettle.NewClient(cfg.IZettle, stores.Tokens, log)
	inventoryResource := izettle.NewInventoryResource(izettleClient, cfg.IZettle.InventoryURL)
	subscriptionResource := izettle.NewSubscriptionResource(izettleClient, cfg.IZettle.SubscriptionURL)

	// Repositories
	salesChannelRepo := persistence.NewGormSalesChannelRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	snapshotRepo := persistence.NewGormInventorySnapshotRepository(db.DB)
	runRepo := persistence.NewGormRunRepository(db.DB)
	paymentMethodRepo := persistence.NewGormPaymentMethodRepository(db.DB)
	shippingMethodRepo := persistence.NewGormShippingMethodRepository(db.DB)
	salesChannelTypeRepo := persistence.NewGormSalesChannelTypeRepository(db.DB)

	// Domain events
	eventBus := event.NewInMemoryEventBus(log)
	var kafkaForwarder *event.KafkaForwarder
	if cfg.Kafka.Enabled {
		kafkaForwarder = event.NewKafkaForwarder(
			event.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic),
			cfg.Kafka.Topic,
			log,
		)
		eventBus.Subscribe(kafkaForwarder)
		log.Info("Forwarding domain events to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}
	var publisher shared.EventPublisher = eventBus

	// Application services
	dispatcher := apppos.NewDispatcher(izettle.NewAPIKeyDecoder(), log)
	if err := dispatcher.Register(apppos.NewInventoryUpdateHandler(apppos.InventoryUpdateHandlerConfig{
		Contexts:  apppos.NewInventoryContextFactory(inventoryResource, snapshotRepo),
		Products:  productRepo,
		Snapshots: snapshotRepo,
		Locker:    stores.Locks,
		LockTTL:   cfg.Sync.LockTTL,
		LockWait:  cfg.Sync.LockWait,
		Publisher: publisher,
		Metrics:   posMetrics,
		Logger:    log,
	})); err != nil {
		log.Fatal("Failed to register webhook handler", zap.Error(err))
	}

	webhookService := apppos.NewWebhookService(apppos.WebhookServiceConfig{
		SalesChannels: salesChannelRepo,
		Subscriptions: subscriptionResource,
		Dispatcher:    dispatcher,
		Idempotency:   stores.Idempotency,
		Publisher:     publisher,
		Metrics:       posMetrics,
		Logger:        log,
		Destination:   cfg.WebhookDestination,
		ContactEmail:  cfg.Webhook.ContactEmail,
		DedupeTTL:     cfg.Webhook.DedupeTTL,
	})
	syncService := apppos.NewInventorySyncService(apppos.InventorySyncServiceConfig{
		SalesChannels: salesChannelRepo,
		Products:      productRepo,
		Snapshots:     snapshotRepo,
		Runs:          runRepo,
		Inventory:     inventoryResource,
		Locker:        stores.Locks,
		LockTTL:       cfg.Sync.LockTTL,
		Publisher:     publisher,
		Metrics:       posMetrics,
		Logger:        log,
	})
	lifecycleService := apppos.NewLifecycleService(apppos.LifecycleServiceConfig{
		PaymentMethods:    paymentMethodRepo,
		ShippingMethods:   shippingMethodRepo,
		SalesChannels:     salesChannelRepo,
		SalesChannelTypes: salesChannelTypeRepo,
		Logger:            log,
	})

	// Periodic inventory sync
	inventoryScheduler, err := scheduler.NewInventoryScheduler(scheduler.Config{
		Enabled:        cfg.Sync.Enabled,
		Interval:       cfg.Sync.Interval,
		RunTimeout:     cfg.Sync.RunTimeout,
		MaxConcurrency: cfg.Sync.MaxConcurrency,
	}, salesChannelRepo, scheduler.SyncerFunc(func(ctx context.Context, id uuid.UUID) error {
		_, err := syncService.SyncInventory(ctx, id)
		return err
	}), log)
	if err != nil {
		log.Fatal("Failed to create inventory scheduler", zap.Error(err))
	}

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := router.NewEngine(router.Options{
		ServiceName:    cfg.Telemetry.ServiceName,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		CORS: middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
			MaxAge:       12 * time.Hour,
		},
		MaxBodySize: cfg.HTTP.MaxBodySize,
		Meter:       meter,
		Metrics:     meterProvider.Handler(),
		Auth:        auth.NewJWTService(cfg.JWT),
		Logger:      log,
	}, router.Handlers{
		Webhook:   handler.NewWebhookHandler(webhookService),
		Sync:      handler.NewSyncHandler(syncService),
		Lifecycle: handler.NewLifecycleHandler(lifecycleService),
		System:    handler.NewSystemHandler(cfg.App.Name, version, db),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	runCtx, stopRun := context.WithCancel(ctx)
	defer stopRun()
	if err := inventoryScheduler.Start(runCtx); err != nil {
		log.Fatal("Failed to start inventory scheduler", zap.Error(err))
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stopRun()
	if err := inventoryScheduler.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping inventory scheduler", zap.Error(err))
	}
	if kafkaForwarder != nil {
		if err := kafkaForwarder.Close(); err != nil {
			log.Error("Error closing kafka writer", zap.Error(err))
		}
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracing", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down log exporter", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// migrateUp applies the embedded schema migrations
func migrateUp(db *sql.DB, log *zap.Logger) error {
	m, err := migration.NewEmbedded(db, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Error closing migrator", zap.Error(err))
		}
	}()
	return m.Up()
}
