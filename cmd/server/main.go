package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	catalogapp "github.com/pharmanet/backend/internal/application/catalog"
	identityapp "github.com/pharmanet/backend/internal/application/identity"
	inventoryapp "github.com/pharmanet/backend/internal/application/inventory"
	reportapp "github.com/pharmanet/backend/internal/application/report"
	shortageapp "github.com/pharmanet/backend/internal/application/shortage"
	transferapp "github.com/pharmanet/backend/internal/application/transfer"
	"github.com/pharmanet/backend/internal/domain/shared"
	"github.com/pharmanet/backend/internal/domain/transfer"
	"github.com/pharmanet/backend/internal/infrastructure/auth"
	"github.com/pharmanet/backend/internal/infrastructure/cache"
	"github.com/pharmanet/backend/internal/infrastructure/config"
	"github.com/pharmanet/backend/internal/infrastructure/event"
	"github.com/pharmanet/backend/internal/infrastructure/logger"
	"github.com/pharmanet/backend/internal/infrastructure/notification"
	"github.com/pharmanet/backend/internal/infrastructure/persistence"
	"github.com/pharmanet/backend/internal/infrastructure/scheduler"
	"github.com/pharmanet/backend/internal/interfaces/http/handler"
	"github.com/pharmanet/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting PharmaNet backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLevel := gormlogger.Warn
	if cfg.Log.Level == "debug" {
		gormLevel = gormlogger.Info
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.NewGormLogger(log, gormLevel))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	branchRepo := persistence.NewGormBranchRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	stockRepo := persistence.NewGormStockEntryRepository(db.DB)
	requestRepo := persistence.NewGormTransferRequestRepository(db.DB)
	shortageRepo := persistence.NewGormShortageReportRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	statsReader := persistence.NewGormStatsReader(db.DB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eventBus := event.NewInMemoryEventBus(log)

	hub := notification.NewHub(log)
	go hub.Run(ctx)

	notifier := notification.NewNotifier(hub, log)
	var notifyHandler shared.EventHandler = notifier
	if cfg.Event.DedupEnabled {
		notifyHandler = event.NewIdempotentHandler(notifier, newIdempotencyStore(cfg, log), shared.IdempotencyConfig{
			TTL:     cfg.Event.DedupRetention,
			Enabled: true,
		}, log)
	}
	eventBus.Subscribe(notifyHandler, notifier.EventTypes()...)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	resolver := transfer.NewBranchResolver(branchRepo, stockRepo, requestRepo)

	authService := identityapp.NewAuthService(userRepo, jwtService, log)
	userService := identityapp.NewUserService(userRepo, log)
	catalogService := catalogapp.NewService(branchRepo, productRepo, log)
	stockService := inventoryapp.NewStockService(stockRepo, eventBus, log)
	transferService := transferapp.NewService(requestRepo, stockRepo, shortageRepo, resolver, eventBus, log, cfg.Transfer.PendingWindow)
	shortageService := shortageapp.NewService(shortageRepo, eventBus, log)
	statsService := reportapp.NewStatsService(requestRepo, shortageRepo, statsReader, log)
	expirationService := transferapp.NewExpirationService(requestRepo, stockRepo, eventBus, log)

	var expiryScheduler *scheduler.ExpiryScheduler
	if cfg.Transfer.AutoExpireEnabled {
		schedulerCfg := scheduler.DefaultExpirySchedulerConfig()
		if cfg.Transfer.ExpiryCheckInterval > 0 {
			schedulerCfg.CheckInterval = cfg.Transfer.ExpiryCheckInterval
		}
		expiryScheduler = scheduler.NewExpiryScheduler(schedulerCfg, expirationService, log)
		if err := expiryScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start expiry scheduler", zap.Error(err))
		}
	}

	r := router.New(cfg, jwtService, log)
	r.Register(
		handler.NewAuthHandler(authService, userService, log),
		handler.NewUserHandler(userService, log),
		handler.NewBranchHandler(catalogService, log),
		handler.NewProductHandler(catalogService, log),
		handler.NewStockHandler(stockService, log),
		handler.NewTransferHandler(transferService, log),
		handler.NewShortageHandler(shortageService, log),
		handler.NewStatsHandler(statsService, log),
		handler.NewWSHandler(hub, log),
	)
	engine := r.Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	if expiryScheduler != nil {
		if err := expiryScheduler.Stop(shutdownCtx); err != nil {
			log.Error("Expiry scheduler shutdown failed", zap.Error(err))
		}
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus shutdown failed", zap.Error(err))
	}
	cancel()

	log.Info("Shutdown complete")
}

// newIdempotencyStore prefers Redis when configured and falls back to the
// in-process store so a standalone deployment still deduplicates events.
func newIdempotencyStore(cfg *config.Config, log *zap.Logger) shared.IdempotencyStore {
	if cfg.Redis.Host != "" {
		store, err := cache.NewRedisIdempotencyStore(cfg.Redis)
		if err == nil {
			log.Info("Using Redis idempotency store", zap.String("addr", cfg.Redis.Addr()))
			return store
		}
		log.Warn("Redis unavailable, using in-memory idempotency store", zap.Error(err))
	}
	return cache.NewInMemoryIdempotencyStore()
}
