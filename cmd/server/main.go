package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appbilling "github.com/hotel/backoffice/internal/application/billing"
	appnotification "github.com/hotel/backoffice/internal/application/notification"
	"github.com/hotel/backoffice/internal/domain/billing"
	"github.com/hotel/backoffice/internal/domain/shared"
	"github.com/hotel/backoffice/internal/infrastructure/cache"
	"github.com/hotel/backoffice/internal/infrastructure/config"
	"github.com/hotel/backoffice/internal/infrastructure/event"
	"github.com/hotel/backoffice/internal/infrastructure/logger"
	"github.com/hotel/backoffice/internal/infrastructure/notification"
	"github.com/hotel/backoffice/internal/infrastructure/persistence"
	"github.com/hotel/backoffice/internal/interfaces/http/handler"
	"github.com/hotel/backoffice/internal/interfaces/http/middleware"
	"github.com/hotel/backoffice/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() { _ = log.Sync() }()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version))

	db, err := persistence.NewDatabase(&cfg.Database, logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level)))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	idempotency := newIdempotencyStore(cfg, log)
	defer func() { _ = idempotency.Close() }()

	serializer := event.NewJSONSerializer()
	serializer.Register(&billing.PaymentRecordedEvent{
		BaseDomainEvent: shared.BaseDomainEvent{Type: billing.EventTypePaymentRecorded},
	})
	serializer.Register(&billing.PaymentCompletedEvent{
		BaseDomainEvent: shared.BaseDomainEvent{Type: billing.EventTypePaymentCompleted},
	})

	txManager := persistence.NewGormTxManager(db.DB)
	ledger := appbilling.NewLedgerService(txManager, billing.NewReconciliationService(), serializer, log.Named("ledger"))

	mailer := notification.NewSMTPMailer(cfg.Mail, log)
	dispatcher := appnotification.NewReceiptDispatcher(mailer, cfg.Mail.FrontDesk, log.Named("dispatcher"))

	processor := event.NewOutboxProcessor(
		persistence.NewGormOutboxRepository(db.DB),
		serializer,
		idempotency,
		log,
		event.ProcessorConfig{
			BatchSize:    cfg.Event.BatchSize,
			PollInterval: cfg.Event.PollInterval,
		},
	)
	processor.Subscribe(dispatcher)

	processorCtx, cancelProcessor := context.WithCancel(context.Background())
	defer cancelProcessor()
	if cfg.Event.ProcessorEnabled {
		processor.Start(processorCtx)
		defer processor.Stop()
		log.Info("Outbox processor started",
			zap.Int("batch_size", cfg.Event.BatchSize),
			zap.Duration("poll_interval", cfg.Event.PollInterval))
	}

	engine := newEngine(cfg, log)

	systemHandler := handler.NewSystemHandler(db, version)
	engine.GET("/health", systemHandler.Health)

	router.NewRouter(engine).
		Register(handler.NewPaymentHandler(ledger)).
		Register(handler.NewBookingHandler(ledger)).
		Register(handler.NewSettingsHandler(ledger)).
		Register(systemHandler).
		Setup()

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
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}

// newIdempotencyStore prefers Redis so multiple instances share one
// deduplication space; an unreachable Redis falls back to the
// in-memory store.
func newIdempotencyStore(cfg *config.Config, log *zap.Logger) shared.IdempotencyStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unavailable, using in-memory idempotency store", zap.Error(err))
		_ = client.Close()
		return cache.NewInMemoryIdempotencyStore()
	}

	log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr()))
	return cache.NewRedisIdempotencyStore(client)
}

func newEngine(cfg *config.Config, log *zap.Logger) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORS(middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		}),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	return engine
}
