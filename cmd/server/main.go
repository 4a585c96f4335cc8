package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"payment-api/internal/api"
	"payment-api/internal/config"
	"payment-api/internal/database"
	"payment-api/internal/middleware"
	"payment-api/internal/momo"
	"payment-api/internal/services"
	"payment-api/pkg/logging"
)

func main() {
	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to initialize config:", err)
	}

	// Initialize logging
	if err := logging.InitLogging(cfg.LogLevel, cfg.Mode != gin.ReleaseMode); err != nil {
		log.Fatal("Failed to initialize logging:", err)
	}
	defer logging.Sync()

	if missing := cfg.Validate(); len(missing) > 0 {
		logging.Warnw("missing configuration, affected requests will fail", "keys", missing)
	}

	// Initialize Sentry
	sentryEnabled := cfg.SentryDSN != ""
	if sentryEnabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.SentryEnvironment,
		}); err != nil {
			logging.Errorf("Failed to initialize Sentry: %v", err)
			sentryEnabled = false
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Initialize database
	var db *gorm.DB
	var repo services.ReconciliationRepository
	if cfg.ReconciliationJournalEnabled {
		db, err = database.OpenDatabase(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to initialize database:", err)
		}
		repo = database.NewReconciliationStore(db)
	}

	// Initialize the applied-transaction cache
	var redisClient *redis.Client
	var cache services.TransactionCache
	if cfg.TransactionCacheTTL > 0 {
		if cfg.RedisURL != "" {
			redisClient, err = database.OpenRedis(cfg.RedisURL)
			if err != nil {
				logging.Warnw("Redis unavailable, using in-process transaction cache", "error", err)
			}
		}
		if redisClient != nil {
			cache = services.NewRedisTransactionCache(redisClient, cfg.TransactionCacheTTL)
		} else {
			cache = services.NewMemoryTransactionCache(cfg.TransactionCacheTTL)
		}
	}
	defer database.Close(db, redisClient)

	// Alerting for entries that need manual follow-up
	var alerters services.MultiAlerter
	if cfg.BrevoAPIKey != "" && cfg.ReconciliationAlertEmail != "" {
		alerters = append(alerters, services.NewBrevoAlerter(cfg.BrevoAPIKey, cfg.BrevoFromEmail, cfg.ReconciliationAlertEmail))
	}
	if sentryEnabled {
		alerters = append(alerters, services.NewSentryAlerter(nil))
	}
	var alerter services.Alerter
	if len(alerters) > 0 {
		alerter = alerters
	}
	journal := services.NewReconciliationService(repo, alerter)

	// Wire the payment flows
	backend := services.NewBackendClient(cfg.Backend)
	orchestrator := services.NewEntitlementOrchestrator(backend, backend, journal, cfg.SubscriptionPeriod())
	verifier := services.NewNotificationVerifier(cfg.MoMo, orchestrator, cache)
	composer := services.NewPaymentComposer(cfg.MoMo, momo.NewClient(cfg.MoMo), backend)

	handlers := api.Handlers{
		Notifications:  api.NewNotificationHandler(verifier, cfg.IPNProcessingTimeout),
		Payments:       api.NewPaymentHandler(composer),
		Reconciliation: api.NewReconciliationHandler(journal),
	}

	if cfg.Upload.Bucket != "" {
		uploads, err := services.NewUploadService(context.Background(), cfg.Upload)
		if err != nil {
			logging.Errorf("Failed to initialize upload service: %v", err)
		} else {
			handlers.Uploads = api.NewUploadHandler(uploads)
		}
	}

	// Set Gin mode
	gin.SetMode(cfg.Mode)

	// Create Gin engine
	r := gin.New()
	r.Use(gin.Recovery(), middleware.LoggingMiddleware(), middleware.SentryMiddleware(sentryEnabled))

	// Setup routes
	api.SetupRoutes(r, handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Start server
	go func() {
		logging.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Infof("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.IPNProcessingTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Errorf("Server forced to shutdown: %v", err)
	}
}
