// Package app wires the application together: configuration, storage,
// gateways, modules and the HTTP server.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kiosko/server/internal/module/catalog"
	"github.com/kiosko/server/internal/module/payment"
	"github.com/kiosko/server/internal/module/payment/provider"
	"github.com/kiosko/server/internal/module/transaction"
	"github.com/kiosko/server/internal/shared/cache"
	"github.com/kiosko/server/internal/shared/config"
	"github.com/kiosko/server/internal/shared/database"
	"github.com/kiosko/server/internal/shared/logger"
	"github.com/kiosko/server/internal/utils/metrics"
	"github.com/kiosko/server/internal/utils/middleware"
)

// App holds the assembled application.
type App struct {
	cfg    *config.Config
	log    *logger.Logger
	zapLog *zap.Logger
	db     *gorm.DB
	redis  redis.UniversalClient
	server *http.Server
}

// New builds the application from configuration.
func New(cfg *config.Config) (*App, error) {
	logCfg := &logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}
	log := logger.New(logCfg)
	zapLog, err := logger.NewZap(logCfg)
	if err != nil {
		return nil, err
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db,
		&catalog.MenuItem{},
		&transaction.Transaction{},
		&transaction.TransactionItem{},
		&transaction.ItemAddon{},
		&payment.PaymentRecord{},
		&payment.GatewayEvent{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	m := metrics.New("kiosko")

	// Catalog
	catalogRepo := catalog.NewRepository(db)
	catalogService := catalog.NewService(catalogRepo, zapLog)
	catalogHandler := catalog.NewHandler(catalogService)

	// Transactions
	txnRepo := transaction.NewRepository(db)
	orderNos := transaction.NewOrderNumberSource(redisClient, zapLog)
	txnService := transaction.NewService(txnRepo, catalogService, orderNos, cfg.Payment.Currency, zapLog)
	txnHandler := transaction.NewHandler(txnService)

	// Payment gateways
	pmCfg := cfg.Payment.PayMongo
	payMongo := provider.NewPayMongo(provider.PayMongoConfig{
		BaseURL:       pmCfg.BaseURL,
		SecretKey:     pmCfg.SecretKey,
		WebhookSecret: pmCfg.WebhookSecret,
		SuccessURL:    pmCfg.SuccessURL,
		FailedURL:     pmCfg.FailedURL,
		LiveMode:      pmCfg.LiveMode,
	}, provider.NewClient("paymongo", cfg.Payment.HTTPTimeout, m, zapLog), zapLog)

	xdCfg := cfg.Payment.Xendit
	xendit := provider.NewXendit(provider.XenditConfig{
		BaseURL:       xdCfg.BaseURL,
		APIKey:        xdCfg.APIKey,
		CallbackToken: xdCfg.CallbackToken,
		CallbackURL:   xdCfg.CallbackURL,
	}, provider.NewClient("xendit", cfg.Payment.HTTPTimeout, m, zapLog), zapLog)

	registry := payment.NewRegistry(payMongo, xendit)

	// Payment lifecycle
	paymentRepo := payment.NewRepository(db)
	paymentService := payment.NewService(paymentRepo, txnService, registry, m, zapLog)
	poller := payment.NewPoller(txnService, cfg.Payment.PollInterval, cfg.Payment.PollMaxWait, m, zapLog)
	paymentHandler := payment.NewHandler(paymentService, poller)
	webhookHandler := payment.NewWebhookHandler(paymentService, zapLog)

	// HTTP
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.Logging(log),
		middleware.Metrics(m),
		middleware.CORS(middleware.DefaultCORSConfig()),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	webhookHandler.RegisterRoutes(router)

	api := router.Group("/api/v1")
	catalogHandler.RegisterRoutes(api)
	txnHandler.RegisterRoutes(api)
	paymentHandler.RegisterRoutes(api)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		cfg:    cfg,
		log:    log,
		zapLog: zapLog,
		db:     db,
		redis:  redisClient,
		server: server,
	}, nil
}

// Run starts the HTTP server and blocks until it stops.
func (a *App) Run() error {
	a.log.Info("server starting", "address", a.cfg.Server.Address)
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info("server shutting down")

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	if err := cache.Close(a.redis); err != nil {
		a.log.Warn("close redis", "error", err)
	}
	if err := database.Close(a.db); err != nil {
		a.log.Warn("close database", "error", err)
	}
	_ = a.zapLog.Sync()
	return nil
}
