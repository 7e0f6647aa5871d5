package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kevin07696/intesa-checkout/internal/adapters/database"
	"github.com/kevin07696/intesa-checkout/internal/adapters/intesa"
	"github.com/kevin07696/intesa-checkout/internal/adapters/mail"
	"github.com/kevin07696/intesa-checkout/internal/adapters/ports"
	"github.com/kevin07696/intesa-checkout/internal/adapters/postgres"
	redisstore "github.com/kevin07696/intesa-checkout/internal/adapters/redis"
	"github.com/kevin07696/intesa-checkout/internal/config"
	"github.com/kevin07696/intesa-checkout/internal/handlers/checkout"
	"github.com/kevin07696/intesa-checkout/internal/services/payment"
	"github.com/kevin07696/intesa-checkout/pkg/middleware"
	"github.com/kevin07696/intesa-checkout/pkg/observability"
	"github.com/kevin07696/intesa-checkout/pkg/shutdown"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file; environment variables override it")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	logger := initLogger(cfg)
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting intesa checkout",
		zap.String("environment", cfg.Environment),
		zap.String("mode", cfg.Gateway.Mode),
	)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Service stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownManager := shutdown.NewManager(logger, cfg.Server.ShutdownTimeout)

	// Store key
	secretManager, err := initSecretManager(initCtx, cfg.Secrets, logger)
	if err != nil {
		return fmt.Errorf("init secret manager: %w", err)
	}
	if err := cfg.Gateway.ResolveStoreKey(initCtx, secretManager); err != nil {
		return err
	}
	gatewayConfig := cfg.Gateway.Domain()

	gateway, err := intesa.NewGateway(gatewayConfig, logger.Named("intesa"))
	if err != nil {
		return fmt.Errorf("init gateway: %w", err)
	}
	logger.Info("Gateway configured",
		zap.Stringer("config", gatewayConfig),
		zap.String("redirect_url", gateway.RedirectURL()),
	)

	// Ledger
	dbConfig := database.DefaultPostgreSQLConfig(cfg.Database.ConnectionString())
	dbConfig.MaxConns = cfg.Database.MaxConns
	dbConfig.MinConns = cfg.Database.MinConns
	db, err := database.NewPostgreSQLAdapter(initCtx, dbConfig, logger)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	shutdownManager.RegisterNoErr("postgres", db.Close)

	if err := db.EnsureSchema(initCtx); err != nil {
		return err
	}
	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	db.StartPoolMonitoring(monitorCtx, time.Minute)
	shutdownManager.RegisterNoErr("pool-monitor", stopMonitor)

	ledger := postgres.NewPaymentLedger(db.Pool(), db.SimpleQueryTimeout(), logger)

	// Order snapshots
	redisClient := redisstore.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Ping(initCtx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	shutdownManager.RegisterCloser("redis", redisClient)
	orders := redisstore.NewOrderStore(redisClient, cfg.Redis.KeyPrefix, logger)

	var notifier ports.Notifier
	if cfg.Mail.Enabled {
		notifier = mail.NewNotifier(mail.Config{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		}, nil, logger)
	}

	checkoutService := payment.NewCheckoutService(gatewayConfig, gateway, orders, cfg.Server.OrderTTL, logger)
	callbackService := payment.NewCallbackService(gatewayConfig, gateway, orders, ledger, notifier, logger)

	// Metrics and health
	healthChecker := observability.NewHealthChecker(map[string]observability.Pinger{
		"postgres": observability.PingFunc(db.HealthCheck),
		"redis": observability.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}),
	})
	metricsServer := observability.StartMetricsServer(cfg.Server.MetricsPort, healthChecker, logger)
	shutdownManager.Register("metrics-server", metricsServer.Shutdown)

	// HTTP
	rateLimiter := middleware.NewRateLimiter(cfg.Server.CallbackRPS, cfg.Server.CallbackBurst, logger)
	shutdownManager.RegisterNoErr("rate-limiter", rateLimiter.Shutdown)

	inFlight := shutdown.NewInFlightTracker("callbacks", logger)
	shutdownManager.Register("callbacks", inFlight.Shutdown)

	orderAuth := middleware.NewAPIKeyAuth(cfg.Server.OrderAPIKeys, logger)

	router := httprouter.New()
	checkout.NewHandler(checkoutService, callbackService, cfg.Server.CheckoutURLs, logger).
		Register(router, orderAuth.Middleware, rateLimiter.Middleware, inFlight.Middleware)

	securityHeaders := middleware.NewSecurityHeaders(!cfg.IsProduction(), gatewayConfig.LiveRedirectURL, gatewayConfig.TestRedirectURL)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           securityHeaders.Middleware(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	shutdownManager.Register("http-server", httpServer.Shutdown)

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	shutdownManager.WaitForShutdown()
	return nil
}

func initLogger(cfg *config.Config) *zap.Logger {
	var zapCfg zap.Config
	if cfg.IsProduction() && !cfg.Logger.Development {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
