package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mleong/mangobox-backend/api/routes"
	"github.com/mleong/mangobox-backend/internal/admins"
	"github.com/mleong/mangobox-backend/internal/catalog"
	"github.com/mleong/mangobox-backend/internal/notify"
	"github.com/mleong/mangobox-backend/internal/orders"
	"github.com/mleong/mangobox-backend/internal/promos"
	"github.com/mleong/mangobox-backend/internal/settings"
	"github.com/mleong/mangobox-backend/pkg/config"
	"github.com/mleong/mangobox-backend/pkg/db"
	"github.com/mleong/mangobox-backend/pkg/logger"
	"github.com/mleong/mangobox-backend/pkg/metrics"
	"github.com/mleong/mangobox-backend/pkg/migrate"
	"github.com/mleong/mangobox-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	adminRepo := admins.NewRepository(dbClient.DB())
	adminService, err := admins.NewService(adminRepo, cfg.JWT, cfg.Password, cfg.AdminSeed, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin service", err)
		os.Exit(1)
	}
	if err := adminService.EnsureSeedAdmin(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to seed admin user", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	promoRepo := promos.NewRepository(dbClient.DB())
	promoService, err := promos.NewService(promoRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create promo service", err)
		os.Exit(1)
	}

	settingsService, err := settings.NewService(settings.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	orderMetrics := metrics.NewOrderMetrics(registry)

	var notifyClient *notify.Client
	if cfg.Telegram.Enabled() && cfg.FeatureFlags.NotifyOnOrders {
		notifyClient, err = notify.NewClient(
			cfg.Telegram.BotToken,
			cfg.Telegram.ChatID,
			notify.WithBaseURL(cfg.Telegram.BaseURL),
			notify.WithMaxAttempts(cfg.Telegram.MaxAttempts),
			notify.WithHTTPClient(&http.Client{Timeout: cfg.Telegram.Timeout}),
		)
		if err != nil {
			logg.Error(context.Background(), "failed to create telegram client", err)
			os.Exit(1)
		}
	}

	var orderService orders.Service
	if notifyClient != nil {
		orderService, err = orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, catalogService, promoRepo, settingsService, notifyClient, orderMetrics, logg)
	} else {
		orderService, err = orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, catalogService, promoRepo, settingsService, nil, orderMetrics, logg)
	}
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			adminService,
			catalogService,
			promoService,
			settingsService,
			orderService,
		),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
