package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/RMarques88/gelatoprod-backend/api/routes"
	"github.com/RMarques88/gelatoprod-backend/internal/notifications"
	"github.com/RMarques88/gelatoprod-backend/internal/production"
	"github.com/RMarques88/gelatoprod-backend/internal/products"
	"github.com/RMarques88/gelatoprod-backend/internal/recipes"
	"github.com/RMarques88/gelatoprod-backend/internal/stock"
	"github.com/RMarques88/gelatoprod-backend/pkg/config"
	"github.com/RMarques88/gelatoprod-backend/pkg/db"
	"github.com/RMarques88/gelatoprod-backend/pkg/logger"
	"github.com/RMarques88/gelatoprod-backend/pkg/metrics"
	"github.com/RMarques88/gelatoprod-backend/pkg/migrate"
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	stockService, err := stock.NewService(stock.ServiceParams{
		DB:                  dbClient.DB(),
		Repo:                stock.NewRepository(dbClient.DB()),
		Products:            products.NewRepository(dbClient.DB()),
		Notifier:            notificationsService,
		Logger:              logg,
		Metrics:             ledgerMetrics,
		MaxAdjustAttempts:   cfg.Ledger.MaxAdjustAttempts,
		NotificationTimeout: cfg.Ledger.NotificationTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create stock service", err)
		os.Exit(1)
	}

	recipeRepo := recipes.NewRepository(dbClient.DB())

	productionService, err := production.NewService(production.ServiceParams{
		Repo:    production.NewRepository(dbClient.DB()),
		Recipes: recipeRepo,
		Stock:   stockService,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create production service", err)
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
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			registry,
			stockService,
			recipeRepo,
			productionService,
			notificationsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
