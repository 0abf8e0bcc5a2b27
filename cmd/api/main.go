package main

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gocartshop/gocart-api/api/routes"
	"github.com/gocartshop/gocart-api/internal/cart"
	"github.com/gocartshop/gocart-api/internal/catalog"
	checkoutsvc "github.com/gocartshop/gocart-api/internal/checkout"
	"github.com/gocartshop/gocart-api/internal/events"
	"github.com/gocartshop/gocart-api/internal/session"
	"github.com/gocartshop/gocart-api/pkg/config"
	"github.com/gocartshop/gocart-api/pkg/currency"
	"github.com/gocartshop/gocart-api/pkg/env"
	"github.com/gocartshop/gocart-api/pkg/kv"
	"github.com/gocartshop/gocart-api/pkg/logger"
	"github.com/gocartshop/gocart-api/pkg/metrics"
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

	ctx := context.Background()

	storage, err := openStorage(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to open storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			logg.Error(ctx, "error closing storage", err)
		}
	}()

	registry := prometheus.NewRegistry()
	storefrontMetrics := metrics.NewStorefrontMetrics(registry)

	bus := events.NewBus(logg)

	cartService, err := cart.NewService(bus, logg)
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}

	sessionService, err := session.NewService(storage, bus, logg)
	if err != nil {
		logg.Error(ctx, "failed to create session service", err)
		os.Exit(1)
	}
	if err := sessionService.Load(ctx); err != nil {
		logg.Error(ctx, "failed to rehydrate session state", err)
		os.Exit(1)
	}

	converter := currency.NewConverter(cfg.Currency)

	catalogClient, err := catalog.NewClient(cfg.Catalog, logg, storefrontMetrics)
	if err != nil {
		logg.Error(ctx, "failed to create catalog client", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(cartService, sessionService, converter, bus, storefrontMetrics, logg)
	if err != nil {
		logg.Error(ctx, "failed to create checkout service", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)

	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"storage": strings.ToLower(cfg.Storage.Backend),
	})
	logg.Info(ctx, "starting storefront api")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:    cfg,
			Logger:    logg,
			Storage:   storagePinger(storage),
			Sessions:  sessionService,
			Cart:      cartService,
			Checkout:  checkoutService,
			Catalog:   catalogClient,
			Converter: converter,
			Metrics:   storefrontMetrics,
			Gatherer:  registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "storefront api stopped unexpectedly", err)
		os.Exit(1)
	}
}

func openStorage(ctx context.Context, cfg *config.Config, logg *logger.Logger) (kv.Store, error) {
	switch strings.ToLower(cfg.Storage.Backend) {
	case config.StorageBackendRedis:
		return kv.NewRedis(ctx, cfg.Redis, logg)
	case config.StorageBackendMemory:
		return kv.NewMemory(), nil
	default:
		return kv.NewSQLite(ctx, cfg.Storage, logg)
	}
}

func storagePinger(store kv.Store) kv.Pinger {
	if p, ok := store.(kv.Pinger); ok {
		return p
	}
	return nil
}
