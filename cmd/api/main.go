package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ilmekten/shop-backend/api/routes"
	"github.com/ilmekten/shop-backend/internal/campaigns"
	"github.com/ilmekten/shop-backend/internal/cart"
	"github.com/ilmekten/shop-backend/internal/catalog"
	checkoutsvc "github.com/ilmekten/shop-backend/internal/checkout"
	"github.com/ilmekten/shop-backend/internal/corporate"
	"github.com/ilmekten/shop-backend/internal/coupons"
	"github.com/ilmekten/shop-backend/internal/favorites"
	"github.com/ilmekten/shop-backend/internal/notify"
	"github.com/ilmekten/shop-backend/internal/orders"
	"github.com/ilmekten/shop-backend/internal/pricing"
	"github.com/ilmekten/shop-backend/pkg/config"
	"github.com/ilmekten/shop-backend/pkg/kvstore"
	"github.com/ilmekten/shop-backend/pkg/logger"
	"github.com/ilmekten/shop-backend/pkg/metrics"
	"github.com/ilmekten/shop-backend/pkg/migrate"
	pkgredis "github.com/ilmekten/shop-backend/pkg/redis"
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

	storeClient, err := kvstore.New(ctx, cfg.Store, logg)
	if err != nil {
		logg.Error(ctx, "failed to open store", err)
		os.Exit(1)
	}
	defer func() {
		if err := storeClient.Close(); err != nil {
			logg.Error(ctx, "error closing store", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, storeClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *pkgredis.Client
	if cfg.Redis.Configured() {
		redisClient, err = pkgredis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(ctx, "error closing redis", err)
			}
		}()
	} else {
		logg.Info(ctx, "redis not configured, checkout idempotency guard disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	shopMetrics := metrics.NewShopMetrics(registry)

	store := kvstore.NewGormStore(storeClient)

	catalogSvc, err := catalog.NewService(ctx, store)
	if err != nil {
		logg.Error(ctx, "failed to load catalog", err)
		os.Exit(1)
	}
	cartSvc, err := cart.NewService(ctx, store, catalogSvc)
	if err != nil {
		logg.Error(ctx, "failed to load cart", err)
		os.Exit(1)
	}
	campaignRegistry, err := campaigns.NewRegistry(ctx, store)
	if err != nil {
		logg.Error(ctx, "failed to load campaigns", err)
		os.Exit(1)
	}
	couponSvc, err := coupons.NewService(ctx, store, shopMetrics)
	if err != nil {
		logg.Error(ctx, "failed to load coupons", err)
		os.Exit(1)
	}
	ledger, err := orders.NewLedger(ctx, store)
	if err != nil {
		logg.Error(ctx, "failed to load orders", err)
		os.Exit(1)
	}
	favoriteSvc, err := favorites.NewService(ctx, store)
	if err != nil {
		logg.Error(ctx, "failed to load favorites", err)
		os.Exit(1)
	}
	corporateSvc, err := corporate.NewService(ctx, store)
	if err != nil {
		logg.Error(ctx, "failed to load corporate orders", err)
		os.Exit(1)
	}

	pricer := pricing.NewCalculator(catalogSvc, campaignRegistry, campaigns.NewEngine(catalogSvc), couponSvc)
	notifier := notify.NewNotifier(cfg.Notify, logg, shopMetrics)

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.Deps{
		Carts:    cartSvc,
		Products: catalogSvc,
		Pricer:   pricer,
		Coupons:  couponSvc,
		Ledger:   ledger,
		Notifier: notifier,
		Logger:   logg,
		Metrics:  shopMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:    cfg,
			Logger:    logg,
			StorePing: storeClient,
			Redis:     redisClient,
			Gatherer:  registry,
			Catalog:   catalogSvc,
			Cart:      cartSvc,
			Campaigns: campaignRegistry,
			Coupons:   couponSvc,
			Pricer:    pricer,
			Ledger:    ledger,
			Checkout:  checkoutService,
			Favorites: favoriteSvc,
			Corporate: corporateSvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
