package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rafaelschmitt/fleetfuel-backend/api/routes"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/auth"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/evidence"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/purchases"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/sectors"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/users"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/vehicles"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/config"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/logger"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/metrics"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/migrate"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/ocr"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/redis"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/storage/supabase"
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

	// The OCR provider is a soft dependency outside prod; without it the
	// validator skips checks and identify reports the provider outage.
	var textReader ocr.TextReader
	if visionClient, visionErr := ocr.NewClient(cfg.Vision); visionErr != nil {
		if cfg.App.IsProd() {
			logg.Error(context.Background(), "failed to bootstrap vision client", visionErr)
			os.Exit(1)
		}
		logg.Warn(context.Background(), "vision client disabled, plate and odometer checks degraded")
	} else {
		textReader = visionClient
	}

	storageClient, err := supabase.NewClient(context.Background(), cfg.Supabase, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap blob storage", err)
		os.Exit(1)
	}

	vehicleRepo := vehicles.NewRepository(dbClient.DB())
	purchaseRepo := purchases.NewRepository(dbClient.DB())
	userRepo := users.NewRepository(dbClient.DB())
	sectorRepo := sectors.NewRepository(dbClient.DB())

	authService, err := auth.NewService(userRepo, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	vehicleService, err := vehicles.NewService(vehicleRepo, dbClient, textReader, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create vehicle service", err)
		os.Exit(1)
	}
	purchaseService, err := purchases.NewService(purchaseRepo, vehicleRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create purchase service", err)
		os.Exit(1)
	}
	evidenceService, err := evidence.NewService(purchaseRepo, vehicleRepo, dbClient, textReader, storageClient, logg, cfg.Uploads.TempDir)
	if err != nil {
		logg.Error(context.Background(), "failed to create evidence service", err)
		os.Exit(1)
	}
	userService, err := users.NewService(userRepo, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}
	sectorService, err := sectors.NewService(sectorRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create sector service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	router := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		Metrics:     httpMetrics,
		Auth:        authService,
		Vehicles:    vehicleService,
		Purchases:   purchaseService,
		Evidence:    evidenceService,
		Users:       userService,
		Sectors:     sectorService,
		PromHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

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
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
