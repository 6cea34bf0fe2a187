package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/brightline-hq/brightline/internal/api/router"
	"github.com/brightline-hq/brightline/internal/appointments"
	"github.com/brightline-hq/brightline/internal/availability"
	appconfig "github.com/brightline-hq/brightline/internal/config"
	"github.com/brightline-hq/brightline/internal/demorequests"
	"github.com/brightline-hq/brightline/internal/observability/metrics"
	"github.com/brightline-hq/brightline/pkg/logging"
)

func main() {
	// Load .env in local development; ignored when absent.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting brightline API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	schedulingMetrics := metrics.NewSchedulingMetrics(nil)

	// Database pool. Without one the API falls back to in-memory demo
	// request capture only; slot suggestion and booking commit need the
	// availability tables.
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(context.Background()); err != nil {
			logger.Error("database unreachable", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("DATABASE_URL not set; scheduling endpoints limited to demo request capture")
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unreachable; slot suggestions uncached", "error", err)
			redisClient = nil
		}
	}

	routerCfg := &router.Config{
		Logger:             logger,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: 10,
		RateLimitBurst:     30,
	}

	var demoRepo demorequests.Repository
	if pool != nil {
		demoRepo = demorequests.NewPostgresRepository(pool)
	} else {
		demoRepo = demorequests.NewInMemoryRepository()
	}
	routerCfg.DemoRequestHandler = demorequests.NewHandler(demoRepo, schedulingMetrics, logger)

	if pool != nil {
		slotCache := availability.NewCache(redisClient, cfg.AvailabilityCacheTTL, logger)
		availabilitySvc := availability.NewService(
			availability.NewPostgresRepository(pool),
			slotCache,
			schedulingMetrics,
			logger,
		)
		routerCfg.AvailabilityHandler = availability.NewHandler(availabilitySvc, logger)

		appointmentSvc := appointments.NewService(
			appointments.NewPostgresRepository(pool),
			schedulingMetrics,
			logger,
		)
		routerCfg.AppointmentHandler = appointments.NewHandler(appointmentSvc, logger)
	}

	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
