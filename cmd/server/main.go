// Package main runs the tunegrid catalog and wallet API server.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	app "github.com/tunegrid/service_layer/internal/app"
	"github.com/tunegrid/service_layer/internal/app/httpapi"
	"github.com/tunegrid/service_layer/internal/app/storage/redisstore"
	"github.com/tunegrid/service_layer/internal/app/txn"
	"github.com/tunegrid/service_layer/internal/config"
	"github.com/tunegrid/service_layer/internal/logging"
	"github.com/tunegrid/service_layer/internal/metrics"
	"github.com/tunegrid/service_layer/internal/middleware"
)

const serviceName = "tunegrid"

func main() {
	var (
		envFile    = flag.String("env", "", "Path to .env file (optional)")
		configFile = flag.String("config", "", "Path to YAML config file (optional)")
	)
	flag.Parse()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatalf("load env (%s): %v", *envFile, err)
		}
	} else {
		// Best effort: a local .env is a convenience, not a requirement.
		_ = godotenv.Load()
	}

	cfg, err := config.LoadOrDefault(*configFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(serviceName, cfg.LogLevel, cfg.LogFormat)
	m := metrics.New(serviceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := redisstore.New(ctx, redisstore.Config{
		Addr:     cfg.RedisAddr,
		DB:       cfg.RedisDB,
		PoolSize: cfg.RedisPoolSize,
	})
	if err != nil {
		log.Fatalf("connect to store: %v", err)
	}
	defer store.Close()
	logger.Info("connected to redis", "addr", cfg.RedisAddr)

	application := app.New(app.Config{
		Store:   store,
		Logger:  logger,
		Metrics: m,
		Txn: txn.Config{
			MaxAttempts: cfg.TransferMaxAttempts,
			Timeout:     cfg.TransferTimeout,
		},
	})

	if cfg.SeedDemo {
		if err := seedDemoData(ctx, application); err != nil {
			logger.Warn("demo seed failed", "err", err)
		} else {
			logger.Info("demo data seeded")
		}
	}

	router := httpapi.NewHandler(application)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	router.Use(middleware.MetricsMiddleware(serviceName, m))

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst, logger)
	limiter.StartCleanup(time.Minute)

	cors := middleware.NewCORSMiddleware(cfg.AllowedOrigins)
	tracing := middleware.NewTracingMiddleware(logger)

	handler := tracing.Handler(cors.Handler(limiter.Handler(router)))

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
