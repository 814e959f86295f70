package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/sarenasr/Rappi-Dashboard/internal/cache"
	"github.com/sarenasr/Rappi-Dashboard/internal/config"
	"github.com/sarenasr/Rappi-Dashboard/internal/logging"
	"github.com/sarenasr/Rappi-Dashboard/internal/queue"
	"github.com/sarenasr/Rappi-Dashboard/internal/router"
	"github.com/sarenasr/Rappi-Dashboard/internal/services"
	"github.com/sarenasr/Rappi-Dashboard/internal/utils"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	instanceID := uuid.New().String()
	logger.Info("Availability engine starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime, "instance", instanceID)

	viewCache, err := cache.New(cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to create view cache", "type", cfg.Cache.Type, "error", err)
	}
	defer func() { _ = viewCache.Close() }()
	logger.Info("View cache ready", "type", cfg.Cache.Type)

	logger.Info("Connecting to Queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)
	queueClient, err := queue.NewQueue(cfg.Queue, instanceID)
	if err != nil {
		logger.Fatal("Failed to connect to Queue", "error", err)
	}
	if queueClient != nil {
		defer func() { _ = queueClient.Close() }()
		logger.Info("Queue connection established")
	} else {
		logger.Warn("Reload events disabled, reloads stay local to this instance")
	}

	dataset := services.NewDatasetService(logger, cfg.Dataset, services.Limits(cfg.Engine),
		viewCache, queueClient, cfg.Queue.Subject, services.WithInstanceID(instanceID))

	loadCtx, loadCancel := context.WithTimeout(context.Background(), utils.ReloadTimeout)
	if _, err := dataset.Load(loadCtx); err != nil {
		// keep serving; /health reports loaded=false and /admin/reload can retry
		logger.Error("Initial dataset load failed", "path", cfg.Dataset.Path, "error", err)
	}
	loadCancel()

	if err := dataset.Start(); err != nil {
		logger.Fatal("Failed to subscribe to reload events", "error", err)
	}
	defer func() { _ = dataset.Close() }()

	analytics := services.NewAnalyticsService(logger, dataset, viewCache, cfg.Engine)

	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled",
			"num_keys", len(cfg.Auth.APIKeys), "num_admin_keys", len(cfg.Auth.AdminKeySet()))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	app := router.New(logger, dataset, analytics, *cfg)

	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
