package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"jobboard-api/internal/api/routes"
	"jobboard-api/internal/background"
	"jobboard-api/internal/config"
	"jobboard-api/internal/ingest"
	"jobboard-api/internal/ingest/source"
	"jobboard-api/internal/logging"
	"jobboard-api/internal/store"
	"jobboard-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting Job Board API", map[string]interface{}{})

	// Connect to Postgres
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	pool, err := store.NewPostgresPool(connectCtx, cfg.Database.URL)
	cancelConnect()
	if err != nil {
		logger.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer pool.Close()

	jobStore := store.NewJobStore(pool)
	sourceStore := store.NewSourceStore(pool)
	runStore := store.NewRunStore(pool)
	appStore := store.NewApplicationStore(pool)

	// Source locking: Redis when configured, in-process otherwise
	var locker background.SourceLocker
	if cfg.Redis.Enabled {
		redisClient := utils.NewRedisClient(cfg)
		pingCtx, cancelPing := context.WithTimeout(context.Background(), cfg.Redis.Timeout)
		err := redisClient.Ping(pingCtx)
		cancelPing()
		if err != nil {
			logger.Warn("Redis unavailable, falling back to in-process source locks", map[string]interface{}{
				"error": err.Error(),
			})
			redisClient.Close()
			locker = background.NewMemoryLocker(cfg.Scraper.LockTTL)
		} else {
			defer redisClient.Close()
			locker = background.NewRedisLocker(redisClient, cfg.Scraper.LockTTL)
		}
	} else {
		locker = background.NewMemoryLocker(cfg.Scraper.LockTTL)
	}

	// Build the source registry, overlaying stored configs on builtins
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	storedSources, err := sourceStore.ListSourceConfigs(loadCtx)
	cancelLoad()
	if err != nil {
		logger.Warn("Failed to load stored source configs, using builtin defaults", map[string]interface{}{
			"error": err.Error(),
		})
	}
	registry, err := source.NewRegistry(cfg, storedSources)
	if err != nil {
		logger.Fatal("Failed to build source registry", map[string]interface{}{
			"error": err.Error(),
		})
	}
	logger.Info("Source registry initialized", map[string]interface{}{
		"sources": registry.Names(),
	})

	// Ingestion service and background task manager
	svc := ingest.NewService(cfg, registry, jobStore, sourceStore, logger)
	taskManager := background.NewTaskManager(cfg, runStore, svc, locker)
	if err := taskManager.Start(context.Background()); err != nil {
		logger.Fatal("Failed to start task manager", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	routes.SetupRoutes(e, cfg, routes.Stores{
		Pool:         pool,
		Jobs:         jobStore,
		Sources:      sourceStore,
		Applications: appStore,
	}, svc, taskManager)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...", map[string]interface{}{})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Stop the task manager first so in-flight runs can finish
		if err := taskManager.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping task manager", map[string]interface{}{
				"error": err.Error(),
			})
		}

		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{
				"error": err.Error(),
			})
		}

		logger.Info("Server shutdown complete", map[string]interface{}{})
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{
		"address": address,
	})

	if err := e.Start(address); err != nil {
		logger.Fatal("Server failed to start", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
