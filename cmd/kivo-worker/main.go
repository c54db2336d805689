package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kivo/internal/amqp"
	"kivo/internal/cache"
	"kivo/internal/config"
	"kivo/internal/log"
	"kivo/internal/storage"
	"kivo/internal/worker"
)

func main() {
	// Load .env for local development; absent in production is fine
	_ = godotenv.Load()

	logger := log.New(log.Config{
		Level:     log.DefaultConfig().Level,
		Component: "kivo-worker",
	})
	log.SetDefault(logger)

	logger.Info("Starting kivo-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	syncWorker := worker.NewSyncWorker(repo)

	// Keep the dedupe cache from accumulating expired event ids
	cacheManager := cache.NewManager()
	cacheManager.Register(syncWorker.DedupeCache())
	cacheManager.StartCleanup(cfg.CacheCleanInterval)
	defer cacheManager.Stop()

	go func() {
		err := amqpClient.Consume(ctx, func(ev *amqp.Event) error {
			return syncWorker.HandleEvent(ctx, ev)
		})
		if err != nil && err != context.Canceled {
			logger.Error("Event consumption failed", "error", err)
		}
		cancel()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()

	// Give the in-flight delivery a moment to finish
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
