package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/moonlit-labs/moonling-engine/internal/config"
	"github.com/moonlit-labs/moonling-engine/internal/engine"
	"github.com/moonlit-labs/moonling-engine/internal/logger"
	"github.com/moonlit-labs/moonling-engine/internal/minting"
	"github.com/moonlit-labs/moonling-engine/internal/services"
	"github.com/moonlit-labs/moonling-engine/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Moonling Mint Worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL,
		"interval", cfg.MintInterval)

	balance, err := config.LoadBalance(cfg.BalanceFile)
	if err != nil {
		log.Error("Failed to load balance tunables", "error", err)
		os.Exit(1)
	}

	cache := services.NewRedisService(cfg.RedisURL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := cache.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	eng := engine.New(cache, balance, log)

	// Separate Redis client for worker locking
	// (separate from the storage client to avoid connection conflicts)
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis client", "error", err)
		}
	}()

	// No on-chain collaborator is wired here yet; the dry-run minter
	// keeps the drain/acknowledge cycle running end to end.
	minter := minting.NewDryRunMinter(log)

	w := worker.New(eng, minter, redisClient, log, cfg.WorkerID, cfg.MintInterval)

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := w.Start(); err != nil {
			log.Error("Worker error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("Mint worker started, draining achievement queues...")

	<-quit
	log.Info("Worker shutdown signal received")

	w.Stop()

	// Give the worker time to finish the current cycle
	time.Sleep(2 * time.Second)

	if err := cache.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Worker exited")
}
