package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moonlit-labs/moonling-engine/internal/config"
	"github.com/moonlit-labs/moonling-engine/internal/decay"
	"github.com/moonlit-labs/moonling-engine/internal/engine"
	"github.com/moonlit-labs/moonling-engine/internal/handlers"
	"github.com/moonlit-labs/moonling-engine/internal/logger"
	"github.com/moonlit-labs/moonling-engine/internal/middleware"
	"github.com/moonlit-labs/moonling-engine/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Moonling Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL)

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
	decaySvc := decay.NewService(cache, balance, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cache, log)
	mux.Handle("/health", healthHandler)

	moonlingHandler := handlers.NewMoonlingHandler(eng, decaySvc, balance, log)
	mux.Handle("/v1/moonling/", moonlingHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", "error", err)
	}

	if err := cache.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
