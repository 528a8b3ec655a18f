package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/saga-engine/internal/app"
	"github.com/jwebster45206/saga-engine/internal/config"
	"github.com/jwebster45206/saga-engine/internal/logger"
	"github.com/jwebster45206/saga-engine/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Saga Engine Worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL,
		"tick_interval", cfg.TickInterval)

	a, err := app.New(context.Background(), cfg, "saga-engine-worker", log)
	if err != nil {
		log.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}

	w := worker.New(a.Queue, a.Processor, a.Redis, a.Storage, log, os.Getenv("WORKER_ID"),
		worker.WithTickInterval(cfg.TickInterval))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Start(); err != nil {
			log.Error("Worker error", "error", err)
		}
	}()

	log.Info("Worker started, waiting for requests...", "worker_id", w.ID())

	<-quit
	log.Info("Worker shutdown signal received")
	w.Stop()

	// The current request finishes before Start returns.
	select {
	case <-done:
	case <-time.After(35 * time.Second):
		log.Warn("Worker did not stop in time")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		log.Error("Error closing connections", "error", err)
	}

	log.Info("Worker exited")
}
