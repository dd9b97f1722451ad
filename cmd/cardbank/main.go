package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/koyif/cardbank/internal/app"
	"github.com/koyif/cardbank/internal/config"
	"github.com/koyif/cardbank/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	if err = logger.Initialize(); err != nil {
		log.Fatalf("error starting logger: %v", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		logger.Log.Fatal("error creating app", logger.Error(err))
	}

	logger.Log.Info("client started", logger.String("backend", cfg.BackendAddress))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err = a.Run(ctx); err != nil {
		logger.Log.Error("client error", logger.Error(err))
	}

	logger.Log.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err = a.Close(shutdownCtx); err != nil {
		logger.Log.Error("error shutting down demo backend", logger.Error(err))
	}

	logger.Log.Info("shutdown complete")
}
