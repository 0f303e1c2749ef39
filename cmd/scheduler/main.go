package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/enesxunal/markaworld-g-sub000/internal/app"
	"github.com/enesxunal/markaworld-g-sub000/internal/config"
	"github.com/enesxunal/markaworld-g-sub000/internal/logger"
	"github.com/enesxunal/markaworld-g-sub000/internal/scheduler"
)

// runTimeout bounds one pass over the scheduled checks.
const runTimeout = 30 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Logging)
	log.Info("starting ledger scheduler")

	a, err := app.Build(context.Background(), cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize ledger: %v", err)
	}
	defer a.Close()

	s, err := scheduler.New(cfg.Scheduler.Spec, cfg.GetSchedulerLocation(), runTimeout, a.Checks, log)
	if err != nil {
		log.Fatalf("Failed to schedule checks: %v", err)
	}

	s.Start()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down scheduler")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	s.Stop(ctx)
}
