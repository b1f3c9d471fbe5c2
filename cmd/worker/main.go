package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inspection_portal/internal/email"
	"inspection_portal/internal/scheduler"
	"inspection_portal/platform/config"
	"inspection_portal/platform/logger"

	"github.com/getsentry/sentry-go"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	if dsn := cfg.GetSentryDSN(); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn, Environment: cfg.GetEnv()}); err != nil {
			log.Warn("sentry disabled", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.GetEmailEnabled() {
		log.Warn("SMTP not configured; queued emails will be dropped")
	}
	sender := email.NewSender(cfg)

	worker, err := scheduler.NewWorker(cfg, sender, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	if err := worker.Run(ctx); err != nil {
		log.Error("scheduler worker exited", "error", err)
		os.Exit(1)
	}
	log.Info("worker stopped")
}
