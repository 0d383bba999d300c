package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"merry/internal/app"
	"merry/internal/config"
	"merry/internal/infrastructure/cache"
	"merry/internal/infrastructure/db"
	"merry/internal/notify"
	"merry/pkg/logging"
)

func main() {
	if !config.LoadDotenv() {
		slog.Info("no .env file found, using system environment")
	}
	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "err", err)
		os.Exit(1)
	}

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN())
	if err != nil {
		slog.Error("open database", "err", err)
		os.Exit(1)
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		slog.Error("open redis", "addr", cfg.RedisAddr, "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	a := app.New(cfg, gdb, rdb)
	if a.Sweeper == nil {
		slog.Error("worker needs WAHA_BASE_URL to send reminders")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("worker started", "interval", cfg.ReminderInterval)
	ticker := time.NewTicker(cfg.ReminderInterval)
	defer ticker.Stop()

	// one pass at startup, then every tick
	sweep(ctx, a.Sweeper)
	for {
		select {
		case <-ticker.C:
			sweep(ctx, a.Sweeper)
		case <-ctx.Done():
			slog.Info("shutting down worker")
			a.Events.Wait()
			return
		}
	}
}

func sweep(ctx context.Context, s *notify.Sweeper) {
	start := time.Now()
	out, err := s.Sweep(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "overdue sweep failed", "err", err)
		return
	}
	slog.InfoContext(ctx, "overdue sweep done",
		"sent", out.Sent, "failed", out.Failed, "skipped", out.Skipped, "took", time.Since(start))
}
