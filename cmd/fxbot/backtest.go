package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alejandrodnm/fxbot/config"
	"github.com/alejandrodnm/fxbot/internal/adapters/csvfeed"
	"github.com/alejandrodnm/fxbot/internal/adapters/notify"
	"github.com/alejandrodnm/fxbot/internal/adapters/storage"
	"github.com/alejandrodnm/fxbot/internal/engine"
)

// runBacktest ejecuta un run histórico completo: CSV → engine → consola +
// SQLite.
func runBacktest(ctx context.Context, cfg *config.Config, symbol, csvPath string, table bool) {
	feed, err := csvfeed.Open(csvPath)
	if err != nil {
		slog.Error("failed to load CSV", "err", err, "path", csvPath)
		os.Exit(1)
	}
	slog.Info("bars loaded", "count", feed.Len(), "path", csvPath)

	eng, err := engine.New(symbol, cfg)
	if err != nil {
		slog.Error("failed to build engine", "err", err)
		os.Exit(1)
	}

	result, err := eng.Run(ctx, feed)
	if err != nil {
		slog.Error("backtest failed", "err", err)
		os.Exit(1)
	}

	reporter := notify.NewConsole(table)
	if err := reporter.Report(ctx, result); err != nil {
		slog.Warn("reporter error", "err", err)
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN, cfg.Strategy)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.SaveRun(ctx, result); err != nil {
		slog.Error("failed to persist run", "err", err, "run_id", result.RunID)
		os.Exit(1)
	}
	slog.Info("run persisted", "run_id", result.RunID, "dsn", cfg.Storage.DSN)
}
