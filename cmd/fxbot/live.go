package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alejandrodnm/fxbot/config"
	"github.com/alejandrodnm/fxbot/internal/adapters/livefeed"
	"github.com/alejandrodnm/fxbot/internal/adapters/notify"
	"github.com/alejandrodnm/fxbot/internal/adapters/storage"
	"github.com/alejandrodnm/fxbot/internal/engine"
)

// runLive conecta el mismo engine de backtest al feed en vivo. El executor
// de papel imprime las órdenes que un broker real recibiría; el run termina
// con SIGINT/SIGTERM y el ledger acumulado se reporta y persiste igual que
// en histórico.
func runLive(ctx context.Context, cfg *config.Config, symbol string, table bool) {
	if cfg.Feed.BaseURL == "" {
		slog.Error("live mode requires feed.base_url (or FEED_BASE_URL)")
		os.Exit(1)
	}

	client := livefeed.NewClient(cfg.Feed.BaseURL, cfg.Feed.RatePerSec)
	feed := livefeed.New(client, symbol, cfg.PollInterval())

	eng, err := engine.New(symbol, cfg)
	if err != nil {
		slog.Error("failed to build engine", "err", err)
		os.Exit(1)
	}
	eng.SetExecutor(notify.NewPaperExecutor())

	slog.Info("live run starting", "symbol", symbol, "feed", cfg.Feed.BaseURL,
		"poll", cfg.PollInterval())

	result, err := eng.Run(ctx, feed)
	if err != nil {
		slog.Error("live run failed", "err", err)
		os.Exit(1)
	}

	reporter := notify.NewConsole(table)
	if err := reporter.Report(context.Background(), result); err != nil {
		slog.Warn("reporter error", "err", err)
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN, cfg.Strategy)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		return
	}
	defer store.Close()

	if err := store.SaveRun(context.Background(), result); err != nil {
		slog.Error("failed to persist run", "err", err, "run_id", result.RunID)
		return
	}
	slog.Info("live run persisted", "run_id", result.RunID, "trades", result.Summary.TotalTrades)
}
