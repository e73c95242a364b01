package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/fxbot/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	symbol := flag.String("symbol", "EURUSD", "trading symbol")
	csvPath := flag.String("csv", "", "path to M1 CSV file (backtest mode)")
	live := flag.Bool("live", false, "run against the live candle feed")
	rr := flag.Float64("rr", 0, "risk:reward ratio override")
	compositor := flag.Bool("compositor", false, "gate entries with the composite BOS/CHoCH/liquidity score")
	table := flag.Bool("table", false, "print the full trade ledger table (default: summary only)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	// Overrides de CLI sobre la configuración ya validada
	if *rr > 0 {
		cfg.Strategy.RiskRewardRatio = *rr
	}
	if *compositor {
		cfg.Strategy.UseCompositor = true
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	slog.Info("fxbot starting",
		"config", *configPath,
		"symbol", *symbol,
		"live", *live,
		"rr", cfg.Strategy.RiskRewardRatio,
		"compositor", cfg.Strategy.UseCompositor,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *live {
		runLive(ctx, cfg, *symbol, *table)
		return
	}

	if *csvPath == "" {
		slog.Error("backtest mode requires -csv (or use -live)")
		os.Exit(1)
	}
	runBacktest(ctx, cfg, *symbol, *csvPath, *table)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
