// Command backtest runs a single historical backtest: it loads config,
// wires a feed/strategy/converter/broker/journal via internal/runner, and
// optionally serves the read-only metrics API while the run executes.
//
// Data loading is a thin boundary: a CSV adapter with header
// auto-detection is explicitly out of scope for the core (spec.md §1),
// so loadPrices here only understands one fixed column order —
// time,symbol,open,high,low,close,volume — enough to drive the engine
// end to end without pulling parsing concerns into the core packages.
package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"roboquant/internal/account"
	"roboquant/internal/api"
	"roboquant/internal/broker"
	"roboquant/internal/config"
	"roboquant/internal/converter"
	"roboquant/internal/feed"
	"roboquant/internal/fx"
	"roboquant/internal/historicstore"
	"roboquant/internal/journal"
	"roboquant/internal/pricing"
	"roboquant/internal/runner"
	"roboquant/internal/strategy"
	pkgtypes "roboquant/pkg/types"
)

func main() {
	cfgPath := "configs/config.yaml"
	if p := os.Getenv("ROBOQUANT_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", cfgPath)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Logging.Level)}
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)

	dataPath := "data/prices.csv"
	if p := os.Getenv("ROBOQUANT_DATA"); p != "" {
		dataPath = p
	}

	store, err := loadPrices(dataPath)
	if err != nil {
		logger.Error("failed to load price data", "error", err, "path", dataPath)
		os.Exit(1)
	}

	base := pkgtypes.Currency(cfg.BaseCurrency)
	rates := fx.New()
	for pair, rate := range cfg.FX.Rates {
		parts := strings.SplitN(pair, "/", 2)
		rates.Register(pkgtypes.Currency(parts[0]), pkgtypes.Currency(parts[1]), rate)
	}

	var model account.Model
	if cfg.Account.Model == "margin" {
		model = account.NewMarginAccount(cfg.Account.Leverage)
	} else {
		model = account.CashAccount{}
	}

	internal := account.New(base, store.Timeframe().Start, pkgtypes.NewAmount(base, cfg.Account.InitialDeposit))
	sim := broker.New(internal, model, rates, pricing.NoCost{}, pricing.NoFee{}, pkgtypes.PriceDefault, logger)

	conv := buildConverter(cfg, rates)
	strat := buildStrategy(cfg)

	var metricsLogger journal.MetricsLogger
	if cfg.Store.SQLitePath != "" {
		sqliteLogger, err := journal.OpenSQLiteLogger(cfg.Store.SQLitePath)
		if err != nil {
			logger.Error("failed to open metrics store", "error", err, "path", cfg.Store.SQLitePath)
			os.Exit(1)
		}
		metricsLogger = sqliteLogger
	} else {
		metricsLogger = journal.NewMemoryLogger()
	}

	runName := "backtest"
	// runner.Run closes metricsJournal (ending the run and closing
	// metricsLogger) on every exit path, so this run's logger must be
	// private to it — it is, since it's opened fresh above.
	metricsJournal := journal.NewMetricsJournal(metricsLogger, runName, rates)

	var apiServer *api.Server
	if cfg.Dashboard.Enabled {
		apiServer = api.NewServer(cfg.Dashboard, metricsLogger, logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error("dashboard server failed", "error", err)
			}
		}()
		logger.Info("dashboard started", "url", fmt.Sprintf("http://localhost:%d", cfg.Dashboard.Port))
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
	}()

	spec := runner.Spec{
		Name:      runName,
		Feed:      historicstore.NewHistoricFeed(store),
		Strategy:  strat,
		Converter: conv,
		Broker:    sim,
		Journal:   metricsJournal,
		Capacity:  cfg.ChannelCapacity,
		Logger:    logger,
	}

	logger.Info("backtest starting", "run", runName, "assets", len(store.Assets()))
	acc, err := runner.Run(ctx, spec)

	if apiServer != nil {
		if err := apiServer.Stop(); err != nil {
			logger.Error("failed to stop dashboard", "error", err)
		}
	}

	if err != nil {
		logger.Error("backtest run failed", "error", err)
		os.Exit(1)
	}
	equity, eqErr := acc.EquityAmount(rates)
	if eqErr != nil {
		logger.Info("backtest finished", "trades", len(acc.Trades))
	} else {
		logger.Info("backtest finished", "equity", equity.Float64(), "trades", len(acc.Trades))
	}
}

func buildStrategy(cfg *config.Config) strategy.Strategy {
	return strategy.NewCombined(strategy.ResolverNone, strategy.NewEMACrossover(12, 26))
}

func buildConverter(cfg *config.Config, rates *fx.Registry) converter.Converter {
	flex := converter.NewFlex(rates)
	flex.OrderPercentage = cfg.Converter.OrderPercentage
	flex.Shorting = cfg.Converter.Shorting
	flex.Fractions = cfg.Converter.Fractions
	flex.OneOrderOnly = cfg.Converter.OneOrderOnly
	flex.SafetyMargin = cfg.Converter.SafetyMargin
	flex.MinPrice = cfg.Converter.MinPrice
	flex.EnableMetrics = cfg.Converter.EnableMetrics

	var conv converter.Converter = flex
	if cfg.Converter.CircuitBreakerMaxOrders > 0 {
		conv = converter.NewCircuitBreaker(conv, cfg.Converter.CircuitBreakerMaxOrders, cfg.Converter.CircuitBreakerWindow)
	}
	return conv
}

// loadPrices reads a fixed-format CSV (time,symbol,open,high,low,close,volume)
// into a historicstore.Store. time is RFC3339; volume may be blank (NaN).
func loadPrices(path string) (*historicstore.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	store := historicstore.New()
	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1

	header := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header {
			header = false
			if len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "time") {
				continue
			}
		}
		if len(rec) < 6 {
			return nil, fmt.Errorf("loadPrices: row %v: want at least 6 columns, got %d", rec, len(rec))
		}

		t, err := time.Parse(time.RFC3339, strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("loadPrices: parse time %q: %w", rec[0], err)
		}
		asset := pkgtypes.NewAsset(strings.TrimSpace(rec[1]), pkgtypes.AssetStock, "USD")

		open, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("loadPrices: parse open %q: %w", rec[2], err)
		}
		high, err := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("loadPrices: parse high %q: %w", rec[3], err)
		}
		low, err := strconv.ParseFloat(strings.TrimSpace(rec[4]), 64)
		if err != nil {
			return nil, fmt.Errorf("loadPrices: parse low %q: %w", rec[4], err)
		}
		closePrice, err := strconv.ParseFloat(strings.TrimSpace(rec[5]), 64)
		if err != nil {
			return nil, fmt.Errorf("loadPrices: parse close %q: %w", rec[5], err)
		}
		volume := math.NaN()
		if len(rec) > 6 && strings.TrimSpace(rec[6]) != "" {
			volume, err = strconv.ParseFloat(strings.TrimSpace(rec[6]), 64)
			if err != nil {
				return nil, fmt.Errorf("loadPrices: parse volume %q: %w", rec[6], err)
			}
		}

		bar := pkgtypes.PriceBar{
			AssetValue: asset,
			Open:       open,
			High:       high,
			Low:        low,
			Close:      closePrice,
			Volume:     volume,
			Span:       pkgtypes.PriceSpan{Amount: 1, Unit: "d"},
		}
		store.Add(pkgtypes.NewEvent(t, bar))
	}
	return store, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
