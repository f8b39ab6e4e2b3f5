package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"stock-analysis-bot/internal/analyzer"
	"stock-analysis-bot/internal/dividend"
	"stock-analysis-bot/internal/interfaces"
	"stock-analysis-bot/internal/journal"
	"stock-analysis-bot/internal/llm"
	"stock-analysis-bot/internal/logger"
	"stock-analysis-bot/internal/marketdata"
	"stock-analysis-bot/internal/marketdata/marketobs"
	"stock-analysis-bot/internal/report"
	"stock-analysis-bot/internal/sentiment"
	"stock-analysis-bot/internal/session"
	"stock-analysis-bot/internal/store"
	"stock-analysis-bot/internal/trace"
)

const version = "0.3.0"

// app holds the collaborators shared by the chat commands.
type app struct {
	cfg       *store.Config
	prices    interfaces.PriceProvider
	sentiment interfaces.SentimentProvider
	dividends interfaces.DividendSource
	reports   *report.Builder
	recorder  interfaces.Recorder
	session   *session.Session
}

// initializeSystem loads .env and initializes the logger and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(version); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// loadConfig loads config.yaml, falling back to defaults when it is absent
func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadOrDefault(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// initializeApp wires providers, the chat model and the journal
func initializeApp(ctx context.Context, cfg *store.Config) (*app, error) {
	providers, err := marketdata.New(cfg)
	if err != nil {
		return nil, err
	}
	prices := marketobs.WrapPrices(providers.Prices)
	fundamentals := marketobs.WrapFundamentals(providers.Fundamentals)
	logger.Info(ctx, "Market data initialized", "source", cfg.DataSource, "exchange", cfg.Exchange)

	sent := sentiment.NewFromConfig(cfg)
	if sent == nil {
		logger.Info(ctx, "News sentiment disabled")
	}

	rec, err := journal.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	prompter := llm.New(cfg)
	if cfg.LLM.Provider == "NOOP" {
		logger.Warn(ctx, "No LLM provider configured - chat replies are disabled")
	}

	an := analyzer.New(cfg, prices, fundamentals, sent)
	return &app{
		cfg:       cfg,
		prices:    prices,
		sentiment: sent,
		dividends: dividend.NewScraper(dividend.ScraperConfig{
			URL:     cfg.Dividends.URL,
			Timeout: time.Duration(cfg.Dividends.TimeoutSeconds) * time.Second,
		}),
		reports:  report.NewBuilder(prices, fundamentals, cfg.Indicators, cfg.Signals),
		recorder: rec,
		session:  session.New(an, prompter, rec, cfg.Signals, cfg.LLM.Model),
	}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.recorder.Close(); err != nil {
		logger.ErrorWithErr(ctx, "Failed to close journal", err)
	}
}
