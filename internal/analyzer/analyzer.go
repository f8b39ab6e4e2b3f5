// Package analyzer runs the full per-ticker pass: price history, indicators,
// signals, P/E and news sentiment.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"stock-analysis-bot/internal/interfaces"
	"stock-analysis-bot/internal/logger"
	"stock-analysis-bot/internal/signal"
	"stock-analysis-bot/internal/store"
	"stock-analysis-bot/internal/summary"
	"stock-analysis-bot/internal/ta"
	"stock-analysis-bot/internal/types"
)

type Analyzer struct {
	prices       interfaces.PriceProvider
	fundamentals interfaces.FundamentalsProvider
	sentiment    interfaces.SentimentProvider

	indicators ta.Config
	thresholds signal.Thresholds
	period     string
	interval   string
	now        func() time.Time
}

var _ interfaces.Analyzer = (*Analyzer)(nil)

// New builds an analyzer. fundamentals and sentiment may be nil, in which
// case P/E is unavailable and sentiment is 0.0.
func New(cfg *store.Config, prices interfaces.PriceProvider, fundamentals interfaces.FundamentalsProvider, sentiment interfaces.SentimentProvider) *Analyzer {
	return &Analyzer{
		prices:       prices,
		fundamentals: fundamentals,
		sentiment:    sentiment,
		indicators:   cfg.Indicators,
		thresholds:   cfg.Signals,
		period:       cfg.Price.Period,
		interval:     cfg.Price.Interval,
		now:          time.Now,
	}
}

func (a *Analyzer) Thresholds() signal.Thresholds { return a.thresholds }

// Analyze fetches and evaluates one ticker. Only price data is mandatory:
// P/E and sentiment failures are logged and degrade to null and 0.0.
func (a *Analyzer) Analyze(ctx context.Context, symbol string) (*types.Analysis, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, errors.New("empty ticker")
	}

	op := logger.StartOperation(ctx, "analyze", "symbol", symbol)
	ctx = op.GetContext()

	series, err := a.prices.FetchPriceSeries(ctx, symbol, a.period, a.interval)
	if err != nil {
		op.EndWithError(err)
		return nil, fmt.Errorf("price history for %s: %w", symbol, err)
	}
	inds, err := ta.Compute(series, a.indicators)
	if err != nil {
		op.EndWithError(err)
		return nil, err
	}
	sigs, err := signal.Classify(series, inds, a.thresholds)
	if err != nil {
		op.EndWithError(err)
		return nil, err
	}

	result := &types.Analysis{
		Symbol:     symbol,
		Series:     series,
		Indicators: inds,
		Signals:    sigs,
		PERatio:    a.peRatio(ctx, symbol),
		Sentiment:  a.score(ctx, symbol),
		FetchedAt:  a.now(),
	}

	if last, ok := series.Last(); ok {
		logger.Signal(ctx, symbol, string(result.LatestSignal()), last.Close, "bars", series.Len())
	}
	op.End("bars", series.Len(), "signal", result.LatestSignal())
	return result, nil
}

func (a *Analyzer) peRatio(ctx context.Context, symbol string) null.Float {
	if a.fundamentals == nil {
		return null.Float{}
	}
	f, err := a.fundamentals.FetchFundamentals(ctx, symbol)
	if err != nil {
		logger.Warn(ctx, "P/E unavailable", "symbol", symbol, "error", err)
		return null.Float{}
	}
	return f.PERatio
}

func (a *Analyzer) score(ctx context.Context, symbol string) float64 {
	if a.sentiment == nil {
		return 0
	}
	s, err := a.sentiment.Score(ctx, symbol)
	if err != nil {
		logger.Warn(ctx, "Sentiment unavailable", "symbol", symbol, "error", err)
		return 0
	}
	return s
}

// Summary condenses an analysis into its latest context snapshot.
func Summary(res *types.Analysis, th signal.Thresholds) (types.ContextSummary, error) {
	if res == nil {
		return types.ContextSummary{}, types.ErrInsufficientHistory
	}
	return summary.Summarize(res.Symbol, res.Series, res.Indicators, res.PERatio, res.Sentiment, th)
}
