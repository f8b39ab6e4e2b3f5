package scheduler

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analysis-bot/internal/signal"
	"stock-analysis-bot/internal/ta"
	"stock-analysis-bot/internal/types"
)

type stubAnalyzer struct {
	calls []string
}

func (s *stubAnalyzer) Analyze(ctx context.Context, symbol string) (*types.Analysis, error) {
	s.calls = append(s.calls, symbol)
	if symbol == "BAD" {
		return nil, types.ErrDataUnavailable
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, 70)
	for i := range bars {
		c := 50 + 3*math.Sin(float64(i)/3)
		bars[i] = types.Bar{Time: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c}
	}
	series := types.PriceSeries{Symbol: symbol, Bars: bars}
	inds, err := ta.Compute(series, ta.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return &types.Analysis{Symbol: symbol, Series: series, Indicators: inds}, nil
}

type countingRecorder struct {
	tickers []string
}

func (c *countingRecorder) RecordSummary(ctx context.Context, s types.ContextSummary) error {
	c.tickers = append(c.tickers, s.Ticker)
	return nil
}
func (c *countingRecorder) RecordChat(ctx context.Context, ticker, question, reply string) error {
	return nil
}
func (c *countingRecorder) Close() error { return nil }

func TestRunOnce(t *testing.T) {
	a := &stubAnalyzer{}
	rec := &countingRecorder{}
	s := New(a, rec, signal.DefaultThresholds(), []string{" infy.ns", "BAD", "", "tcs.ns"})

	results := s.RunOnce(context.Background())
	require.Len(t, results, 3)
	assert.Equal(t, []string{"INFY.NS", "BAD", "TCS.NS"}, a.calls)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, types.ErrDataUnavailable)
	assert.Equal(t, "TCS.NS", results[2].Summary.Ticker)
	assert.Equal(t, []string{"INFY.NS", "TCS.NS"}, rec.tickers)
}

func TestRunOnceCancelled(t *testing.T) {
	a := &stubAnalyzer{}
	s := New(a, nil, signal.DefaultThresholds(), []string{"INFY.NS", "TCS.NS"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Empty(t, s.RunOnce(ctx))
	assert.Empty(t, a.calls)
}

func TestRegister(t *testing.T) {
	s := New(&stubAnalyzer{}, nil, signal.DefaultThresholds(), []string{"INFY.NS"})
	assert.NoError(t, s.Register(context.Background(), "0 45 15 * * 1-5"))
	assert.Error(t, s.Register(context.Background(), "not a schedule"))

	empty := New(&stubAnalyzer{}, nil, signal.DefaultThresholds(), nil)
	assert.Error(t, empty.Register(context.Background(), "0 45 15 * * 1-5"))
}
