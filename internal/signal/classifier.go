// Package signal maps indicator readings to Buy/Sell/Neutral calls.
package signal

import (
	"fmt"

	"github.com/guregu/null/v6"

	"stock-analysis-bot/internal/types"
)

// Thresholds are the RSI levels that bound the oversold and overbought zones.
type Thresholds struct {
	Oversold   float64 `yaml:"oversold"`
	Overbought float64 `yaml:"overbought"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{Oversold: 30, Overbought: 70}
}

func (t Thresholds) Validate() error {
	if t.Oversold < 0 || t.Overbought > 100 || t.Oversold >= t.Overbought {
		return fmt.Errorf("rsi thresholds must satisfy 0 <= oversold < overbought <= 100, got %.2f/%.2f", t.Oversold, t.Overbought)
	}
	return nil
}

// ClassifyAt classifies a single bar. Buy requires an oversold RSI with the
// close above its moving average; Sell only needs an overbought RSI. A bar
// missing either reading is always Neutral.
func ClassifyAt(rsi, ma null.Float, close float64, th Thresholds) types.Signal {
	if !rsi.Valid || !ma.Valid {
		return types.SignalNeutral
	}
	switch {
	case rsi.Float64 < th.Oversold && close > ma.Float64:
		return types.SignalBuy
	case rsi.Float64 > th.Overbought:
		return types.SignalSell
	default:
		return types.SignalNeutral
	}
}

// Classify produces one signal per bar.
func Classify(series types.PriceSeries, inds types.IndicatorSeries, th Thresholds) ([]types.Signal, error) {
	if series.Len() != inds.Len() {
		return nil, fmt.Errorf("%w: %d bars but %d indicator points", types.ErrInvalidSeries, series.Len(), inds.Len())
	}
	out := make([]types.Signal, series.Len())
	for i, b := range series.Bars {
		p := inds.Points[i]
		out[i] = ClassifyAt(p.RSI, p.MA, b.Close, th)
	}
	return out, nil
}

// TrendAt reports whether the close sits above its moving average.
func TrendAt(close float64, ma null.Float) types.Trend {
	if !ma.Valid {
		return types.TrendUnknown
	}
	if close > ma.Float64 {
		return types.TrendBullish
	}
	return types.TrendBearish
}

func ZoneOf(rsi null.Float, th Thresholds) types.RSIZone {
	switch {
	case !rsi.Valid:
		return types.ZoneUnknown
	case rsi.Float64 < th.Oversold:
		return types.ZoneOversold
	case rsi.Float64 > th.Overbought:
		return types.ZoneOverbought
	default:
		return types.ZoneNeutral
	}
}
