package types

import (
	"fmt"
	"time"

	"github.com/guregu/null/v6"
)

// Bar is one daily OHLCV observation.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Valid reports whether prices are positive and open/close sit inside the low/high range.
func (b Bar) Valid() bool {
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return false
	}
	return b.Low <= b.Open && b.Low <= b.Close && b.Open <= b.High && b.Close <= b.High
}

// PriceSeries is an ordered sequence of bars for one symbol.
type PriceSeries struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

func (s PriceSeries) Len() int { return len(s.Bars) }

// Last returns the most recent bar; ok is false for an empty series.
func (s PriceSeries) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Validate checks that timestamps strictly increase and every bar is well formed.
func (s PriceSeries) Validate() error {
	for i, b := range s.Bars {
		if !b.Valid() {
			return fmt.Errorf("%w: bar %d at %s has inconsistent prices", ErrInvalidSeries, i, b.Time.Format("2006-01-02"))
		}
		if i > 0 && !b.Time.After(s.Bars[i-1].Time) {
			return fmt.Errorf("%w: timestamp at index %d is not after index %d", ErrInvalidSeries, i, i-1)
		}
	}
	return nil
}

// IndicatorPoint holds the readings for one bar. Undefined readings are null.
type IndicatorPoint struct {
	Time       time.Time  `json:"time"`
	MA         null.Float `json:"ma"`
	RSI        null.Float `json:"rsi"`
	MACD       null.Float `json:"macd"`
	MACDSignal null.Float `json:"macd_signal"`
	MACDHist   null.Float `json:"macd_hist"`
}

// IndicatorSeries is aligned index-for-index with the PriceSeries it was computed from.
type IndicatorSeries struct {
	MAWindow int              `json:"ma_window"`
	Points   []IndicatorPoint `json:"points"`
}

func (s IndicatorSeries) Len() int { return len(s.Points) }

func (s IndicatorSeries) Last() (IndicatorPoint, bool) {
	if len(s.Points) == 0 {
		return IndicatorPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

type Signal string

const (
	SignalBuy     Signal = "BUY"
	SignalSell    Signal = "SELL"
	SignalNeutral Signal = "NEUTRAL"
)

type Trend string

const (
	TrendBullish Trend = "BULLISH"
	TrendBearish Trend = "BEARISH"
	TrendUnknown Trend = "N/A"
)

type RSIZone string

const (
	ZoneOversold   RSIZone = "OVERSOLD"
	ZoneOverbought RSIZone = "OVERBOUGHT"
	ZoneNeutral    RSIZone = "NEUTRAL"
	ZoneUnknown    RSIZone = "N/A"
)

// ContextSummary is a snapshot of the latest indicator state for one ticker.
type ContextSummary struct {
	Ticker    string     `json:"ticker"`
	AsOf      time.Time  `json:"as_of"`
	Close     float64    `json:"close"`
	MAWindow  int        `json:"ma_window"`
	MA        null.Float `json:"ma"`
	RSI       null.Float `json:"rsi"`
	MACD      null.Float `json:"macd"`
	MACDHist  null.Float `json:"macd_hist"`
	PERatio   null.Float `json:"pe_ratio"`
	Sentiment float64    `json:"sentiment"`
	Signal    Signal     `json:"signal"`
	Trend     Trend      `json:"trend"`
	Zone      RSIZone    `json:"rsi_zone"`
}

// RawDividendRow is one scraped table row before parsing.
type RawDividendRow struct {
	Name  string `json:"name"`
	Href  string `json:"href"`
	Yield string `json:"yield"`
}

type DividendRecord struct {
	Symbol       string  `json:"symbol"`
	CompanyName  string  `json:"company_name"`
	YieldPercent float64 `json:"yield_percent"`
}

// DividendEvent is a historical cash dividend.
type DividendEvent struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

// Fundamentals carries company data; any field may be unavailable.
type Fundamentals struct {
	Symbol        string          `json:"symbol"`
	CompanyName   string          `json:"company_name"`
	Exchange      string          `json:"exchange"`
	Currency      string          `json:"currency"`
	PERatio       null.Float      `json:"pe_ratio"`
	EPS           null.Float      `json:"eps"`
	MarketCap     null.Float      `json:"market_cap"`
	DividendYield null.Float      `json:"dividend_yield"`
	High52W       null.Float      `json:"high_52w"`
	Low52W        null.Float      `json:"low_52w"`
	CurrentPrice  null.Float      `json:"current_price"`
	Dividends     []DividendEvent `json:"dividends,omitempty"`
}

// Analysis bundles everything computed for one ticker in one pass.
type Analysis struct {
	Symbol     string          `json:"symbol"`
	Series     PriceSeries     `json:"series"`
	Indicators IndicatorSeries `json:"indicators"`
	Signals    []Signal        `json:"signals"`
	PERatio    null.Float      `json:"pe_ratio"`
	Sentiment  float64         `json:"sentiment"`
	FetchedAt  time.Time       `json:"fetched_at"`
}

// LatestSignal returns the classification of the most recent bar.
func (a *Analysis) LatestSignal() Signal {
	if a == nil || len(a.Signals) == 0 {
		return SignalNeutral
	}
	return a.Signals[len(a.Signals)-1]
}
