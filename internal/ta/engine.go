package ta

import (
	"fmt"
	"strings"

	"stock-analysis-bot/internal/types"
)

const (
	RSISimple = "SMA"
	RSIWilder = "WILDER"
)

// Config selects indicator windows.
type Config struct {
	MAWindow   int    `yaml:"ma_window"`
	RSIPeriod  int    `yaml:"rsi_period"`
	RSIMethod  string `yaml:"rsi_method"`
	MACDFast   int    `yaml:"macd_fast"`
	MACDSlow   int    `yaml:"macd_slow"`
	MACDSignal int    `yaml:"macd_signal"`
}

func DefaultConfig() Config {
	return Config{
		MAWindow:   50,
		RSIPeriod:  14,
		RSIMethod:  RSISimple,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
	}
}

func (c Config) Validate() error {
	if c.MAWindow <= 0 {
		return fmt.Errorf("ma_window must be positive, got %d", c.MAWindow)
	}
	if c.RSIPeriod <= 0 {
		return fmt.Errorf("rsi_period must be positive, got %d", c.RSIPeriod)
	}
	switch strings.ToUpper(c.RSIMethod) {
	case "", RSISimple, RSIWilder:
	default:
		return fmt.Errorf("rsi_method must be 'SMA' or 'WILDER', got '%s'", c.RSIMethod)
	}
	if c.MACDFast <= 0 || c.MACDSlow <= 0 || c.MACDSignal <= 0 {
		return fmt.Errorf("macd periods must be positive, got %d/%d/%d", c.MACDFast, c.MACDSlow, c.MACDSignal)
	}
	if c.MACDFast >= c.MACDSlow {
		return fmt.Errorf("macd_fast (%d) must be shorter than macd_slow (%d)", c.MACDFast, c.MACDSlow)
	}
	return nil
}

// Compute derives MA, RSI and MACD readings for every bar of the series.
// Every reading at index i depends only on bars 0..i. Series shorter than
// two bars yield all-null readings.
func Compute(series types.PriceSeries, cfg Config) (types.IndicatorSeries, error) {
	if err := cfg.Validate(); err != nil {
		return types.IndicatorSeries{}, err
	}
	if err := series.Validate(); err != nil {
		return types.IndicatorSeries{}, err
	}

	out := types.IndicatorSeries{
		MAWindow: cfg.MAWindow,
		Points:   make([]types.IndicatorPoint, series.Len()),
	}
	for i, b := range series.Bars {
		out.Points[i].Time = b.Time
	}
	if series.Len() < 2 {
		return out, nil
	}

	closes := series.Closes()
	ma := SMASeries(closes, cfg.MAWindow)
	rsiFn := RSISeries
	if strings.EqualFold(cfg.RSIMethod, RSIWilder) {
		rsiFn = WilderRSISeries
	}
	rsi := rsiFn(closes, cfg.RSIPeriod)
	macd, sig, hist := MACDSeries(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)

	for i := range out.Points {
		p := &out.Points[i]
		p.MA = ma[i]
		p.RSI = rsi[i]
		p.MACD = macd[i]
		p.MACDSignal = sig[i]
		p.MACDHist = hist[i]
	}
	return out, nil
}
