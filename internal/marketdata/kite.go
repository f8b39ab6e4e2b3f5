package marketdata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"stock-analysis-bot/internal/interfaces"
	"stock-analysis-bot/internal/logger"
	"stock-analysis-bot/internal/types"
)

// kiteAPI is the subset of the Kite Connect client used for historical candles.
type kiteAPI interface {
	GetInstrumentsByExchange(exchange string) (kiteconnect.Instruments, error)
	GetHistoricalData(instrumentToken int, interval string, fromDate time.Time, toDate time.Time, continuous bool, OI bool) ([]kiteconnect.HistoricalData, error)
}

// Kite serves daily candles from the Zerodha historical data API.
type Kite struct {
	kc       kiteAPI
	exchange string
	now      func() time.Time

	mu     sync.RWMutex
	tokens map[string]map[string]int // exchange -> tradingsymbol -> instrument token
}

var _ interfaces.PriceProvider = (*Kite)(nil)

func NewKite(apiKey, accessToken, exchange string) (*Kite, error) {
	if apiKey == "" || accessToken == "" {
		return nil, errors.New("kite api key and access token are required")
	}
	kc := kiteconnect.New(apiKey)
	kc.SetAccessToken(accessToken)
	return newKite(kc, exchange), nil
}

func newKite(kc kiteAPI, exchange string) *Kite {
	if exchange == "" {
		exchange = "NSE"
	}
	return &Kite{
		kc:       kc,
		exchange: strings.ToUpper(exchange),
		now:      time.Now,
		tokens:   make(map[string]map[string]int),
	}
}

var kiteIntervals = map[string]string{
	"1d":  "day",
	"60m": "60minute",
	"1h":  "60minute",
	"30m": "30minute",
	"15m": "15minute",
	"5m":  "5minute",
	"1m":  "minute",
}

func (k *Kite) FetchPriceSeries(ctx context.Context, symbol, period, interval string) (types.PriceSeries, error) {
	kiteInterval, ok := kiteIntervals[strings.ToLower(interval)]
	if !ok {
		return types.PriceSeries{}, fmt.Errorf("kite does not support interval %q", interval)
	}
	to := k.now()
	from, err := PeriodStart(to, period)
	if err != nil {
		return types.PriceSeries{}, err
	}

	tradingSymbol, exchange := splitExchangeSuffix(symbol, k.exchange)
	token, err := k.instrumentToken(ctx, exchange, tradingSymbol)
	if err != nil {
		return types.PriceSeries{}, err
	}

	candles, err := k.kc.GetHistoricalData(token, kiteInterval, from, to, false, false)
	if err != nil {
		return types.PriceSeries{}, fmt.Errorf("%w: kite historical %s: %v", types.ErrDataUnavailable, symbol, err)
	}

	bars := make([]types.Bar, 0, len(candles))
	for _, c := range candles {
		bars = append(bars, types.Bar{
			Time:   c.Date.Time,
			Open:   c.Open,
			High:   c.High,
			Low:    c.Low,
			Close:  c.Close,
			Volume: int64(c.Volume),
		})
	}
	bars = normalizeBars(bars)
	if len(bars) == 0 {
		return types.PriceSeries{}, fmt.Errorf("%w: kite returned no candles for %s", types.ErrDataUnavailable, symbol)
	}
	return types.PriceSeries{Symbol: symbol, Bars: bars}, nil
}

// instrumentToken resolves a trading symbol, loading the exchange's instrument
// dump once per process.
func (k *Kite) instrumentToken(ctx context.Context, exchange, tradingSymbol string) (int, error) {
	k.mu.RLock()
	table, loaded := k.tokens[exchange]
	k.mu.RUnlock()

	if !loaded {
		instruments, err := k.kc.GetInstrumentsByExchange(exchange)
		if err != nil {
			return 0, fmt.Errorf("%w: kite instruments %s: %v", types.ErrDataUnavailable, exchange, err)
		}
		table = make(map[string]int, len(instruments))
		for _, inst := range instruments {
			table[strings.ToUpper(inst.Tradingsymbol)] = inst.InstrumentToken
		}
		k.mu.Lock()
		k.tokens[exchange] = table
		k.mu.Unlock()
		logger.Info(ctx, "Loaded Kite instruments", "exchange", exchange, "count", len(table))
	}

	token, ok := table[tradingSymbol]
	if !ok {
		return 0, fmt.Errorf("%w: unknown %s symbol %s", types.ErrDataUnavailable, exchange, tradingSymbol)
	}
	return token, nil
}
