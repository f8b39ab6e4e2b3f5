package marketdata

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"stock-analysis-bot/internal/interfaces"
	"stock-analysis-bot/internal/types"
)

// Static generates a reproducible random-walk series per symbol for offline use.
type Static struct {
	now func() time.Time
}

var (
	_ interfaces.PriceProvider        = (*Static)(nil)
	_ interfaces.FundamentalsProvider = (*Static)(nil)
)

func NewStatic() *Static {
	return &Static{now: time.Now}
}

func seedFor(symbol string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToUpper(symbol)))
	return int64(h.Sum64() & math.MaxInt64)
}

// FetchPriceSeries emits one bar per weekday in the period. The interval is ignored.
func (s *Static) FetchPriceSeries(ctx context.Context, symbol, period, interval string) (types.PriceSeries, error) {
	end := s.now().UTC().Truncate(24 * time.Hour)
	start, err := PeriodStart(end, period)
	if err != nil {
		return types.PriceSeries{}, err
	}

	rng := rand.New(rand.NewSource(seedFor(symbol)))
	price := 500 + rng.Float64()*1500
	bars := make([]types.Bar, 0, 256)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		open := price
		price = math.Max(1, price*(1+rng.NormFloat64()*0.015))
		high := math.Max(open, price) * (1 + rng.Float64()*0.01)
		low := math.Min(open, price) * (1 - rng.Float64()*0.01)
		bars = append(bars, types.Bar{
			Time:   d,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: 100000 + rng.Int63n(900000),
		})
	}
	return types.PriceSeries{Symbol: symbol, Bars: bars}, nil
}

func (s *Static) FetchFundamentals(ctx context.Context, symbol string) (types.Fundamentals, error) {
	rng := rand.New(rand.NewSource(seedFor(symbol) + 1))
	return types.Fundamentals{
		Symbol:        symbol,
		CompanyName:   strings.ToUpper(symbol),
		Exchange:      "STATIC",
		Currency:      "INR",
		PERatio:       null.FloatFrom(math.Round((8+rng.Float64()*40)*100) / 100),
		DividendYield: null.FloatFrom(math.Round(rng.Float64()*500) / 10000),
	}, nil
}
