package marketobs

import (
	"context"

	"stock-analysis-bot/internal/interfaces"
	"stock-analysis-bot/internal/logger"
	"stock-analysis-bot/internal/trace"
	"stock-analysis-bot/internal/types"
)

// observablePrices wraps a PriceProvider with logging and tracing
type observablePrices struct {
	inner interfaces.PriceProvider
}

var _ interfaces.PriceProvider = (*observablePrices)(nil)

// WrapPrices wraps a price provider with observability middleware
func WrapPrices(p interfaces.PriceProvider) interfaces.PriceProvider {
	return &observablePrices{inner: p}
}

func (o *observablePrices) FetchPriceSeries(ctx context.Context, symbol, period, interval string) (types.PriceSeries, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.FetchPriceSeries")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching price series", "symbol", symbol, "period", period, "interval", interval)

	series, err := o.inner.FetchPriceSeries(ctx, symbol, period, interval)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch price series", err, "symbol", symbol)
		return types.PriceSeries{}, err
	}

	fields := []any{"symbol", symbol, "bars", series.Len()}
	if last, ok := series.Last(); ok {
		fields = append(fields, "last_close", last.Close, "last_date", last.Time.Format("2006-01-02"))
	}
	logger.InfoSkip(ctx, 1, "Price series fetched", fields...)
	return series, nil
}

// observableFundamentals wraps a FundamentalsProvider with logging and tracing
type observableFundamentals struct {
	inner interfaces.FundamentalsProvider
}

var _ interfaces.FundamentalsProvider = (*observableFundamentals)(nil)

func WrapFundamentals(p interfaces.FundamentalsProvider) interfaces.FundamentalsProvider {
	return &observableFundamentals{inner: p}
}

func (o *observableFundamentals) FetchFundamentals(ctx context.Context, symbol string) (types.Fundamentals, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.FetchFundamentals")
	defer span.End()

	f, err := o.inner.FetchFundamentals(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch fundamentals", err, "symbol", symbol)
		return types.Fundamentals{}, err
	}
	logger.DebugSkip(ctx, 1, "Fundamentals fetched", "symbol", symbol, "pe_available", f.PERatio.Valid, "dividends", len(f.Dividends))
	return f, nil
}
