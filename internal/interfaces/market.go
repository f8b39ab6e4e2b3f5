package interfaces

import (
	"context"

	"stock-analysis-bot/internal/types"
)

// PriceProvider returns an ordered daily series. period and interval use
// Yahoo-style codes such as "6mo" and "1d".
type PriceProvider interface {
	FetchPriceSeries(ctx context.Context, symbol, period, interval string) (types.PriceSeries, error)
}

// FundamentalsProvider returns company data; unavailable fields are null.
type FundamentalsProvider interface {
	FetchFundamentals(ctx context.Context, symbol string) (types.Fundamentals, error)
}
