package marketdata

import (
	"fmt"
	"os"
	"time"

	"stock-analysis-bot/internal/interfaces"
	"stock-analysis-bot/internal/store"
)

// Providers groups the collaborators selected by configuration.
type Providers struct {
	Prices       interfaces.PriceProvider
	Fundamentals interfaces.FundamentalsProvider
}

// New wires providers for cfg.DataSource. Kite has no fundamentals endpoint,
// so Yahoo serves them alongside Kite candles.
func New(cfg *store.Config) (Providers, error) {
	timeout := time.Duration(cfg.Price.TimeoutSeconds) * time.Second
	switch cfg.DataSource {
	case "STATIC":
		s := NewStatic()
		return Providers{Prices: s, Fundamentals: s}, nil
	case "KITE":
		k, err := NewKite(os.Getenv(cfg.Kite.APIKeyEnv), os.Getenv(cfg.Kite.AccessTokenEnv), cfg.Exchange)
		if err != nil {
			return Providers{}, fmt.Errorf("kite provider: %w", err)
		}
		return Providers{Prices: k, Fundamentals: NewYahoo("", timeout)}, nil
	case "YAHOO":
		y := NewYahoo("", timeout)
		return Providers{Prices: y, Fundamentals: y}, nil
	default:
		return Providers{}, fmt.Errorf("unknown data source %q", cfg.DataSource)
	}
}
