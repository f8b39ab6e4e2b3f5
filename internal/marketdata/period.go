// Package marketdata provides daily price series and company fundamentals
// from Yahoo Finance, Zerodha Kite or a deterministic offline generator.
package marketdata

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"stock-analysis-bot/internal/types"
)

// PeriodStart converts a Yahoo-style range code ("5d", "6mo", "1y", "ytd",
// "max") to the first calendar day it covers, counting back from now.
func PeriodStart(now time.Time, period string) (time.Time, error) {
	p := strings.ToLower(strings.TrimSpace(period))
	switch p {
	case "ytd":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), nil
	case "max":
		// Kite caps daily history per request at 2000 days
		return now.AddDate(0, 0, -2000), nil
	}

	unit := ""
	for _, u := range []string{"mo", "wk", "d", "y"} {
		if strings.HasSuffix(p, u) {
			unit = u
			break
		}
	}
	if unit == "" {
		return time.Time{}, fmt.Errorf("unsupported period %q", period)
	}
	n, err := strconv.Atoi(strings.TrimSuffix(p, unit))
	if err != nil || n <= 0 {
		return time.Time{}, fmt.Errorf("unsupported period %q", period)
	}

	switch unit {
	case "d":
		return now.AddDate(0, 0, -n), nil
	case "wk":
		return now.AddDate(0, 0, -7*n), nil
	case "mo":
		return now.AddDate(0, -n, 0), nil
	default:
		return now.AddDate(-n, 0, 0), nil
	}
}

// normalizeBars drops malformed bars, orders by time and removes duplicate
// timestamps keeping the last one seen.
func normalizeBars(bars []types.Bar) []types.Bar {
	clean := make([]types.Bar, 0, len(bars))
	for _, b := range bars {
		if b.Valid() {
			clean = append(clean, b)
		}
	}
	sort.SliceStable(clean, func(i, j int) bool { return clean[i].Time.Before(clean[j].Time) })

	out := clean[:0]
	for _, b := range clean {
		if n := len(out); n > 0 && b.Time.Equal(out[n-1].Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

// splitExchangeSuffix turns "INFY.NS" into ("INFY", "NSE").
func splitExchangeSuffix(symbol, defaultExchange string) (string, string) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	switch {
	case strings.HasSuffix(s, ".NS"):
		return strings.TrimSuffix(s, ".NS"), "NSE"
	case strings.HasSuffix(s, ".BO"):
		return strings.TrimSuffix(s, ".BO"), "BSE"
	}
	return s, defaultExchange
}
