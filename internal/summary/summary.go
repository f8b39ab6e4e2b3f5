// Package summary condenses the latest indicator state into a context block
// that can be shown to a user or handed to a language model.
package summary

import (
	"fmt"
	"strings"

	"github.com/guregu/null/v6"

	"stock-analysis-bot/internal/signal"
	"stock-analysis-bot/internal/types"
)

const DefaultCurrency = "Rs."

// Summarize builds a snapshot from the last bar of series. It fails with
// ErrInsufficientHistory when the series is empty or the last bar has no
// defined indicator readings at all.
func Summarize(ticker string, series types.PriceSeries, inds types.IndicatorSeries, pe null.Float, sentiment float64, th signal.Thresholds) (types.ContextSummary, error) {
	if series.Len() != inds.Len() {
		return types.ContextSummary{}, fmt.Errorf("%w: %d bars but %d indicator points", types.ErrInvalidSeries, series.Len(), inds.Len())
	}
	bar, ok := series.Last()
	if !ok {
		return types.ContextSummary{}, fmt.Errorf("%s: %w: empty price series", ticker, types.ErrInsufficientHistory)
	}
	pt, _ := inds.Last()
	if !pt.MA.Valid && !pt.RSI.Valid && !pt.MACD.Valid && !pt.MACDHist.Valid {
		return types.ContextSummary{}, fmt.Errorf("%s: %w: no indicator defined at %s", ticker, types.ErrInsufficientHistory, bar.Time.Format("2006-01-02"))
	}

	return types.ContextSummary{
		Ticker:    ticker,
		AsOf:      bar.Time,
		Close:     bar.Close,
		MAWindow:  inds.MAWindow,
		MA:        pt.MA,
		RSI:       pt.RSI,
		MACD:      pt.MACD,
		MACDHist:  pt.MACDHist,
		PERatio:   pe,
		Sentiment: sentiment,
		Signal:    signal.ClassifyAt(pt.RSI, pt.MA, bar.Close, th),
		Trend:     signal.TrendAt(bar.Close, pt.MA),
		Zone:      signal.ZoneOf(pt.RSI, th),
	}, nil
}

// FormatReading prints a reading with two decimals, or N/A when undefined.
func FormatReading(v null.Float) string {
	if !v.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", v.Float64)
}

func formatMoney(currency string, v null.Float) string {
	if !v.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%s%.2f", currency, v.Float64)
}

// Render produces the fixed-layout text block used as model context.
func Render(s types.ContextSummary, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stock: %s\n", s.Ticker)
	fmt.Fprintf(&b, "Last Price: %s\n", formatMoney(currency, null.FloatFrom(s.Close)))
	fmt.Fprintf(&b, "MA%d: %s\n", s.MAWindow, formatMoney(currency, s.MA))
	fmt.Fprintf(&b, "RSI: %s\n", FormatReading(s.RSI))
	fmt.Fprintf(&b, "MACD: %s\n", FormatReading(s.MACD))
	fmt.Fprintf(&b, "MACD Histogram: %s\n", FormatReading(s.MACDHist))
	fmt.Fprintf(&b, "PE Ratio: %s\n", FormatReading(s.PERatio))
	fmt.Fprintf(&b, "News Sentiment Score: %.2f\n", s.Sentiment)
	return b.String()
}

// Prompt wraps the rendered context and the user's question for the chat model.
func Prompt(s types.ContextSummary, question string) string {
	return fmt.Sprintf("You are a financial stock assistant.\n\n%s\nUser question: \"%s\"\n", Render(s, DefaultCurrency), question)
}

// TechnicalDigest is the short technical section of the PDF report.
func TechnicalDigest(s types.ContextSummary) []string {
	return []string{
		"RSI: " + FormatReading(s.RSI),
		"MACD: " + FormatReading(s.MACD),
		"MACD Histogram: " + FormatReading(s.MACDHist),
	}
}

// Headline is a one-line status used by the CLI and journal.
func Headline(s types.ContextSummary) string {
	return fmt.Sprintf("%s %s close=%.2f trend=%s rsi_zone=%s", s.Ticker, s.Signal, s.Close, s.Trend, s.Zone)
}
