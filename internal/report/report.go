// Package report produces a one-page PDF stock report: company data,
// recent dividends, a one-year price summary and the latest technicals.
package report

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/guregu/null/v6"

	"stock-analysis-bot/internal/interfaces"
	"stock-analysis-bot/internal/logger"
	"stock-analysis-bot/internal/signal"
	"stock-analysis-bot/internal/summary"
	"stock-analysis-bot/internal/ta"
	"stock-analysis-bot/internal/types"
)

const (
	NoDividends  = "No dividend history available."
	NoPriceData  = "No historical price data available."
	NoTechnicals = "Not enough history for technical indicators."

	maxDividends = 5
)

// PriceStats summarizes closing prices over the report window.
type PriceStats struct {
	High   float64
	Low    float64
	Mean   float64
	StdDev float64 // sample standard deviation; NaN with fewer than two bars
}

// Data is everything rendered into the report.
type Data struct {
	Symbol       string
	Fundamentals types.Fundamentals
	Prices       *PriceStats // nil when no history is available
	Technical    *types.ContextSummary
	GeneratedAt  time.Time
}

func ComputePriceStats(series types.PriceSeries) *PriceStats {
	closes := series.Closes()
	if len(closes) == 0 {
		return nil
	}
	st := &PriceStats{High: closes[0], Low: closes[0], Mean: ta.Mean(closes), StdDev: ta.StdDev(closes, len(closes))}
	for _, c := range closes[1:] {
		st.High = math.Max(st.High, c)
		st.Low = math.Min(st.Low, c)
	}
	return st
}

// Builder gathers report data from the market data providers.
type Builder struct {
	prices       interfaces.PriceProvider
	fundamentals interfaces.FundamentalsProvider
	indicators   ta.Config
	thresholds   signal.Thresholds
	now          func() time.Time
}

func NewBuilder(prices interfaces.PriceProvider, fundamentals interfaces.FundamentalsProvider, indicators ta.Config, th signal.Thresholds) *Builder {
	return &Builder{
		prices:       prices,
		fundamentals: fundamentals,
		indicators:   indicators,
		thresholds:   th,
		now:          time.Now,
	}
}

// Build collects one year of prices and the company fundamentals. Either
// source may be unavailable; the report then shows placeholders.
func (b *Builder) Build(ctx context.Context, symbol string) (Data, error) {
	d := Data{Symbol: symbol, GeneratedAt: b.now()}

	f, ferr := b.fundamentals.FetchFundamentals(ctx, symbol)
	if ferr != nil {
		logger.Warn(ctx, "Fundamentals unavailable for report", "symbol", symbol, "error", ferr)
		f = types.Fundamentals{Symbol: symbol}
	}
	d.Fundamentals = f

	series, perr := b.prices.FetchPriceSeries(ctx, symbol, "1y", "1d")
	if perr != nil {
		logger.Warn(ctx, "Price history unavailable for report", "symbol", symbol, "error", perr)
	}
	if ferr != nil && perr != nil {
		return Data{}, fmt.Errorf("no data for %s: %w", symbol, perr)
	}
	if perr != nil {
		return d, nil
	}

	d.Prices = ComputePriceStats(series)
	inds, err := ta.Compute(series, b.indicators)
	if err != nil {
		return Data{}, err
	}
	if s, err := summary.Summarize(symbol, series, inds, f.PERatio, 0, b.thresholds); err == nil {
		d.Technical = &s
	}
	return d, nil
}

func fmtValue(v null.Float) string {
	if !v.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", v.Float64)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// CompanyLines lists the basic stock data section.
func CompanyLines(f types.Fundamentals) []string {
	yield := "N/A"
	if f.DividendYield.Valid {
		yield = fmt.Sprintf("%.2f%%", f.DividendYield.Float64*100)
	}
	return []string{
		"Company: " + orNA(f.CompanyName),
		"Exchange: " + orNA(f.Exchange),
		"Market Cap: " + fmtValue(f.MarketCap),
		"PE Ratio: " + fmtValue(f.PERatio),
		"EPS: " + fmtValue(f.EPS),
		"Dividend Yield: " + yield,
		"52 Week High: " + fmtValue(f.High52W),
		"52 Week Low: " + fmtValue(f.Low52W),
		"Current Price: " + fmtValue(f.CurrentPrice),
	}
}

// DividendLines lists the most recent dividends, oldest first.
func DividendLines(events []types.DividendEvent) []string {
	if len(events) == 0 {
		return []string{NoDividends}
	}
	recent := make([]types.DividendEvent, 0, maxDividends)
	for _, e := range events {
		recent = append(recent, e)
		if len(recent) == maxDividends {
			break
		}
	}
	out := make([]string, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		out = append(out, fmt.Sprintf("%s    %.2f", recent[i].Date.Format("2006-01-02"), recent[i].Amount))
	}
	return out
}

func PriceLines(st *PriceStats) []string {
	if st == nil {
		return []string{NoPriceData}
	}
	std := "N/A"
	if !math.IsNaN(st.StdDev) {
		std = fmt.Sprintf("%.2f", st.StdDev)
	}
	return []string{
		fmt.Sprintf("1Y High: %.2f", st.High),
		fmt.Sprintf("1Y Low: %.2f", st.Low),
		fmt.Sprintf("1Y Mean: %.2f", st.Mean),
		"1Y Volatility (Std Dev): " + std,
	}
}

// Render lays out d as an A4 PDF.
func Render(d Data) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle("Stock Analysis Report: "+d.Symbol, true)
	pdf.SetCreationDate(d.GeneratedAt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	title := orNA(d.Fundamentals.CompanyName)
	if title == "N/A" {
		title = d.Symbol
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, tr("Stock Analysis Report: "+title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 10, "Generated on: "+d.GeneratedAt.Format("2006-01-02 15:04"), "", 1, "", false, 0, "")

	tech := []string{NoTechnicals}
	if d.Technical != nil {
		tech = summary.TechnicalDigest(*d.Technical)
	}

	sections := []struct {
		heading string
		lines   []string
	}{
		{"Basic Stock Data", CompanyLines(d.Fundamentals)},
		{"Dividend History", DividendLines(d.Fundamentals.Dividends)},
		{"Price Summary", PriceLines(d.Prices)},
		{"Technical Indicators", tech},
	}
	for _, s := range sections {
		pdf.Ln(5)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 10, s.heading, "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 12)
		for _, line := range s.lines {
			pdf.MultiCell(0, 7, tr(line), "", "", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}
	return buf.Bytes(), nil
}
