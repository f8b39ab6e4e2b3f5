// Command report writes a one-page PDF stock report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"stock-analysis-bot/internal/logger"
	"stock-analysis-bot/internal/marketdata"
	"stock-analysis-bot/internal/marketdata/marketobs"
	"stock-analysis-bot/internal/report"
	"stock-analysis-bot/internal/store"
	"stock-analysis-bot/internal/trace"
)

func main() {
	ticker := flag.String("ticker", "INFY.NS", "Ticker symbol, e.g. INFY.NS")
	out := flag.String("out", "", "Output PDF path (default <TICKER>_report.pdf)")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	timeout := flag.Duration("timeout", 60*time.Second, "Overall deadline")
	flag.Parse()

	_ = godotenv.Load()
	if err := logger.Init(); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	if err := trace.Init("report"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	defer trace.Shutdown(context.Background())

	cfg, err := store.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	sym := strings.ToUpper(strings.TrimSpace(*ticker))
	path := *out
	if path == "" {
		path = sym + "_report.pdf"
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, cfg, sym, path); err != nil {
		logger.ErrorWithErr(ctx, "Report generation failed", err, "symbol", sym)
		fmt.Fprintf(os.Stderr, "report: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("PDF report generated: %s\n", path)
}

func run(ctx context.Context, cfg *store.Config, sym, path string) error {
	providers, err := marketdata.New(cfg)
	if err != nil {
		return err
	}
	b := report.NewBuilder(
		marketobs.WrapPrices(providers.Prices),
		marketobs.WrapFundamentals(providers.Fundamentals),
		cfg.Indicators, cfg.Signals,
	)

	op := logger.StartOperation(ctx, "report", "symbol", sym)
	data, err := b.Build(op.GetContext(), sym)
	if err != nil {
		op.EndWithError(err)
		return err
	}
	pdf, err := report.Render(data)
	if err != nil {
		op.EndWithError(err)
		return err
	}
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		op.EndWithError(err)
		return fmt.Errorf("write %s: %w", path, err)
	}
	op.End("bytes", len(pdf), "path", path)
	return nil
}
