// Command watch analyzes a watchlist on a cron schedule and journals each
// snapshot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"stock-analysis-bot/internal/analyzer"
	"stock-analysis-bot/internal/journal"
	"stock-analysis-bot/internal/logger"
	"stock-analysis-bot/internal/marketdata"
	"stock-analysis-bot/internal/marketdata/marketobs"
	"stock-analysis-bot/internal/scheduler"
	"stock-analysis-bot/internal/sentiment"
	"stock-analysis-bot/internal/store"
	"stock-analysis-bot/internal/summary"
	"stock-analysis-bot/internal/trace"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	once := flag.Bool("once", false, "Run a single pass and exit")
	flag.Parse()

	_ = godotenv.Load()
	must(logger.Init())
	defer logger.Sync()
	if err := trace.Init("watch"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	defer trace.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := store.LoadOrDefault(*configPath)
	must(err)

	providers, err := marketdata.New(cfg)
	must(err)
	an := analyzer.New(cfg,
		marketobs.WrapPrices(providers.Prices),
		marketobs.WrapFundamentals(providers.Fundamentals),
		sentiment.NewFromConfig(cfg),
	)

	rec, err := journal.New(ctx, cfg)
	must(err)
	defer rec.Close()

	s := scheduler.New(an, rec, cfg.Signals, cfg.Watch.Symbols)

	if *once {
		for _, r := range s.RunOnce(ctx) {
			if r.Err != nil {
				fmt.Printf("%s: %v\n", r.Symbol, r.Err)
				continue
			}
			fmt.Println(summary.Headline(r.Summary))
		}
		return
	}

	must(s.Register(ctx, cfg.Watch.Schedule))
	s.Start()
	logger.Info(ctx, "Watchlist scheduler started", "schedule", cfg.Watch.Schedule, "symbols", len(cfg.Watch.Symbols))

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	logger.Info(ctx, "Shutting down watchlist scheduler")
	cancel()
	s.Stop()
}
