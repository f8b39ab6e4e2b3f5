// Package scheduler runs the watchlist analysis on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"stock-analysis-bot/internal/analyzer"
	"stock-analysis-bot/internal/interfaces"
	"stock-analysis-bot/internal/logger"
	"stock-analysis-bot/internal/signal"
	"stock-analysis-bot/internal/summary"
	"stock-analysis-bot/internal/types"
)

// Result is the outcome of one symbol in a watchlist pass.
type Result struct {
	Symbol  string
	Summary types.ContextSummary
	Err     error
}

type Scheduler struct {
	cron       *cron.Cron
	analyzer   interfaces.Analyzer
	recorder   interfaces.Recorder
	thresholds signal.Thresholds
	symbols    []string

	mu      sync.Mutex
	running bool
}

// New creates a scheduler for symbols. Schedules use six fields with seconds.
func New(a interfaces.Analyzer, rec interfaces.Recorder, th signal.Thresholds, symbols []string) *Scheduler {
	clean := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			clean = append(clean, s)
		}
	}
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		analyzer:   a,
		recorder:   rec,
		thresholds: th,
		symbols:    clean,
	}
}

// Register schedules the watchlist pass with a six-field cron expression.
func (s *Scheduler) Register(ctx context.Context, spec string) error {
	if len(s.symbols) == 0 {
		return errors.New("watchlist is empty")
	}
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("register watchlist task: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running pass to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce analyzes every symbol in order and journals each summary. A
// pass that starts while another is still running is skipped.
func (s *Scheduler) RunOnce(ctx context.Context) []Result {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		logger.Warn(ctx, "Watchlist pass still running, skipping")
		return nil
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	op := logger.StartOperation(ctx, "watchlist", "symbols", len(s.symbols))
	ctx = op.GetContext()

	results := make([]Result, 0, len(s.symbols))
	failed := 0
	for _, sym := range s.symbols {
		if ctx.Err() != nil {
			break
		}
		r := s.analyze(ctx, sym)
		if r.Err != nil {
			failed++
			logger.ErrorWithErr(ctx, "Watchlist analysis failed", r.Err, "symbol", sym)
		} else {
			logger.Info(ctx, summary.Headline(r.Summary))
		}
		results = append(results, r)
	}
	op.End("analyzed", len(results), "failed", failed)
	return results
}

func (s *Scheduler) analyze(ctx context.Context, sym string) Result {
	res, err := s.analyzer.Analyze(ctx, sym)
	if err != nil {
		return Result{Symbol: sym, Err: err}
	}
	sum, err := analyzer.Summary(res, s.thresholds)
	if err != nil {
		return Result{Symbol: sym, Err: err}
	}
	if s.recorder != nil {
		if err := s.recorder.RecordSummary(ctx, sum); err != nil {
			logger.ErrorWithErr(ctx, "Failed to journal summary", err, "symbol", sym)
		}
	}
	return Result{Symbol: sym, Summary: sum}
}
