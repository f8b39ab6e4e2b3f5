package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"stock-analysis-bot/internal/dividend"
	"stock-analysis-bot/internal/export"
	"stock-analysis-bot/internal/logger"
	"stock-analysis-bot/internal/report"
	"stock-analysis-bot/internal/summary"
	"stock-analysis-bot/internal/trace"
	"stock-analysis-bot/internal/types"
)

const helpText = `Commands:
  analyze <SYMBOL>     load price history and indicators (e.g. analyze INFY.NS)
  price <SYMBOL>       latest close
  indicators [n]       last n indicator rows of the loaded ticker
  signals [n]          last n signals of the loaded ticker
  sentiment <SYMBOL>   news sentiment score
  dividends            top dividend yield stocks
  model [id]           show or switch the chat model
  models               list configured chat models
  export <file.csv>    write the loaded series and indicators as CSV
  report <file.pdf>    write a PDF report for the loaded ticker
  history              recent chat messages
  journal [SYMBOL] [n] last n journaled snapshots (SQLITE journal only)
  reset                forget the loaded ticker, chat history and cached sentiment
  help                 this text
  exit                 quit
Anything else is sent to the chat model with the loaded context.`

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem())
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer func() {
		if err := trace.Shutdown(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to shutdown tracer: %v\n", err)
		}
	}()

	cfg, err := loadConfig(ctx)
	must(err)

	a, err := initializeApp(ctx, cfg)
	must(err)
	defer a.close(ctx)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		fmt.Println("\nShutting down.")
		cancel()
		os.Stdin.Close()
	}()

	fmt.Println("Stock analysis bot. Type 'help' for commands.")
	a.repl(ctx, os.Stdin, os.Stdout)
}

// maxLineBytes bounds one input line; pasted questions can be long.
const maxLineBytes = 1 << 20

func (a *app) repl(ctx context.Context, in io.Reader, out io.Writer) {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			if err := sc.Err(); err != nil && ctx.Err() == nil {
				logger.ErrorWithErr(ctx, "Failed to read input", err)
				fmt.Fprintf(out, "\nInput error: %v\n", err)
			}
			return
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		if !a.dispatch(ctx, line, out) {
			return
		}
	}
}

// dispatch runs one input line and reports whether the loop should continue.
func (a *app) dispatch(ctx context.Context, line string, out io.Writer) bool {
	fields := strings.Fields(line)
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "exit", "quit":
		fmt.Fprintln(out, "Goodbye.")
		return false
	case "help":
		fmt.Fprintln(out, helpText)
	case "analyze":
		a.cmdAnalyze(ctx, args, out)
	case "price":
		a.cmdPrice(ctx, args, out)
	case "indicators":
		a.cmdIndicators(args, out)
	case "signals":
		a.cmdSignals(args, out)
	case "sentiment":
		a.cmdSentiment(ctx, args, out)
	case "dividends":
		a.cmdDividends(ctx, out)
	case "model":
		a.cmdModel(args, out)
	case "models":
		for _, m := range a.cfg.LLM.Models {
			marker := " "
			if m == a.session.Model() {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s\n", marker, m)
		}
	case "export":
		a.cmdExport(ctx, args, out)
	case "report":
		a.cmdReport(ctx, args, out)
	case "history":
		for _, m := range a.session.Tail(10) {
			fmt.Fprintf(out, "[%s] %s: %s\n", m.At.Format("15:04:05"), m.Role, m.Content)
		}
	case "journal":
		a.cmdJournal(ctx, args, out)
	case "reset":
		a.session.Reset()
		if c, ok := a.sentiment.(cacheClearer); ok {
			c.ClearCache()
		}
		fmt.Fprintln(out, "Session cleared.")
	default:
		fmt.Fprintln(out, a.session.Ask(ctx, line))
	}
	return true
}

type cacheClearer interface {
	ClearCache()
}

type summaryHistory interface {
	RecentSummaries(ctx context.Context, ticker string, limit int) ([]types.ContextSummary, error)
}

func (a *app) cmdJournal(ctx context.Context, args []string, out io.Writer) {
	hist, ok := a.recorder.(summaryHistory)
	if !ok {
		fmt.Fprintln(out, "Journal history needs journal.backend: SQLITE.")
		return
	}
	sym := a.session.Ticker()
	if len(args) > 0 {
		if _, err := strconv.Atoi(args[0]); err != nil {
			sym, args = strings.ToUpper(args[0]), args[1:]
		}
	}
	if sym == "" {
		fmt.Fprintln(out, "Usage: journal <SYMBOL> [n]")
		return
	}
	rows, err := hist.RecentSummaries(ctx, sym, tailCount(args))
	if err != nil {
		logger.ErrorWithErr(ctx, "Journal read failed", err, "symbol", sym)
		fmt.Fprintf(out, "Could not read journal: %v\n", err)
		return
	}
	if len(rows) == 0 {
		fmt.Fprintf(out, "No journaled snapshots for %s.\n", sym)
		return
	}
	for _, r := range rows {
		fmt.Fprintf(out, "%s  %s\n", r.AsOf.Format("2006-01-02"), summary.Headline(r))
	}
}

func (a *app) cmdAnalyze(ctx context.Context, args []string, out io.Writer) {
	if len(args) != 1 {
		fmt.Fprintln(out, "Usage: analyze <SYMBOL>")
		return
	}
	if _, err := a.session.Load(ctx, args[0]); err != nil {
		fmt.Fprintf(out, "Could not analyze %s: %v\n", args[0], err)
		return
	}
	sum, err := a.session.Summary()
	if err != nil {
		fmt.Fprintf(out, "Loaded %s but it has too little history: %v\n", a.session.Ticker(), err)
		return
	}
	fmt.Fprint(out, summary.Render(sum, a.cfg.Report.Currency))
	fmt.Fprintln(out, summary.Headline(sum))
}

func (a *app) cmdPrice(ctx context.Context, args []string, out io.Writer) {
	if len(args) != 1 {
		fmt.Fprintln(out, "Usage: price <SYMBOL>")
		return
	}
	sym := strings.ToUpper(args[0])
	series, err := a.prices.FetchPriceSeries(ctx, sym, "5d", "1d")
	if err != nil {
		fmt.Fprintf(out, "No price data for %s: %v\n", sym, err)
		return
	}
	last, ok := series.Last()
	if !ok {
		fmt.Fprintf(out, "No price data for %s\n", sym)
		return
	}
	fmt.Fprintf(out, "Latest price of %s: %s%.2f\n", sym, a.cfg.Report.Currency, last.Close)
}

func tailCount(args []string) int {
	if len(args) == 0 {
		return 5
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 5
	}
	return n
}

func (a *app) cmdIndicators(args []string, out io.Writer) {
	res := a.session.Analysis()
	if res == nil {
		fmt.Fprintln(out, "No stock data loaded yet.")
		return
	}
	pts := res.Indicators.Points
	n := tailCount(args)
	if n > len(pts) {
		n = len(pts)
	}
	fmt.Fprintf(out, "%-10s %10s %10s %8s %8s %8s\n", "Date", "Close", fmt.Sprintf("MA%d", res.Indicators.MAWindow), "RSI", "MACD", "Hist")
	for i := len(pts) - n; i < len(pts); i++ {
		p := pts[i]
		fmt.Fprintf(out, "%-10s %10.2f %10s %8s %8s %8s\n",
			p.Time.Format("2006-01-02"), res.Series.Bars[i].Close,
			summary.FormatReading(p.MA), summary.FormatReading(p.RSI),
			summary.FormatReading(p.MACD), summary.FormatReading(p.MACDHist))
	}
}

func (a *app) cmdSignals(args []string, out io.Writer) {
	res := a.session.Analysis()
	if res == nil {
		fmt.Fprintln(out, "No stock data loaded yet.")
		return
	}
	n := tailCount(args)
	if n > len(res.Signals) {
		n = len(res.Signals)
	}
	for i := len(res.Signals) - n; i < len(res.Signals); i++ {
		fmt.Fprintf(out, "%s  %s\n", res.Series.Bars[i].Time.Format("2006-01-02"), res.Signals[i])
	}
}

func (a *app) cmdSentiment(ctx context.Context, args []string, out io.Writer) {
	if len(args) != 1 {
		fmt.Fprintln(out, "Usage: sentiment <SYMBOL>")
		return
	}
	if a.sentiment == nil {
		fmt.Fprintln(out, "News sentiment is disabled.")
		return
	}
	sym := strings.ToUpper(args[0])
	score, err := a.sentiment.Score(ctx, sym)
	if err != nil {
		fmt.Fprintf(out, "Could not score news for %s: %v\n", sym, err)
		return
	}
	fmt.Fprintf(out, "News sentiment for %s: %.2f\n", sym, score)
}

func (a *app) cmdDividends(ctx context.Context, out io.Writer) {
	top, err := dividend.Top(ctx, a.dividends, a.cfg.Dividends.CandidatePool, a.cfg.Dividends.Limit)
	if err != nil {
		logger.ErrorWithErr(ctx, "Dividend fetch failed", err)
	}
	if len(top) == 0 {
		fmt.Fprintln(out, "Dividend data unavailable.")
		return
	}
	fmt.Fprintln(out, "Top dividend yield stocks:")
	for i, r := range top {
		fmt.Fprintf(out, "%d. %s (%s): %.2f%%\n", i+1, r.CompanyName, r.Symbol, r.YieldPercent)
	}
}

func (a *app) cmdModel(args []string, out io.Writer) {
	if len(args) == 0 {
		fmt.Fprintf(out, "Current model: %s\n", a.session.Model())
		return
	}
	if err := a.session.SetModel(args[0]); err != nil {
		fmt.Fprintf(out, "Could not switch model: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Model set to %s\n", a.session.Model())
}

func (a *app) cmdExport(ctx context.Context, args []string, out io.Writer) {
	if len(args) != 1 {
		fmt.Fprintln(out, "Usage: export <file.csv>")
		return
	}
	res := a.session.Analysis()
	if res == nil {
		fmt.Fprintln(out, "No stock data loaded yet.")
		return
	}
	if err := export.WriteFile(args[0], res); err != nil {
		logger.ErrorWithErr(ctx, "CSV export failed", err, "path", args[0])
		fmt.Fprintf(out, "Export failed: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Wrote %d rows to %s\n", res.Series.Len(), args[0])
}

func (a *app) cmdReport(ctx context.Context, args []string, out io.Writer) {
	if len(args) != 1 {
		fmt.Fprintln(out, "Usage: report <file.pdf>")
		return
	}
	sym := a.session.Ticker()
	if sym == "" {
		fmt.Fprintln(out, "No stock data loaded yet.")
		return
	}
	if err := writeReport(ctx, a, sym, args[0]); err != nil {
		fmt.Fprintf(out, "Report failed: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Report for %s saved to %s\n", sym, args[0])
}

func writeReport(ctx context.Context, a *app, sym, path string) error {
	data, err := a.reports.Build(ctx, sym)
	if err != nil {
		return err
	}
	pdf, err := report.Render(data)
	if err != nil {
		return err
	}
	return os.WriteFile(path, pdf, 0o644)
}
