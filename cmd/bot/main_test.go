package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analysis-bot/internal/analyzer"
	"stock-analysis-bot/internal/journal"
	"stock-analysis-bot/internal/llm/noop"
	"stock-analysis-bot/internal/marketdata"
	"stock-analysis-bot/internal/report"
	"stock-analysis-bot/internal/sentiment"
	"stock-analysis-bot/internal/session"
	"stock-analysis-bot/internal/store"
	"stock-analysis-bot/internal/types"
)

type stubDividends struct {
	rows []types.RawDividendRow
	err  error
}

func (s stubDividends) FetchCandidates(ctx context.Context, limit int) ([]types.RawDividendRow, error) {
	return s.rows, s.err
}

func newTestApp(t *testing.T, div stubDividends) *app {
	t.Helper()
	cfg := store.Default()
	cfg.DataSource = "STATIC"
	static := marketdata.NewStatic()
	sent := sentiment.NewService(sentiment.StaticHeadlines{}, sentiment.DefaultServiceConfig())
	an := analyzer.New(cfg, static, static, sent)
	return &app{
		cfg:       cfg,
		prices:    static,
		sentiment: sent,
		dividends: div,
		reports:   report.NewBuilder(static, static, cfg.Indicators, cfg.Signals),
		recorder:  journal.Noop{},
		session:   session.New(an, noop.NewNoopPrompter(), journal.Noop{}, cfg.Signals, cfg.LLM.Model),
	}
}

func run(t *testing.T, a *app, input string) string {
	t.Helper()
	var out bytes.Buffer
	a.repl(context.Background(), strings.NewReader(input), &out)
	return out.String()
}

func TestReplAskBeforeAnalyze(t *testing.T) {
	a := newTestApp(t, stubDividends{})
	out := run(t, a, "is it a buy?\nexit\n")
	assert.Contains(t, out, session.NoDataReply)
	assert.Contains(t, out, "Goodbye.")
}

func TestReplAnalyzeAndChat(t *testing.T) {
	a := newTestApp(t, stubDividends{})
	out := run(t, a, "analyze infy.ns\nindicators 3\nsignals 2\nshould I buy?\nhistory\n")

	assert.Contains(t, out, "Stock: INFY.NS")
	assert.Contains(t, out, "News Sentiment Score:")
	assert.Contains(t, out, "RSI")
	assert.Contains(t, out, noop.Reply)
	assert.Contains(t, out, "user: should I buy?")
	assert.Equal(t, "INFY.NS", a.session.Ticker())
}

func TestReplPriceAndSentiment(t *testing.T) {
	a := newTestApp(t, stubDividends{})
	out := run(t, a, "price tcs.ns\nsentiment tcs.ns\nprice\n")
	assert.Contains(t, out, "Latest price of TCS.NS: Rs.")
	assert.Contains(t, out, "News sentiment for TCS.NS: ")
	assert.Contains(t, out, "Usage: price <SYMBOL>")
}

func TestReplDividends(t *testing.T) {
	a := newTestApp(t, stubDividends{err: types.ErrDataUnavailable})
	assert.Contains(t, run(t, a, "dividends\n"), "Dividend data unavailable.")

	a = newTestApp(t, stubDividends{rows: []types.RawDividendRow{
		{Name: "Coal India", Href: "/company/COALINDIA/consolidated/", Yield: "6.50%"},
		{Name: "ITC", Href: "/company/ITC/", Yield: "3.10%"},
	}})
	out := run(t, a, "dividends\n")
	assert.Contains(t, out, "1. Coal India (COALINDIA): 6.50%")
	assert.Contains(t, out, "2. ITC (ITC): 3.10%")
}

func TestReplModel(t *testing.T) {
	a := newTestApp(t, stubDividends{})
	out := run(t, a, "model mistralai/mistral-large-2407\nmodels\n")
	assert.Contains(t, out, "Model set to mistralai/mistral-large-2407")
	assert.Contains(t, out, "* mistralai/mistral-large-2407")
}

func TestReplExportAndReport(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "infy.csv")
	pdfPath := filepath.Join(dir, "infy.pdf")

	a := newTestApp(t, stubDividends{})
	out := run(t, a, "export "+csvPath+"\nanalyze INFY.NS\nexport "+csvPath+"\nreport "+pdfPath+"\n")
	assert.Contains(t, out, "No stock data loaded yet.")
	assert.Contains(t, out, "Report for INFY.NS saved to")

	csv, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(csv), "Date,Close,MA,RSI,MACD,MACD_Hist,Signal"))

	pdf, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestReplLongLine(t *testing.T) {
	a := newTestApp(t, stubDividends{})
	long := strings.Repeat("why ", 50000)
	out := run(t, a, long+"\nexit\n")
	assert.Contains(t, out, session.NoDataReply)
	assert.Contains(t, out, "Goodbye.")

	out = run(t, a, strings.Repeat("x", maxLineBytes+10)+"\nexit\n")
	assert.Contains(t, out, "Input error:")
	assert.NotContains(t, out, "Goodbye.")
}

type clearingSentiment struct {
	cleared int
}

func (c *clearingSentiment) Score(ctx context.Context, symbol string) (float64, error) { return 0.25, nil }
func (c *clearingSentiment) ClearCache() { c.cleared++ }

func TestReplResetClearsSentimentCache(t *testing.T) {
	a := newTestApp(t, stubDividends{})
	sent := &clearingSentiment{}
	a.sentiment = sent

	out := run(t, a, "analyze INFY.NS\nreset\n")
	assert.Contains(t, out, "Session cleared.")
	assert.Equal(t, 1, sent.cleared)
	assert.Empty(t, a.session.Ticker())
}

func TestReplJournal(t *testing.T) {
	a := newTestApp(t, stubDividends{})
	assert.Contains(t, run(t, a, "journal INFY.NS\n"), "Journal history needs journal.backend: SQLITE.")

	ctx := context.Background()
	rec, err := journal.OpenSQLite(ctx, filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer rec.Close()

	cfg := a.cfg
	static := marketdata.NewStatic()
	a.recorder = rec
	a.session = session.New(analyzer.New(cfg, static, static, nil), noop.NewNoopPrompter(), rec, cfg.Signals, cfg.LLM.Model)

	out := run(t, a, "journal TCS.NS\nanalyze INFY.NS\nanalyze INFY.NS\njournal 1\njournal\n")
	assert.Contains(t, out, "No journaled snapshots for TCS.NS.")
	assert.Equal(t, 3, strings.Count(out, "  INFY.NS "))

	rows, err := rec.RecentSummaries(ctx, "INFY.NS", 10)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
