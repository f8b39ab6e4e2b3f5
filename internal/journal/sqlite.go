package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/guregu/null/v6"
	_ "modernc.org/sqlite"

	"stock-analysis-bot/internal/interfaces"
	"stock-analysis-bot/internal/logger"
	"stock-analysis-bot/internal/types"
)

// SQLite persists the journal to a SQLite database.
type SQLite struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

var _ interfaces.Recorder = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database and runs migrations.
func OpenSQLite(ctx context.Context, dbPath string) (*SQLite, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLite{db: db, now: time.Now}
	if err := r.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info(ctx, "SQLite journal opened", "path", dbPath)
	return r, nil
}

func (r *SQLite) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS summaries (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded   INTEGER NOT NULL,
			ticker     TEXT NOT NULL,
			as_of      INTEGER NOT NULL,
			close      REAL NOT NULL,
			ma_window  INTEGER,
			ma         REAL,
			rsi        REAL,
			macd       REAL,
			macd_hist  REAL,
			pe_ratio   REAL,
			sentiment  REAL,
			signal     TEXT,
			trend      TEXT,
			rsi_zone   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_ticker ON summaries(ticker, recorded)`,
		`CREATE TABLE IF NOT EXISTS chats (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded  INTEGER NOT NULL,
			ticker    TEXT,
			question  TEXT,
			reply     TEXT
		)`,
	}
	for _, s := range stmts {
		if _, err := r.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLite) RecordSummary(ctx context.Context, s types.ContextSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO summaries
		(recorded, ticker, as_of, close, ma_window, ma, rsi, macd, macd_hist, pe_ratio, sentiment, signal, trend, rsi_zone)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.now().Unix(), s.Ticker, s.AsOf.Unix(), s.Close, s.MAWindow,
		s.MA, s.RSI, s.MACD, s.MACDHist, s.PERatio, s.Sentiment,
		string(s.Signal), string(s.Trend), string(s.Zone),
	)
	return err
}

func (r *SQLite) RecordChat(ctx context.Context, ticker, question, reply string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO chats (recorded, ticker, question, reply) VALUES (?, ?, ?, ?)`,
		r.now().Unix(), ticker, question, reply)
	return err
}

// RecentSummaries returns up to limit summaries for ticker, newest first.
func (r *SQLite) RecentSummaries(ctx context.Context, ticker string, limit int) ([]types.ContextSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ticker, as_of, close, ma_window, ma, rsi, macd, macd_hist, pe_ratio, sentiment, signal, trend, rsi_zone
		FROM summaries WHERE ticker = ? ORDER BY recorded DESC, id DESC LIMIT ?`, ticker, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.ContextSummary
	for rows.Next() {
		var (
			s                       types.ContextSummary
			asOf                    int64
			ma, rsi, macd, hist, pe null.Float
			sig, trend, zone        string
		)
		if err := rows.Scan(&s.Ticker, &asOf, &s.Close, &s.MAWindow, &ma, &rsi, &macd, &hist, &pe, &s.Sentiment, &sig, &trend, &zone); err != nil {
			return nil, err
		}
		s.AsOf = time.Unix(asOf, 0).UTC()
		s.MA, s.RSI, s.MACD, s.MACDHist, s.PERatio = ma, rsi, macd, hist, pe
		s.Signal, s.Trend, s.Zone = types.Signal(sig), types.Trend(trend), types.RSIZone(zone)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLite) Close() error {
	return r.db.Close()
}
