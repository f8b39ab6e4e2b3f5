package journal

import (
	"context"
	"fmt"
	"strings"

	"stock-analysis-bot/internal/interfaces"
	"stock-analysis-bot/internal/logger"
	"stock-analysis-bot/internal/store"
	"stock-analysis-bot/internal/types"
)

// Noop discards everything.
type Noop struct{}

func (Noop) RecordSummary(ctx context.Context, s types.ContextSummary) error { return nil }
func (Noop) RecordChat(ctx context.Context, ticker, question, reply string) error { return nil }
func (Noop) Close() error { return nil }

// New opens the backend named by cfg.Journal.Backend. The JSONL backend
// compresses old files once at startup.
func New(ctx context.Context, cfg *store.Config) (interfaces.Recorder, error) {
	switch strings.ToUpper(cfg.Journal.Backend) {
	case "", "NONE":
		return Noop{}, nil
	case "JSONL":
		j := NewJSONL(cfg.Journal.Dir)
		if err := j.CompressOlder(cfg.Journal.CompressAfterD); err != nil {
			logger.ErrorWithErr(ctx, "Failed to compress old journal files", err, "dir", cfg.Journal.Dir)
		}
		return j, nil
	case "SQLITE":
		return OpenSQLite(ctx, cfg.Journal.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown journal backend %q", cfg.Journal.Backend)
	}
}
