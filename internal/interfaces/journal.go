package interfaces

import (
	"context"

	"stock-analysis-bot/internal/types"
)

// Recorder persists analysis snapshots and chat exchanges.
type Recorder interface {
	RecordSummary(ctx context.Context, s types.ContextSummary) error
	RecordChat(ctx context.Context, ticker, question, reply string) error
	Close() error
}
