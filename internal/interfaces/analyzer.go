package interfaces

import (
	"context"

	"stock-analysis-bot/internal/types"
)

type Analyzer interface {
	Analyze(ctx context.Context, symbol string) (*types.Analysis, error)
}
