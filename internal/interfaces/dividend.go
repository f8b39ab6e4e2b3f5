package interfaces

import (
	"context"

	"stock-analysis-bot/internal/types"
)

type DividendSource interface {
	FetchCandidates(ctx context.Context, limit int) ([]types.RawDividendRow, error)
}
