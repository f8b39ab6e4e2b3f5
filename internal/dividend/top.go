package dividend

import (
	"context"

	"stock-analysis-bot/internal/interfaces"
	"stock-analysis-bot/internal/logger"
	"stock-analysis-bot/internal/types"
)

// Top fetches up to pool candidate rows from src and ranks them down to
// limit. A failed fetch yields an empty slice and the error.
func Top(ctx context.Context, src interfaces.DividendSource, pool, limit int) ([]types.DividendRecord, error) {
	if pool < limit {
		pool = limit
	}
	rows, err := src.FetchCandidates(ctx, pool)
	if err != nil {
		return []types.DividendRecord{}, err
	}
	ranked := Rank(rows, limit)
	logger.Debug(ctx, "Dividend candidates ranked", "candidates", len(rows), "ranked", len(ranked))
	return ranked, nil
}
