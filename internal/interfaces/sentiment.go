package interfaces

import "context"

// SentimentProvider returns a score in [-1, 1]; 0 means no signal.
type SentimentProvider interface {
	Score(ctx context.Context, symbol string) (float64, error)
}
