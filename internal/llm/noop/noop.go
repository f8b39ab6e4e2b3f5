package noop

import (
	"context"

	"stock-analysis-bot/internal/logger"
)

const Reply = "No language model is configured. Set llm.provider to OPENROUTER and provide an API key to enable chat."

// NoopPrompter is a fallback used when no LLM is configured
type NoopPrompter struct{}

func NewNoopPrompter() *NoopPrompter {
	return &NoopPrompter{}
}

// Prompt always returns the fixed Reply.
func (p *NoopPrompter) Prompt(ctx context.Context, text, model string) (string, error) {
	logger.Debug(ctx, "Noop prompter called", "model", model)
	return Reply, nil
}
