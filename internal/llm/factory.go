// Package llm selects the chat model backend.
package llm

import (
	"strings"

	"stock-analysis-bot/internal/interfaces"
	"stock-analysis-bot/internal/llm/llmobs"
	"stock-analysis-bot/internal/llm/noop"
	"stock-analysis-bot/internal/llm/openrouter"
	"stock-analysis-bot/internal/store"
)

// New returns the configured prompter wrapped with observability.
func New(cfg *store.Config) interfaces.Prompter {
	var p interfaces.Prompter
	switch strings.ToUpper(cfg.LLM.Provider) {
	case "OPENROUTER":
		p = openrouter.New(cfg)
	default:
		p = noop.NewNoopPrompter()
	}
	return llmobs.Wrap(p)
}
