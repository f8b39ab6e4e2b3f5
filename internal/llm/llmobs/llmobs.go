package llmobs

import (
	"context"
	"time"

	"stock-analysis-bot/internal/interfaces"
	"stock-analysis-bot/internal/logger"
	"stock-analysis-bot/internal/trace"
)

// observablePrompter wraps a Prompter with observability (logging & tracing)
type observablePrompter struct {
	prompter interfaces.Prompter
}

// Compile-time interface check
var _ interfaces.Prompter = (*observablePrompter)(nil)

// Wrap wraps a prompter with observability middleware
func Wrap(p interfaces.Prompter) interfaces.Prompter {
	return &observablePrompter{prompter: p}
}

func (op *observablePrompter) Prompt(ctx context.Context, text, model string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Prompt")
	defer span.End()

	fields := []any{"model", model, "prompt_chars", len(text)}
	if logger.IsDebugEnabled() {
		fields = append(fields, "prompt", text)
	}
	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Sending prompt", fields...)

	start := time.Now()
	reply, err := op.prompter.Prompt(ctx, text, model)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Prompt failed", err, "model", model)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Prompt answered",
		"model", model,
		"reply_chars", len(reply),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return reply, nil
}
