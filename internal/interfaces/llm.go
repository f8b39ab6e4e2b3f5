package interfaces

import "context"

// Prompter sends a single prompt to a chat model and returns its reply.
type Prompter interface {
	Prompt(ctx context.Context, text, model string) (string, error)
}
