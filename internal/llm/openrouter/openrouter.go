// Package openrouter answers chat prompts through the OpenRouter
// OpenAI-compatible chat completions API.
package openrouter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"stock-analysis-bot/internal/interfaces"
	"stock-analysis-bot/internal/store"
	"stock-analysis-bot/internal/trace"
)

const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Client sends one system+user exchange per Prompt call.
type Client struct {
	baseURL     string
	apiKeyEnv   string
	system      string
	maxTokens   int
	temperature float32
}

var _ interfaces.Prompter = (*Client)(nil)

func New(cfg *store.Config) *Client {
	base := cfg.LLM.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		baseURL:     strings.TrimRight(base, "/"),
		apiKeyEnv:   cfg.LLM.APIKeyEnv,
		system:      cfg.LLM.System,
		maxTokens:   cfg.LLM.MaxTokens,
		temperature: cfg.LLM.Temperature,
	}
}

// Prompt sends text to model. The API key is read from the environment on
// every call so a key added to .env after startup is picked up.
func (c *Client) Prompt(ctx context.Context, text, model string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "openrouter-chat-completion")
	defer span.End()

	model = strings.TrimSpace(model)
	if model == "" {
		return "", errors.New("no model selected")
	}
	apiKey := os.Getenv(c.apiKeyEnv)
	if apiKey == "" {
		return "", fmt.Errorf("%s missing", c.apiKeyEnv)
	}

	oc := openai.DefaultConfig(apiKey)
	oc.BaseURL = c.baseURL
	client := openai.NewClientWithConfig(oc)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.system},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("openrouter http %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
