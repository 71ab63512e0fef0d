// Package llm wraps the chat-completion service the assistant asks for
// market evaluations.
package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"

	"gpt-manifold/internal/config"
)

// Completer returns the model's reply to a system + user prompt pair.
type Completer interface {
	Complete(ctx context.Context, model, system, user string) (string, error)
}

// OpenAI is a Completer backed by the OpenAI chat completions API.
type OpenAI struct {
	client *openai.Client
	logger *slog.Logger
}

// NewOpenAI creates a client for the configured key. A non-empty BaseURL
// points it at an OpenAI-compatible endpoint instead of api.openai.com.
func NewOpenAI(cfg config.OpenAIConfig, logger *slog.Logger) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		logger: logger.With("component", "llm"),
	}
}

// Complete sends one system and one user message and returns the first
// choice's content verbatim.
func (o *OpenAI) Complete(ctx context.Context, model, system, user string) (string, error) {
	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: system,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: user,
				},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	o.logger.Debug("completion received",
		"model", resp.Model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return resp.Choices[0].Message.Content, nil
}
