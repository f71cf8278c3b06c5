package agent

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/randalmurphal/storyflow/task"
)

// AnthropicCompleter implements Completer using the Anthropic Messages API.
type AnthropicCompleter struct {
	client    anthropic.Client
	models    map[task.Role]anthropic.Model
	fallback  anthropic.Model
	maxTokens int64
}

// AnthropicConfig configures an AnthropicCompleter.
type AnthropicConfig struct {
	// APIKey overrides ANTHROPIC_API_KEY when set.
	APIKey string
	// Model is used for roles without an entry in RoleModels.
	Model string
	// RoleModels maps a role to a model ID.
	RoleModels map[task.Role]string
	MaxTokens  int64
}

// NewAnthropicCompleter creates a completer for the Messages API.
func NewAnthropicCompleter(cfg AnthropicConfig) (*AnthropicCompleter, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("anthropic: model is required")
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}

	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	models := make(map[task.Role]anthropic.Model, len(cfg.RoleModels))
	for role, m := range cfg.RoleModels {
		if m != "" {
			models[role] = anthropic.Model(m)
		}
	}

	return &AnthropicCompleter{
		client:    anthropic.NewClient(opts...),
		models:    models,
		fallback:  anthropic.Model(cfg.Model),
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Complete implements Completer.
func (c *AnthropicCompleter) Complete(ctx context.Context, req Request) (Response, error) {
	model := c.fallback
	if m, ok := c.models[req.Role]; ok {
		model = m
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: req.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return Response{}, fmt.Errorf("anthropic API error: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return Response{
				Content:   block.Text,
				TokensIn:  int(msg.Usage.InputTokens),
				TokensOut: int(msg.Usage.OutputTokens),
			}, nil
		}
	}
	return Response{}, fmt.Errorf("no text content in response")
}
