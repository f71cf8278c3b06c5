package agent

import (
	"context"
	"fmt"

	llm "github.com/randalmurphal/llmkit/claude"

	"github.com/randalmurphal/storyflow/task"
)

// ClientCompleter adapts flowgraph llm.Client values to Completer. A role
// with its own client uses it; every other role uses the fallback.
type ClientCompleter struct {
	fallback llm.Client
	byRole   map[task.Role]llm.Client
}

// NewClientCompleter creates a completer that sends every role to client.
func NewClientCompleter(client llm.Client) *ClientCompleter {
	return &ClientCompleter{
		fallback: client,
		byRole:   make(map[task.Role]llm.Client),
	}
}

// WithRoleClient routes one role to a dedicated client.
func (c *ClientCompleter) WithRoleClient(role task.Role, client llm.Client) *ClientCompleter {
	c.byRole[role] = client
	return c
}

// NewClaudeCLICompleter creates one Claude CLI client per distinct model and
// routes each role to the model chosen for it. models overrides the default
// role mapping; nil uses task.SelectModel for every role.
func NewClaudeCLICompleter(workdir string, models map[task.Role]string) *ClientCompleter {
	clients := make(map[string]llm.Client)
	clientFor := func(model string) llm.Client {
		if c, ok := clients[model]; ok {
			return c
		}
		c := llm.NewClaudeCLI(
			llm.WithModel(model),
			llm.WithWorkdir(workdir),
			llm.WithDangerouslySkipPermissions(), // Non-interactive mode for automation
		)
		clients[model] = c
		return c
	}

	completer := NewClientCompleter(clientFor(string(task.SelectModel(task.CharacterDesigner))))
	for _, role := range task.Roles {
		model := string(task.SelectModel(role))
		if m, ok := models[role]; ok && m != "" {
			model = m
		}
		completer.WithRoleClient(role, clientFor(model))
	}
	return completer
}

// Complete implements Completer.
func (c *ClientCompleter) Complete(ctx context.Context, req Request) (Response, error) {
	client := c.fallback
	if rc, ok := c.byRole[req.Role]; ok {
		client = rc
	}
	if client == nil {
		return Response{}, fmt.Errorf("no llm client for role %s", req.Role)
	}

	result, err := client.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: req.System,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: req.Prompt}},
	})
	if err != nil {
		return Response{}, err
	}

	return Response{
		Content:   result.Content,
		TokensIn:  result.Usage.InputTokens,
		TokensOut: result.Usage.OutputTokens,
	}, nil
}
