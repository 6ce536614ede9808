package generate

import (
	"context"

	"github.com/randalmurphal/llmkit/claude"
)

// LLMProvider adapts an llmkit claude.Client. The model is fixed when the
// client is built, so Payload.Model is ignored.
type LLMProvider struct {
	client claude.Client
}

// NewLLMProvider wraps client.
func NewLLMProvider(client claude.Client) *LLMProvider {
	return &LLMProvider{client: client}
}

// Generate implements Provider.
func (l *LLMProvider) Generate(ctx context.Context, p Payload) (string, error) {
	result, err := l.client.Complete(ctx, claude.CompletionRequest{
		SystemPrompt: p.System,
		Messages:     []claude.Message{{Role: claude.RoleUser, Content: p.User}},
	})
	if err != nil {
		return "", err
	}
	return result.Content, nil
}

// claudeBlockedTools lists the CLI's built-in tools. Generation is a single
// text completion, so none of them may run.
var claudeBlockedTools = []string{
	"Bash", "Edit", "MultiEdit", "Write", "NotebookEdit",
	"Read", "Glob", "Grep", "WebFetch", "WebSearch", "Task",
}

// NewClaudeCLI builds a provider backed by the claude CLI. The CLI runs one
// turn with every built-in tool disallowed and permission prompts left on.
func NewClaudeCLI(modelName, workdir string, opts ...claude.ClaudeOption) *LLMProvider {
	if workdir == "" {
		workdir = "."
	}
	base := []claude.ClaudeOption{
		claude.WithModel(ClaudeModel(modelName)),
		claude.WithWorkdir(workdir),
		claude.WithDisallowedTools(claudeBlockedTools),
		claude.WithMaxTurns(1),
		claude.WithNoSessionPersistence(),
	}
	return NewLLMProvider(claude.NewClaudeCLI(append(base, opts...)...))
}
