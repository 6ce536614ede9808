package context

import (
	"context"

	"github.com/randalmurphal/announce/generate"
	"github.com/randalmurphal/announce/prompt"
)

// These helpers carry announce services on a context.Context so the CLI can
// assemble them once and the pipeline can pick them up.

type serviceContextKey string

const (
	providerServiceKey serviceContextKey = "announce.provider"
	promptServiceKey   serviceContextKey = "announce.prompts"
)

// WithProvider adds a generation provider to the context.
func WithProvider(ctx context.Context, p generate.Provider) context.Context {
	return context.WithValue(ctx, providerServiceKey, p)
}

// Provider extracts the generation provider from context.
func Provider(ctx context.Context) generate.Provider {
	if p, ok := ctx.Value(providerServiceKey).(generate.Provider); ok {
		return p
	}
	return nil
}

// WithPrompt adds a prompt loader to the context
func WithPrompt(ctx context.Context, loader *prompt.Loader) context.Context {
	return context.WithValue(ctx, promptServiceKey, loader)
}

// Prompt extracts prompt loader from context
func Prompt(ctx context.Context) *prompt.Loader {
	if loader, ok := ctx.Value(promptServiceKey).(*prompt.Loader); ok {
		return loader
	}
	return nil
}
