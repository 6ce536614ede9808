package generate

import "context"

// Payload is what a provider receives for one call.
type Payload struct {
	System string
	User   string
	Model  string // Provider-local model name
}

// Provider turns a payload into text. Implementations make exactly one
// backend call per invocation and never retry; the Adapter owns retries.
type Provider interface {
	Generate(ctx context.Context, p Payload) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, p Payload) (string, error)

// Generate implements Provider.
func (f ProviderFunc) Generate(ctx context.Context, p Payload) (string, error) {
	return f(ctx, p)
}
