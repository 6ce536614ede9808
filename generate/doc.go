// Package generate turns a compiled prompt into announcement text.
//
// A Provider makes one backend call per invocation. The Adapter wraps a
// provider with a per-attempt timeout, exponential backoff and a retry bound,
// and only retries failures that Classify reports as transient:
//
//	p, err := generate.NewProvider("openai/gpt-4o-mini", generate.ProviderOptions{APIKey: key})
//	if err != nil {
//	    return err
//	}
//	res := generate.NewAdapter(p, generate.AdapterConfig{MaxRetries: 2}).
//	    Generate(ctx, payload, "openai/gpt-4o-mini")
//
// Model ids are "provider/model" with providers openai, ollama and claude.
// The claude provider runs through an llmkit claude.Client.
package generate
