// Package context builds the bounded release context and carries announce
// services on a context.Context.
//
// Builder is the single merge point of a run: it concatenates collector
// outputs, applies the canonical ordering, and drops low-priority items
// from the tail until the serialized context fits the token budget.
//
//	b := context.NewBuilder(context.Limits{MaxTokens: 8000})
//	rc, err := b.Build(ref, outputs)
//	if errors.Is(err, release.ErrContextOverflow) {
//	    // API changes alone do not fit; raise max_context_tokens
//	}
//
// Service injection:
//
//	services, _ := context.NewServices(context.Config{RepoPath: "."})
//	ctx := services.InjectAll(ctx)
//	provider := context.Provider(ctx)
//
// Import it under an alias to keep the standard library name free:
//
//	import devcontext "github.com/randalmurphal/announce/context"
package context
