// Package prompt loads announcement templates and compiles release
// contexts into model payloads.
//
// Templates are text/template files named <name>.txt, searched in
// .announce/prompts/, then prompts/ in the project, then the embedded
// defaults. Projects override a template by dropping a file with the same
// name into either directory.
//
// The Compiler fills a fixed set of named slots (see SlotNames) and
// enforces a hard token bound:
//
//	c := prompt.NewCompiler(prompt.NewLoader("."), prompt.CompilerConfig{MaxTokens: 12000})
//	payload, err := c.Compile(rc, release.FormatMkDocs)
//	if errors.Is(err, release.ErrContextOverflow) {
//	    // the compiler never truncates
//	}
package prompt
