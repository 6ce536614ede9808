// Package config resolves announce configuration from layered sources.
//
// Precedence, highest first:
//  1. Command-line flags (ResolveWithFlags)
//  2. Environment: ANNOUNCE_<KEY>, then CI aliases such as RELEASE_TAG,
//     LLM_MODEL or GITHUB_TOKEN
//  3. Local config in the git root (.announce.yaml or .announce.toml)
//  4. Global config (~/.config/announce/config.yaml)
//  5. Built-in defaults
//
// Each resolved value records its Source:
//
//	cfg := config.NewAnnounceResolver().ResolveWithFlags(flags)
//	v, src := cfg.GetWithSource(config.KeyModelID) // "openai/gpt-4o-mini", "default"
//
// Load turns a Resolved config into typed Settings and rejects bad enums or
// integers with ErrInvalidValue. Credentials are read from the environment
// only; files that set them are ignored with a warning.
package config
