package generate

import (
	"fmt"
	"net/http"
	"time"

	"github.com/randalmurphal/llmkit/claude"
)

// ProviderOptions carries provider credentials and endpoints.
type ProviderOptions struct {
	APIKey  string
	BaseURL string

	// Timeout bounds a single HTTP request. The Adapter's per-attempt
	// timeout normally fires first.
	Timeout    time.Duration
	HTTPClient *http.Client

	// Workdir is where the claude CLI runs.
	Workdir string

	// LLM overrides the client for claude model ids.
	LLM claude.Client
}

func (o ProviderOptions) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 2 * DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// NewProvider builds the provider named by modelID.
func NewProvider(modelID string, opts ProviderOptions) (Provider, error) {
	id, err := ParseModelID(modelID)
	if err != nil {
		return nil, err
	}

	switch id.Provider {
	case ProviderOpenAI:
		return NewOpenAI(opts), nil
	case ProviderOllama:
		return NewOllama(opts), nil
	case ProviderClaude:
		if opts.LLM != nil {
			return NewLLMProvider(opts.LLM), nil
		}
		return NewClaudeCLI(id.Model, opts.Workdir), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, id.Provider)
	}
}
