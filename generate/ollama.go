package generate

import (
	"context"
	"strings"

	annhttp "github.com/randalmurphal/announce/http"
)

// DefaultOllamaURL is the local Ollama daemon.
const DefaultOllamaURL = "http://localhost:11434"

// Ollama calls a local Ollama daemon's chat endpoint.
type Ollama struct {
	client *annhttp.Client
}

// NewOllama creates an Ollama provider.
func NewOllama(opts ProviderOptions) *Ollama {
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	return &Ollama{
		client: annhttp.NewClient(annhttp.ClientConfig{
			Client:      opts.httpClient(),
			BaseURL:     baseURL,
			ServiceName: "ollama",
			MaxAttempts: 1,
		}),
	}
}

type ollamaRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type ollamaResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// Generate implements Provider.
func (o *Ollama) Generate(ctx context.Context, p Payload) (string, error) {
	req := ollamaRequest{Model: p.Model, Messages: messages(p), Stream: false}

	var resp ollamaResponse
	if err := o.client.Post(ctx, "/api/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}
