package generate

import (
	"context"
	"net/http"
	"strings"

	annhttp "github.com/randalmurphal/announce/http"
)

// DefaultOpenAIURL is the OpenAI API base. Any OpenAI-compatible gateway can
// be used through ProviderOptions.BaseURL.
const DefaultOpenAIURL = "https://api.openai.com/v1"

// OpenAI calls the chat completions endpoint.
type OpenAI struct {
	client *annhttp.Client
}

// NewOpenAI creates an OpenAI chat completions provider.
func NewOpenAI(opts ProviderOptions) *OpenAI {
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOpenAIURL
	}
	apiKey := opts.APIKey
	return &OpenAI{
		client: annhttp.NewClient(annhttp.ClientConfig{
			Client:      opts.httpClient(),
			BaseURL:     baseURL,
			ServiceName: "openai",
			MaxAttempts: 1,
			BeforeRequest: func(req *http.Request) {
				if apiKey != "" {
					req.Header.Set("Authorization", "Bearer "+apiKey)
				}
			},
		}),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type openAIResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// Generate implements Provider.
func (o *OpenAI) Generate(ctx context.Context, p Payload) (string, error) {
	req := openAIRequest{Model: p.Model, Messages: messages(p)}

	var resp openAIResponse
	if err := o.client.Post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return "", ErrContentPolicy
	}
	return choice.Message.Content, nil
}

func messages(p Payload) []chatMessage {
	var msgs []chatMessage
	if p.System != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: p.System})
	}
	return append(msgs, chatMessage{Role: "user", Content: p.User})
}
