package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/randalmurphal/llmkit/claude"

	annhttp "github.com/randalmurphal/announce/http"
)

func TestOpenAI_Generate(t *testing.T) {
	var got openAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"# Release v1.0.0"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	p := NewOpenAI(ProviderOptions{APIKey: "sk-test", BaseURL: server.URL + "/v1/"})
	out, err := p.Generate(context.Background(), Payload{System: "sys", User: "usr", Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out != "# Release v1.0.0" {
		t.Errorf("Generate() = %q", out)
	}
	if got.Model != "gpt-4o-mini" || len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "usr" {
		t.Errorf("request = %+v", got)
	}
}

func TestOpenAI_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"content filter", 200, `{"choices":[{"message":{"content":""},"finish_reason":"content_filter"}]}`,
			func(err error) bool { return errors.Is(err, ErrContentPolicy) }},
		{"no choices", 200, `{"choices":[]}`,
			func(err error) bool { return errors.Is(err, ErrEmptyResponse) }},
		{"rate limited", 429, `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`,
			annhttp.IsRateLimited},
		{"policy code", 400, `{"error":{"message":"blocked","code":"content_policy_violation"}}`,
			func(err error) bool { return Classify(err) == KindPermanent && isContentPolicy(err) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewOpenAI(ProviderOptions{BaseURL: server.URL}).Generate(context.Background(), Payload{User: "u", Model: "m"})
			if err == nil || !tt.check(err) {
				t.Errorf("Generate() error = %v", err)
			}
			if calls.Load() != 1 {
				t.Errorf("provider retried internally: %d calls", calls.Load())
			}
		})
	}
}

func TestOllama_Generate(t *testing.T) {
	var got ollamaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"## Highlights"},"done":true}`))
	}))
	defer server.Close()

	out, err := NewOllama(ProviderOptions{BaseURL: server.URL}).Generate(context.Background(), Payload{User: "u", Model: "llama3"})
	if err != nil || out != "## Highlights" {
		t.Fatalf("Generate() = %q, %v", out, err)
	}
	if got.Stream || got.Model != "llama3" || len(got.Messages) != 1 {
		t.Errorf("request = %+v", got)
	}
}

func TestLLMProvider_Generate(t *testing.T) {
	var req claude.CompletionRequest
	client := claude.NewMockClient("").WithCompleteFunc(func(_ context.Context, r claude.CompletionRequest) (*claude.CompletionResponse, error) {
		req = r
		return &claude.CompletionResponse{Content: "# From claude"}, nil
	})

	out, err := NewLLMProvider(client).Generate(context.Background(), Payload{System: "sys", User: "usr"})
	if err != nil || out != "# From claude" {
		t.Fatalf("Generate() = %q, %v", out, err)
	}
	if req.SystemPrompt != "sys" || len(req.Messages) != 1 || req.Messages[0].Content != "usr" || req.Messages[0].Role != claude.RoleUser {
		t.Errorf("request = %+v", req)
	}
}

func TestNewClaudeCLI_RestrictsTools(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake claude binary is a shell script")
	}
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	bin := filepath.Join(dir, "claude")
	script := "#!/bin/sh\n" +
		"for a in \"$@\"; do printf '%s\\n' \"$a\"; done > '" + argsFile + "'\n" +
		"echo '{\"type\":\"result\",\"result\":\"# Notes\"}'\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	p := NewClaudeCLI("fast", dir, claude.WithClaudePath(bin))
	out, err := p.Generate(context.Background(), Payload{System: "sys", User: "usr"})
	if err != nil || out != "# Notes" {
		t.Fatalf("Generate() = %q, %v", out, err)
	}

	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	args := strings.Split(strings.TrimSpace(string(data)), "\n")
	for _, flag := range []string{"--dangerously-skip-permissions", "--permission-mode"} {
		if slices.Contains(args, flag) {
			t.Errorf("args contain %s: %q", flag, args)
		}
	}
	var blocked []string
	for i, a := range args {
		if a == "--disallowed-tools" && i+1 < len(args) {
			blocked = append(blocked, args[i+1])
		}
	}
	for _, tool := range []string{"Bash", "Edit", "Write", "WebFetch"} {
		if !slices.Contains(blocked, tool) {
			t.Errorf("%s not disallowed: %q", tool, blocked)
		}
	}
	if i := slices.Index(args, "--max-turns"); i < 0 || i+1 >= len(args) || args[i+1] != "1" {
		t.Errorf("max turns not pinned to 1: %q", args)
	}
}

func TestNewProvider(t *testing.T) {
	mock := claude.NewMockClient("ok")
	tests := []struct {
		modelID string
		opts    ProviderOptions
		check   func(Provider) bool
		wantErr error
	}{
		{modelID: "openai/gpt-4o-mini", check: func(p Provider) bool { _, ok := p.(*OpenAI); return ok }},
		{modelID: "OLLAMA/llama3", check: func(p Provider) bool { _, ok := p.(*Ollama); return ok }},
		{modelID: "claude/fast", opts: ProviderOptions{LLM: mock}, check: func(p Provider) bool { _, ok := p.(*LLMProvider); return ok }},
		{modelID: "bedrock/titan", wantErr: ErrUnknownProvider},
		{modelID: "gpt-4o", wantErr: ErrInvalidModelID},
	}
	for _, tt := range tests {
		t.Run(tt.modelID, func(t *testing.T) {
			p, err := NewProvider(tt.modelID, tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewProvider() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || !tt.check(p) {
				t.Errorf("NewProvider() = %T, %v", p, err)
			}
		})
	}
}
