package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/studykit/flashgen/internal/config"
	"github.com/studykit/flashgen/internal/core"
)

func TestNewProviderSelection(t *testing.T) {
	ctx := context.Background()

	p, err := NewProvider(ctx, &config.Config{AIProvider: "anthropic", AnthropicAPIKey: "k"})
	if err != nil {
		t.Fatalf("anthropic: %v", err)
	}
	if p.Name() != "anthropic" {
		t.Fatalf("got %q", p.Name())
	}

	p, err = NewProvider(ctx, &config.Config{AIProvider: "ollama"})
	if err != nil {
		t.Fatalf("ollama needs no key: %v", err)
	}
	if p.Name() != "ollama" {
		t.Fatalf("got %q", p.Name())
	}

	p, err = NewProvider(ctx, &config.Config{AIProvider: "openai", OpenAIAPIKey: "k"})
	if err != nil {
		t.Fatalf("openai: %v", err)
	}
	if p.Name() != "openai" {
		t.Fatalf("got %q", p.Name())
	}
}

func TestNewProviderMissingKey(t *testing.T) {
	ctx := context.Background()
	for _, provider := range []string{"openai", "anthropic"} {
		if _, err := NewProvider(ctx, &config.Config{AIProvider: provider}); err == nil {
			t.Errorf("%s without an API key must fail construction", provider)
		}
	}
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := NewProvider(context.Background(), &config.Config{AIProvider: "cohere"})
	if err == nil || !strings.Contains(err.Error(), "cohere") {
		t.Fatalf("want error naming the bad provider, got %v", err)
	}
}

func newTestAnthropic(t *testing.T, handler http.HandlerFunc) (*AnthropicLLM, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	a, err := NewAnthropicLLM("test-key", "claude-test")
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	a.baseURL = srv.URL
	return a, srv
}

func TestAnthropicGenerate(t *testing.T) {
	var gotReq anthropicRequest
	a, _ := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") != anthropicVersion {
			t.Errorf("missing version header")
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": `{"flashcards":`},
				{"type": "text", "text": ` []}`},
			},
		})
	})

	out, err := a.Generate(context.Background(), "system here", "user here")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != `{"flashcards": []}` {
		t.Fatalf("text blocks not concatenated: %q", out)
	}
	if gotReq.System != "system here" {
		t.Fatalf("system prompt must travel in the top-level field, got %q", gotReq.System)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" {
		t.Fatalf("messages: %+v", gotReq.Messages)
	}
}

func TestAnthropicGenerateErrorClassification(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{429, true},
		{500, true},
		{529, true},
		{400, false},
		{401, false},
	}
	for _, tt := range tests {
		a, _ := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"type": "api_error", "message": "nope"},
			})
		})
		_, err := a.Generate(context.Background(), "s", "u")
		var pe *core.AIProviderError
		if !errors.As(err, &pe) {
			t.Fatalf("status %d: want AIProviderError, got %v", tt.status, err)
		}
		if pe.Retryable != tt.retryable {
			t.Errorf("status %d: retryable = %v, want %v", tt.status, pe.Retryable, tt.retryable)
		}
		if core.IsRetryable(err) != tt.retryable {
			t.Errorf("status %d: IsRetryable disagrees with the error flag", tt.status)
		}
		if !strings.Contains(pe.Err.Error(), "nope") {
			t.Errorf("status %d: API error message not surfaced: %v", tt.status, pe.Err)
		}
	}
}

func TestAnthropicConnectionRefusedIsRetryable(t *testing.T) {
	a, srv := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()
	_, err := a.Generate(context.Background(), "s", "u")
	if !core.IsRetryable(err) {
		t.Fatalf("transport failure must be retryable, got %v", err)
	}
}

func TestAnthropicHealthCheck(t *testing.T) {
	a, _ := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	if !a.HealthCheck(context.Background()) {
		t.Fatalf("want healthy")
	}

	down, srv := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()
	if down.HealthCheck(context.Background()) {
		t.Fatalf("unreachable API must be unhealthy")
	}
}

func newTestOllama(t *testing.T, handler http.HandlerFunc) *OllamaLLM {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	o, err := NewOllamaLLM(srv.URL, "llama-test")
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	return o
}

func TestOllamaGenerate(t *testing.T) {
	var gotReq ollamaRequest
	o := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]any{"response": `{"flashcards": []}`})
	})

	out, err := o.Generate(context.Background(), "sys", "usr")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != `{"flashcards": []}` {
		t.Fatalf("got %q", out)
	}
	if gotReq.Stream {
		t.Fatalf("streaming must be disabled")
	}
	if gotReq.Format != "json" {
		t.Fatalf("format = %q, want json", gotReq.Format)
	}
	if gotReq.System != "sys" || gotReq.Prompt != "usr" {
		t.Fatalf("prompts: %+v", gotReq)
	}
}

func TestOllamaGenerateDaemonError(t *testing.T) {
	o := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"error": "model not found"})
	})
	_, err := o.Generate(context.Background(), "s", "u")
	var pe *core.AIProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("want AIProviderError, got %v", err)
	}
	if pe.Retryable {
		t.Fatalf("a daemon-reported error is permanent")
	}
}

func TestOllamaServerErrorRetryable(t *testing.T) {
	o := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := o.Generate(context.Background(), "s", "u")
	if !core.IsRetryable(err) {
		t.Fatalf("5xx must be retryable, got %v", err)
	}
}

func TestOllamaDefaults(t *testing.T) {
	o, err := NewOllamaLLM("", "")
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	if o.baseURL != "http://localhost:11434" {
		t.Fatalf("default base url %q", o.baseURL)
	}
	if o.model == "" {
		t.Fatalf("default model must be set")
	}
}

func TestOpenAIRetryableClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", &openai.APIError{HTTPStatusCode: 429}, true},
		{"server error", &openai.APIError{HTTPStatusCode: 503}, true},
		{"bad auth", &openai.APIError{HTTPStatusCode: 401}, false},
		{"bad request", &openai.RequestError{HTTPStatusCode: 400}, false},
		{"gateway timeout request", &openai.RequestError{HTTPStatusCode: 504}, true},
		{"transport", errors.New("connection reset"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := openaiRetryable(tt.err); got != tt.want {
				t.Fatalf("openaiRetryable = %v, want %v", got, tt.want)
			}
		})
	}
}
