package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/studykit/flashgen/internal/core"
)

var _ core.AIProvider = (*OllamaLLM)(nil)

// OllamaLLM drives a local Ollama daemon through its generate endpoint.
// format=json forces the model to emit decodable output.
type OllamaLLM struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaLLM(baseURL, model string) (*OllamaLLM, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.1"
	}
	return &OllamaLLM{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
	}, nil
}

func (o *OllamaLLM) Name() string { return "ollama" }

func (o *OllamaLLM) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := o.client.Do(req)
	if err != nil {
		log.Printf("ollama health check failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system,omitempty"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Format  string         `json:"format,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

func (o *OllamaLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:   o.model,
		System:  systemPrompt,
		Prompt:  userPrompt,
		Stream:  false,
		Format:  "json",
		Options: map[string]any{"temperature": 0.7},
	})
	if err != nil {
		return "", &core.AIProviderError{Provider: o.Name(), Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", &core.AIProviderError{Provider: o.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		// A local daemon being down or mid-restart is transient.
		return "", &core.AIProviderError{Provider: o.Name(), Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &core.AIProviderError{Provider: o.Name(), Retryable: true, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &core.AIProviderError{
			Provider:  o.Name(),
			Retryable: resp.StatusCode == 429 || resp.StatusCode >= 500,
			Err:       fmt.Errorf("generate endpoint returned %d", resp.StatusCode),
		}
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &core.AIProviderError{Provider: o.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}
	if parsed.Error != "" {
		return "", &core.AIProviderError{Provider: o.Name(), Err: fmt.Errorf("ollama: %s", parsed.Error)}
	}
	if parsed.Response == "" {
		return "", &core.AIProviderError{Provider: o.Name(), Err: fmt.Errorf("empty generate response")}
	}
	return parsed.Response, nil
}
