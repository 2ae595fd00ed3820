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

const anthropicVersion = "2023-06-01"

var _ core.AIProvider = (*AnthropicLLM)(nil)

// AnthropicLLM drives the Messages API directly over HTTP. The system
// prompt travels in the top-level "system" field rather than a message.
type AnthropicLLM struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewAnthropicLLM(apiKey, model string) (*AnthropicLLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	return &AnthropicLLM{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://api.anthropic.com",
		client:  &http.Client{},
	}, nil
}

func (a *AnthropicLLM) Name() string { return "anthropic" }

func (a *AnthropicLLM) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/v1/models", nil)
	if err != nil {
		return false
	}
	a.setHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		log.Printf("anthropic health check failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a *AnthropicLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:     a.model,
		MaxTokens: 4000,
		System:    systemPrompt,
		Messages:  []anthropicMessage{{Role: "user", Content: userPrompt}},
	})
	if err != nil {
		return "", &core.AIProviderError{Provider: a.Name(), Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", &core.AIProviderError{Provider: a.Name(), Err: err}
	}
	a.setHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", &core.AIProviderError{Provider: a.Name(), Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &core.AIProviderError{Provider: a.Name(), Retryable: true, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		// 529 is Anthropic's "overloaded" status.
		retryable := resp.StatusCode == 429 || resp.StatusCode >= 500
		return "", &core.AIProviderError{
			Provider:  a.Name(),
			Retryable: retryable,
			Err:       fmt.Errorf("messages API returned %d: %s", resp.StatusCode, anthropicErrorMessage(respBody)),
		}
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &core.AIProviderError{Provider: a.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}

	var b strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", &core.AIProviderError{Provider: a.Name(), Err: fmt.Errorf("response contains no text blocks")}
	}
	return b.String(), nil
}

func (a *AnthropicLLM) setHeaders(req *http.Request) {
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")
}

// anthropicErrorMessage pulls the API's error message out of a failure body
// so the surfaced error stays readable without echoing the whole payload.
func anthropicErrorMessage(body []byte) string {
	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		return parsed.Error.Message
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
