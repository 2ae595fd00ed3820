package llm

import (
	"context"
	"errors"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"

	"github.com/studykit/flashgen/internal/core"
)

var _ core.AIProvider = (*OpenAILLM)(nil)

// OpenAILLM drives the Chat Completions API with JSON mode enabled so the
// model returns a single decodable object.
type OpenAILLM struct {
	client *openai.Client
	model  string
}

func NewOpenAILLM(apiKey, model string) (*OpenAILLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAILLM{client: openai.NewClient(apiKey), model: model}, nil
}

func (o *OpenAILLM) Name() string { return "openai" }

func (o *OpenAILLM) HealthCheck(ctx context.Context) bool {
	_, err := o.client.ListModels(ctx)
	if err != nil {
		log.Printf("openai health check failed: %v", err)
		return false
	}
	return true
}

func (o *OpenAILLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature:    0.7,
		MaxTokens:      4000,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return "", &core.AIProviderError{
			Provider:  o.Name(),
			Retryable: openaiRetryable(err),
			Err:       err,
		}
	}
	if len(resp.Choices) == 0 {
		return "", &core.AIProviderError{
			Provider: o.Name(),
			Err:      fmt.Errorf("empty completion response"),
		}
	}
	return resp.Choices[0].Message.Content, nil
}

// openaiRetryable classifies rate limits and server-side failures as
// transient; auth and request errors are permanent.
func openaiRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500
	}
	// Transport-level failure with no HTTP status.
	return true
}
