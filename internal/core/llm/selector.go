package llm

import (
	"context"
	"fmt"

	"github.com/studykit/flashgen/internal/config"
	"github.com/studykit/flashgen/internal/core"
)

// NewProvider constructs the AI provider named by cfg.AIProvider. This is
// the only place in the codebase that knows more than one backend exists;
// everything downstream holds a core.AIProvider.
func NewProvider(ctx context.Context, cfg *config.Config) (core.AIProvider, error) {
	switch cfg.AIProvider {
	case "openai":
		return NewOpenAILLM(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	case "anthropic":
		return NewAnthropicLLM(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	case "ollama":
		return NewOllamaLLM(cfg.OllamaBaseURL, cfg.OllamaModel)
	case "gemini":
		return NewGeminiLLM(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unknown AI provider %q (valid: openai, anthropic, ollama, gemini)", cfg.AIProvider)
	}
}
