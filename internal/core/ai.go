package core

import "context"

// AIProvider is the contract every text-generation backend implements.
// Variants differ only in envelope construction, authentication and the
// field path that carries the model's text; nothing downstream branches
// on provider identity.
type AIProvider interface {
	// Name returns a stable identifier ("openai", "anthropic", ...).
	Name() string

	// HealthCheck probes reachability and credentials with one lightweight
	// call. Operational surface only, never part of the generation path.
	HealthCheck(ctx context.Context) bool

	// Generate sends the rendered prompts to the backend and returns the
	// raw response text. Failures surface as *AIProviderError so callers
	// can inspect Retryable without knowing the backend.
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
