package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL  string
	SslCertPath  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	Port         string

	// AI provider selection and credentials. Exactly one provider is
	// constructed at startup; see llm.NewProvider.
	AIProvider      string
	OpenAIAPIKey    string
	OpenAIModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	OllamaBaseURL   string
	OllamaModel     string
	GeminiAPIKey    string
	GeminiModel     string

	// Generation pipeline tuning.
	ContextTokens    int // usable context window of the active model, in tokens
	AITimeoutSeconds int // ceiling per Generate call
	MaxAttempts      int // attempt budget for retryable provider failures
	TaskTimeoutSecs  int // ceiling for one whole document task
	MaxCards         int // max flashcards per document
	NumWorkers       int
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		SslCertPath:  getEnv("SSL_CERT_PATH", ""),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "flashgen-docs"),
		Port:         getEnv("PORT", "8080"),

		AIProvider:      getEnv("AI_PROVIDER", "openai"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
		OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:     getEnv("OLLAMA_MODEL", "llama3.1"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		ContextTokens:    getEnvInt("AI_CONTEXT_TOKENS", 16000),
		AITimeoutSeconds: getEnvInt("AI_TIMEOUT_SECONDS", 60),
		MaxAttempts:      getEnvInt("AI_MAX_ATTEMPTS", 3),
		TaskTimeoutSecs:  getEnvInt("TASK_TIMEOUT_SECONDS", 600),
		MaxCards:         getEnvInt("MAX_CARDS_PER_DOCUMENT", 20),
		NumWorkers:       getEnvInt("NUM_WORKERS", 2),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// BudgetChars approximates how many characters of source text fit one
// generation call: ~4 characters per token, with a 30% safety margin for
// the prompt scaffolding and the model's own output.
func (c *Config) BudgetChars() int {
	b := c.ContextTokens * 4 * 70 / 100
	if b < 1000 {
		b = 1000
	}
	return b
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
