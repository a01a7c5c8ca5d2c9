package providers

import (
	"context"
	"fmt"
	"time"
)

// Generator produces text from a system instruction and a user prompt. It is
// the only capability the policy compiler needs from a language model.
// Implementations must respect context cancellation.
type Generator interface {
	Generate(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, systemInstruction, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	return f(ctx, systemInstruction, prompt)
}

// Config configures a generator backend.
type Config struct {
	// Name identifies the backend in logs and errors.
	Name string

	// Type selects the implementation: openai, anthropic or gemini.
	Type string

	// BaseURL overrides the vendor endpoint. OpenAI-compatible local
	// servers use the openai type with a custom BaseURL.
	BaseURL string

	APIKey string
	Model  string

	// Temperature and MaxTokens are passed through to the vendor API.
	Temperature float64
	MaxTokens   int

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// MaxRetries is the number of additional attempts on transient HTTP
	// failures. The policy compiler uses 0 so a failed call falls back to
	// the dictionary parser immediately.
	MaxRetries int

	MaxIdleConns    int
	IdleConnTimeout time.Duration
}

// Validate checks the fields every backend requires.
func (c Config) Validate() error {
	if c.Name == "" {
		return &ConfigError{Provider: c.Type, Field: "name", Message: "name is required"}
	}
	if c.APIKey == "" {
		return &ConfigError{Provider: c.Name, Field: "api_key", Message: "API key is required"}
	}
	if c.Model == "" {
		return &ConfigError{Provider: c.Name, Field: "model", Message: "model is required"}
	}
	if c.MaxRetries < 0 {
		return &ConfigError{Provider: c.Name, Field: "max_retries", Message: fmt.Sprintf("must be >= 0, got %d", c.MaxRetries)}
	}
	return nil
}
