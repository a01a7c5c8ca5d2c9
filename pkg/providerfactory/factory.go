// Package providerfactory builds a providers.Generator from configuration.
package providerfactory

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"mercator-hq/nlpolicy/pkg/providers"
	"mercator-hq/nlpolicy/pkg/providers/anthropic"
	"mercator-hq/nlpolicy/pkg/providers/gemini"
	"mercator-hq/nlpolicy/pkg/providers/openai"
)

// Supported generator types.
const (
	TypeOpenAI    = "openai"
	TypeAnthropic = "anthropic"
	TypeGemini    = "gemini"
)

// Generator is a providers.Generator that owns resources.
type Generator interface {
	providers.Generator
	io.Closer
}

// NewGenerator creates the backend named by config.Type. An empty type is
// inferred from the name:
//   - "anthropic", "claude" -> anthropic
//   - "gemini", "google" -> gemini
//   - everything else (openai, ollama, vllm, ...) -> openai
func NewGenerator(ctx context.Context, config providers.Config) (Generator, error) {
	if config.Type == "" {
		config.Type = InferType(config.Name)
	}

	slog.Debug("creating generator", "name", config.Name, "type", config.Type, "base_url", config.BaseURL)

	var (
		g   Generator
		err error
	)
	switch config.Type {
	case TypeOpenAI:
		g, err = openai.New(config)
	case TypeAnthropic:
		g, err = anthropic.New(config)
	case TypeGemini:
		g, err = gemini.New(ctx, config)
	default:
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "type",
			Message:  fmt.Sprintf("unsupported generator type: %q (supported: openai, anthropic, gemini)", config.Type),
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create generator %q: %w", config.Name, err)
	}
	return g, nil
}

// InferType maps a backend name to a generator type.
func InferType(name string) string {
	switch name {
	case "anthropic", "claude":
		return TypeAnthropic
	case "gemini", "google":
		return TypeGemini
	default:
		return TypeOpenAI
	}
}
