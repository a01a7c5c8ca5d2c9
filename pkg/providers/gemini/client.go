// Package gemini implements providers.Generator on Google's Gemini API via
// the generative-ai-go SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"mercator-hq/nlpolicy/pkg/providers"
)

// DefaultModel is used when the config names none.
const DefaultModel = "gemini-2.0-flash"

// Generator wraps a genai client. Close releases it.
type Generator struct {
	name        string
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

// New creates a client. BaseURL, when set, overrides the API endpoint.
func New(ctx context.Context, config providers.Config) (*Generator, error) {
	if config.Type == "" {
		config.Type = "gemini"
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	opts := []option.ClientOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(config.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, &providers.ConfigError{Provider: config.Name, Field: "api_key", Message: fmt.Sprintf("failed to create gemini client: %v", err)}
	}

	slog.Debug("gemini generator initialized", "provider", config.Name, "model", config.Model)
	return &Generator{
		name:        config.Name,
		client:      client,
		model:       config.Model,
		temperature: float32(config.Temperature),
		maxTokens:   int32(config.MaxTokens),
	}, nil
}

// Generate runs a single GenerateContent call with the system instruction
// attached to the model and JSON output requested.
func (g *Generator) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if prompt == "" {
		return "", &providers.ValidationError{Field: "prompt", Message: "prompt is required"}
	}
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(g.temperature)
	if g.maxTokens > 0 {
		model.SetMaxOutputTokens(g.maxTokens)
	}
	model.ResponseMIMEType = "application/json"
	if systemInstruction != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(systemInstruction))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if ctx.Err() != nil {
			return "", &providers.TimeoutError{Provider: g.name, Cause: err}
		}
		return "", &providers.ProviderError{Provider: g.name, Message: "generate content failed", Cause: err}
	}
	text := responseText(resp)
	if text == "" {
		return "", &providers.ParseError{Provider: g.name, Cause: errors.New("response has no text parts")}
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}

func (g *Generator) Close() error {
	return g.client.Close()
}
