// Package openai implements providers.Generator on the OpenAI chat
// completions API. Any OpenAI-compatible server (Ollama, vLLM, LM Studio)
// works by pointing BaseURL at it.
package openai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"mercator-hq/nlpolicy/pkg/providers"
)

// DefaultBaseURL is the public OpenAI endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// Generator calls /chat/completions.
type Generator struct {
	*providers.HTTPProvider
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// New validates config and creates a generator.
func New(config providers.Config) (*Generator, error) {
	if config.Type == "" {
		config.Type = "openai"
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	slog.Debug("openai generator initialized", "provider", config.Name, "base_url", config.BaseURL, "model", config.Model)
	return &Generator{HTTPProvider: providers.NewHTTPProvider(config)}, nil
}

// Generate sends the system instruction and prompt as a two-message chat and
// returns the first choice's content. JSON output mode is requested.
func (g *Generator) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if prompt == "" {
		return "", &providers.ValidationError{Field: "prompt", Message: "prompt is required"}
	}
	cfg := g.Config()
	req := chatRequest{
		Model: cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: prompt},
		},
		Temperature:    cfg.Temperature,
		MaxTokens:      cfg.MaxTokens,
		ResponseFormat: map[string]any{"type": "json_object"},
	}
	headers := map[string]string{
		"Authorization": "Bearer " + cfg.APIKey,
		"Content-Type":  "application/json",
	}

	var resp chatResponse
	if err := g.DoJSONRequest(ctx, "POST", cfg.BaseURL+"/chat/completions", req, &resp, headers); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &providers.ParseError{Provider: g.Name(), Cause: errors.New("response has no content")}
	}
	return resp.Choices[0].Message.Content, nil
}
