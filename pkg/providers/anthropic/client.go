// Package anthropic implements providers.Generator on the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"mercator-hq/nlpolicy/pkg/providers"
)

const (
	DefaultBaseURL = "https://api.anthropic.com"

	// DefaultAnthropicVersion is sent as the anthropic-version header.
	DefaultAnthropicVersion = "2023-06-01"

	defaultMaxTokens = 2048
)

// Generator calls /v1/messages.
type Generator struct {
	*providers.HTTPProvider
}

type messagesRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func New(config providers.Config) (*Generator, error) {
	if config.Type == "" {
		config.Type = "anthropic"
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}

	slog.Debug("anthropic generator initialized", "provider", config.Name, "base_url", config.BaseURL, "model", config.Model)
	return &Generator{HTTPProvider: providers.NewHTTPProvider(config)}, nil
}

// Generate concatenates the text blocks of the reply.
func (g *Generator) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if prompt == "" {
		return "", &providers.ValidationError{Field: "prompt", Message: "prompt is required"}
	}
	cfg := g.Config()
	req := messagesRequest{
		Model:       cfg.Model,
		System:      systemInstruction,
		Messages:    []message{{Role: "user", Content: prompt}},
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}
	headers := map[string]string{
		"x-api-key":         cfg.APIKey,
		"anthropic-version": DefaultAnthropicVersion,
		"Content-Type":      "application/json",
	}

	var resp messagesResponse
	if err := g.DoJSONRequest(ctx, "POST", cfg.BaseURL+"/v1/messages", req, &resp, headers); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &providers.ParseError{Provider: g.Name(), Cause: errors.New("response has no text blocks")}
	}
	return sb.String(), nil
}
