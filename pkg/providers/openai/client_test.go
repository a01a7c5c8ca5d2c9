package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"mercator-hq/nlpolicy/internal/testutil"
	"mercator-hq/nlpolicy/pkg/providers"
)

func newGenerator(t *testing.T, url string) *Generator {
	t.Helper()
	g, err := New(providers.Config{Name: "openai", BaseURL: url + "/", APIKey: "sk-test", Model: "gpt-4o-mini", Temperature: 0.2})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return g
}

func TestGenerate(t *testing.T) {
	server := testutil.NewMockServer()
	defer server.Close()
	server.SetResponse("/chat/completions", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       testutil.OpenAIResponse(`{"understood":true}`, "gpt-4o-mini"),
	})

	g := newGenerator(t, server.URL())
	got, err := g.Generate(context.Background(), "be a parser", "policy text")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != `{"understood":true}` {
		t.Errorf("Generate() = %q", got)
	}

	req, ok := server.LastRequest()
	if !ok {
		t.Fatal("no request recorded")
	}
	if req.Header.Get("Authorization") != "Bearer sk-test" {
		t.Errorf("Authorization = %q", req.Header.Get("Authorization"))
	}
	var body chatRequest
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if len(body.Messages) != 2 || body.Messages[0].Role != "system" || body.Messages[1].Content != "policy text" {
		t.Errorf("messages = %+v", body.Messages)
	}
	if body.ResponseFormat["type"] != "json_object" {
		t.Errorf("response_format = %v", body.ResponseFormat)
	}
}

func TestGenerateEmptyChoices(t *testing.T) {
	server := testutil.NewMockServer()
	defer server.Close()
	server.SetResponse("/chat/completions", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       map[string]any{"choices": []any{}},
	})

	_, err := newGenerator(t, server.URL()).Generate(context.Background(), "", "text")
	var pe *providers.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
}

func TestGenerateUnreachable(t *testing.T) {
	server := testutil.NewMockServer()
	url := server.URL()
	server.Close()

	_, err := newGenerator(t, url).Generate(context.Background(), "", "text")
	var pe *providers.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ProviderError", err)
	}
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	g := newGenerator(t, "http://127.0.0.1:1")
	_, err := g.Generate(context.Background(), "sys", "")
	var ve *providers.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
}
