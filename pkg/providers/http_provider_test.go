package providers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"mercator-hq/nlpolicy/internal/testutil"
	"mercator-hq/nlpolicy/pkg/providers"
)

func newProvider(url string, retries int) *providers.HTTPProvider {
	return providers.NewHTTPProvider(providers.Config{
		Name:       "test",
		BaseURL:    url,
		Timeout:    2 * time.Second,
		MaxRetries: retries,
	})
}

func TestDoRequestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		response testutil.MockResponse
		check    func(t *testing.T, err error)
	}{
		{
			name:     "unauthorized",
			response: testutil.ErrorResponse(http.StatusUnauthorized, "bad key"),
			check: func(t *testing.T, err error) {
				var authErr *providers.AuthError
				if !errors.As(err, &authErr) {
					t.Errorf("error = %T, want *AuthError", err)
				}
			},
		},
		{
			name:     "rate limited",
			response: testutil.RateLimitResponse(30),
			check: func(t *testing.T, err error) {
				var rl *providers.RateLimitError
				if !errors.As(err, &rl) {
					t.Fatalf("error = %T, want *RateLimitError", err)
				}
				if rl.RetryAfter != 30*time.Second {
					t.Errorf("RetryAfter = %v, want 30s", rl.RetryAfter)
				}
			},
		},
		{
			name:     "server error",
			response: testutil.ErrorResponse(http.StatusBadGateway, "upstream"),
			check: func(t *testing.T, err error) {
				var pe *providers.ProviderError
				if !errors.As(err, &pe) {
					t.Fatalf("error = %T, want *ProviderError", err)
				}
				if pe.StatusCode != http.StatusBadGateway {
					t.Errorf("StatusCode = %d", pe.StatusCode)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := testutil.NewMockServer()
			defer server.Close()
			server.SetResponse("/x", tt.response)

			p := newProvider(server.URL(), 0)
			_, err := p.DoRequest(context.Background(), "POST", server.URL()+"/x", []byte(`{}`), nil)
			if err == nil {
				t.Fatal("expected error")
			}
			tt.check(t, err)
			if got := server.GetRequestCount(); got != 1 {
				t.Errorf("requests = %d, want 1 with zero retries", got)
			}
			if p.Stats().FailedRequests != 1 {
				t.Errorf("FailedRequests = %d, want 1", p.Stats().FailedRequests)
			}
		})
	}
}

func TestDoRequestRetriesServerErrors(t *testing.T) {
	server := testutil.NewMockServer()
	defer server.Close()
	server.SetResponse("/x", testutil.ErrorResponse(http.StatusServiceUnavailable, "busy"))

	p := newProvider(server.URL(), 1)
	_, err := p.DoRequest(context.Background(), "GET", server.URL()+"/x", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := server.GetRequestCount(); got != 2 {
		t.Errorf("requests = %d, want 2", got)
	}
}

func TestDoRequestDoesNotRetryClientErrors(t *testing.T) {
	server := testutil.NewMockServer()
	defer server.Close()
	server.SetResponse("/x", testutil.ErrorResponse(http.StatusBadRequest, "bad"))

	p := newProvider(server.URL(), 3)
	if _, err := p.DoRequest(context.Background(), "GET", server.URL()+"/x", nil, nil); err == nil {
		t.Fatal("expected error")
	}
	if got := server.GetRequestCount(); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}
}

func TestDoRequestContextTimeout(t *testing.T) {
	server := testutil.NewMockServer()
	defer server.Close()
	server.SetResponse("/slow", testutil.MockResponse{StatusCode: http.StatusOK, Body: "{}", Delay: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	p := newProvider(server.URL(), 0)
	_, err := p.DoRequest(ctx, "GET", server.URL()+"/slow", nil, nil)
	var te *providers.TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want *TimeoutError", err)
	}
}

func TestDoJSONRequest(t *testing.T) {
	server := testutil.NewMockServer()
	defer server.Close()
	server.SetResponse("/ok", testutil.MockResponse{StatusCode: http.StatusOK, Body: map[string]any{"answer": 42}})
	server.SetResponse("/garbage", testutil.MockResponse{StatusCode: http.StatusOK, Body: "not json"})

	p := newProvider(server.URL(), 0)

	var out struct {
		Answer int `json:"answer"`
	}
	if err := p.DoJSONRequest(context.Background(), "POST", server.URL()+"/ok", map[string]string{"q": "?"}, &out, nil); err != nil {
		t.Fatalf("DoJSONRequest() error = %v", err)
	}
	if out.Answer != 42 {
		t.Errorf("Answer = %d, want 42", out.Answer)
	}
	req, _ := server.LastRequest()
	if req.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", req.Header.Get("Content-Type"))
	}

	err := p.DoJSONRequest(context.Background(), "POST", server.URL()+"/garbage", nil, &out, nil)
	var pe *providers.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if pe.RawResponse != "not json" {
		t.Errorf("RawResponse = %q", pe.RawResponse)
	}
}

func TestGeneratorFunc(t *testing.T) {
	var g providers.Generator = providers.GeneratorFunc(func(_ context.Context, sys, prompt string) (string, error) {
		return sys + "|" + prompt, nil
	})
	got, err := g.Generate(context.Background(), "s", "p")
	if err != nil || got != "s|p" {
		t.Errorf("Generate() = %q, %v", got, err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		config providers.Config
		field  string
	}{
		{"valid", providers.Config{Name: "n", APIKey: "k", Model: "m"}, ""},
		{"no name", providers.Config{APIKey: "k", Model: "m"}, "name"},
		{"no key", providers.Config{Name: "n", Model: "m"}, "api_key"},
		{"no model", providers.Config{Name: "n", APIKey: "k"}, "model"},
		{"negative retries", providers.Config{Name: "n", APIKey: "k", Model: "m", MaxRetries: -1}, "max_retries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			var ce *providers.ConfigError
			if !errors.As(err, &ce) || ce.Field != tt.field {
				t.Errorf("Validate() error = %v, want ConfigError on %q", err, tt.field)
			}
		})
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&providers.AuthError{Provider: "p"}, providers.KindAuth},
		{&providers.RateLimitError{Provider: "p"}, providers.KindRateLimit},
		{fmt.Errorf("generate: %w", &providers.TimeoutError{Provider: "p"}), providers.KindTimeout},
		{&providers.ParseError{Provider: "p", Cause: errors.New("empty")}, providers.KindResponse},
		{&providers.ProviderError{Provider: "p", StatusCode: 502}, providers.KindUpstream},
		{&providers.ValidationError{Field: "prompt"}, providers.KindValidation},
		{&providers.ConfigError{Provider: "p", Field: "api_key"}, providers.KindConfig},
		{errors.New("boom"), providers.KindUnknown},
	}
	for _, tt := range tests {
		if got := providers.Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
