package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockServer is an httptest server that replays canned responses per path
// and records the requests it receives.
type MockServer struct {
	server    *httptest.Server
	mu        sync.Mutex
	responses map[string]MockResponse
	requests  []RecordedRequest
}

// MockResponse is one canned response.
type MockResponse struct {
	StatusCode int
	Body       any
	Delay      time.Duration
	Headers    map[string]string
}

// RecordedRequest is a request seen by the server.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// NewMockServer starts a server. Unknown paths return 404.
func NewMockServer() *MockServer {
	ms := &MockServer{responses: make(map[string]MockResponse)}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

func (ms *MockServer) URL() string {
	return ms.server.URL
}

func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse installs the response for path.
func (ms *MockServer) SetResponse(path string, response MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.responses[path] = response
}

// GetRequestCount returns the number of requests received.
func (ms *MockServer) GetRequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.requests)
}

// LastRequest returns the most recent request, or false if none arrived.
func (ms *MockServer) LastRequest() (RecordedRequest, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if len(ms.requests) == 0 {
		return RecordedRequest{}, false
	}
	return ms.requests[len(ms.requests)-1], true
}

func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	ms.mu.Lock()
	ms.requests = append(ms.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})
	response, ok := ms.responses[r.URL.Path]
	ms.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if response.Delay > 0 {
		select {
		case <-time.After(response.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(response.StatusCode)

	switch v := response.Body.(type) {
	case nil:
	case string:
		_, _ = w.Write([]byte(v))
	case []byte:
		_, _ = w.Write(v)
	default:
		_ = json.NewEncoder(w).Encode(v)
	}
}

// OpenAIResponse builds a chat completion envelope carrying content.
func OpenAIResponse(content, model string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-123",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   model,
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
}

// AnthropicResponse builds a messages API envelope carrying content.
func AnthropicResponse(content, model string) map[string]any {
	return map[string]any{
		"id":          "msg_123",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": content}},
		"model":       model,
		"stop_reason": "end_turn",
	}
}

// ErrorResponse builds a vendor-style error body.
func ErrorResponse(statusCode int, message string) MockResponse {
	return MockResponse{
		StatusCode: statusCode,
		Body: map[string]any{
			"error": map[string]any{"message": message, "type": "invalid_request_error", "code": statusCode},
		},
	}
}

// RateLimitResponse builds a 429 with a Retry-After header.
func RateLimitResponse(retryAfter int) MockResponse {
	r := ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded")
	r.Headers = map[string]string{"Retry-After": fmt.Sprintf("%d", retryAfter)}
	return r
}
