package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// HTTPProvider is the shared HTTP base for vendor backends. Backends embed it
// and use DoJSONRequest for their single endpoint.
type HTTPProvider struct {
	config Config
	client *http.Client
	logger *slog.Logger

	statsMu sync.Mutex
	stats   Stats
}

// Stats counts requests made through an HTTPProvider.
type Stats struct {
	TotalRequests       int64
	FailedRequests      int64
	ConsecutiveFailures int
	LastError           error
	LastSuccess         time.Time
}

// NewHTTPProvider creates the base with a pooled transport.
func NewHTTPProvider(config Config) *HTTPProvider {
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 10
	}
	if config.IdleConnTimeout == 0 {
		config.IdleConnTimeout = 90 * time.Second
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConns,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}
	return &HTTPProvider{
		config: config,
		client: &http.Client{Transport: transport, Timeout: config.Timeout},
		logger: slog.Default().With("component", "providers", "provider", config.Name),
	}
}

// Name returns the configured backend name.
func (p *HTTPProvider) Name() string {
	return p.config.Name
}

// Config returns the backend configuration.
func (p *HTTPProvider) Config() Config {
	return p.config
}

// Stats returns a snapshot of the request counters.
func (p *HTTPProvider) Stats() Stats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.stats
}

func (p *HTTPProvider) record(err error) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.TotalRequests++
	if err == nil {
		p.stats.ConsecutiveFailures = 0
		p.stats.LastError = nil
		p.stats.LastSuccess = time.Now()
		return
	}
	p.stats.FailedRequests++
	p.stats.ConsecutiveFailures++
	p.stats.LastError = err
}

// DoRequest sends one request, retrying transport failures and 5xx responses
// up to MaxRetries times with exponential backoff. 4xx responses are never
// retried.
func (p *HTTPProvider) DoRequest(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			p.logger.Debug("retrying request", "attempt", attempt, "backoff", backoff)
			select {
			case <-ctx.Done():
				return nil, p.timeout(ctx.Err())
			case <-time.After(backoff):
			}
		}

		resp, err := p.send(ctx, method, url, body, headers)
		if err != nil {
			p.record(err)
			if ctx.Err() != nil || isTimeout(err) {
				return nil, p.timeout(err)
			}
			lastErr = &ProviderError{Provider: p.config.Name, Message: "request failed", Cause: err}
			p.logger.Warn("request failed", "attempt", attempt+1, "error", err)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			p.record(nil)
			return resp, nil
		}

		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()

		statusErr := p.statusError(resp, errorBody)
		p.record(statusErr)
		if resp.StatusCode < 500 {
			return nil, statusErr
		}
		lastErr = statusErr
		p.logger.Warn("request returned error status", "status", resp.StatusCode, "attempt", attempt+1)
	}
	return nil, lastErr
}

func (p *HTTPProvider) send(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	p.logger.Debug("sending request", "method", method, "url", url)
	return p.client.Do(req)
}

func (p *HTTPProvider) statusError(resp *http.Response, body []byte) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Provider: p.config.Name, Message: string(body)}
	case http.StatusTooManyRequests:
		return &RateLimitError{
			Provider:   p.config.Name,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    string(body),
		}
	default:
		return &ProviderError{Provider: p.config.Name, StatusCode: resp.StatusCode, Message: string(body)}
	}
}

func (p *HTTPProvider) timeout(cause error) error {
	return &TimeoutError{Provider: p.config.Name, Timeout: p.config.Timeout, Cause: cause}
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

// DoJSONRequest marshals reqBody, sends it and decodes the response into respBody.
func (p *HTTPProvider) DoJSONRequest(ctx context.Context, method, url string, reqBody, respBody any, headers map[string]string) error {
	var bodyBytes []byte
	if reqBody != nil {
		var err error
		if bodyBytes, err = json.Marshal(reqBody); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	resp, err := p.DoRequest(ctx, method, url, bodyBytes, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ParseError{Provider: p.config.Name, Cause: fmt.Errorf("failed to read response: %w", err)}
	}
	if respBody != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, respBody); err != nil {
			return &ParseError{
				Provider:    p.config.Name,
				RawResponse: string(raw),
				Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
			}
		}
	}
	return nil
}

// Close releases idle connections.
func (p *HTTPProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 0
}
