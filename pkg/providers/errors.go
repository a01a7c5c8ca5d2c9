package providers

import (
	"errors"
	"fmt"
	"time"
)

// ProviderError is a non-2xx response or transport failure from a backend.
type ProviderError struct {
	Provider string

	// StatusCode is the HTTP status, 0 for transport failures.
	StatusCode int

	Message string
	Cause   error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %q error: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// AuthError is returned when the backend rejects the API key (401/403).
type AuthError struct {
	Provider string
	Message  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("provider %q authentication failed: %s", e.Provider, e.Message)
}

// RateLimitError is returned on HTTP 429.
type RateLimitError struct {
	Provider string

	// RetryAfter is parsed from the Retry-After header, 0 if absent.
	RetryAfter time.Duration

	Message string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %q rate limit exceeded (retry after %s): %s",
			e.Provider, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("provider %q rate limit exceeded: %s", e.Provider, e.Message)
}

// TimeoutError is returned when the request context ends before a response.
type TimeoutError struct {
	Provider string
	Timeout  time.Duration
	Cause    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %q request timeout after %s", e.Provider, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// ParseError is returned when a backend response envelope cannot be decoded
// or carries no text.
type ParseError struct {
	Provider    string
	RawResponse string
	Cause       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q response parse error: %v", e.Provider, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ValidationError is a request rejected before it is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %q: %s", e.Field, e.Message)
}

// ConfigError is an invalid backend configuration.
type ConfigError struct {
	Provider string
	Field    string
	Message  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q configuration error for field %q: %s",
		e.Provider, e.Field, e.Message)
}

// Error kinds returned by Kind.
const (
	KindAuth       = "auth"
	KindRateLimit  = "rate_limit"
	KindTimeout    = "timeout"
	KindResponse   = "response"
	KindUpstream   = "upstream"
	KindValidation = "validation"
	KindConfig     = "config"
	KindUnknown    = "unknown"
)

// Kind names the taxonomy member err wraps, for logs and fallback reasons.
func Kind(err error) string {
	var (
		auth       *AuthError
		rateLimit  *RateLimitError
		timeout    *TimeoutError
		parse      *ParseError
		upstream   *ProviderError
		validation *ValidationError
		cfg        *ConfigError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &auth):
		return KindAuth
	case errors.As(err, &rateLimit):
		return KindRateLimit
	case errors.As(err, &timeout):
		return KindTimeout
	case errors.As(err, &parse):
		return KindResponse
	case errors.As(err, &upstream):
		return KindUpstream
	case errors.As(err, &validation):
		return KindValidation
	case errors.As(err, &cfg):
		return KindConfig
	}
	return KindUnknown
}
