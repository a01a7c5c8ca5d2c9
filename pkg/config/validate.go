package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "probe.driver").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateGenerator(&cfg.Generator)...)
	errs = append(errs, validateAnalyzer(&cfg.Analyzer)...)
	errs = append(errs, validateProbe(&cfg.Probe)...)
	errs = append(errs, validateCache(&cfg.Cache)...)
	errs = append(errs, validateHistory(&cfg.History)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateGenerator(cfg *GeneratorConfig) []FieldError {
	var errs []FieldError
	if !cfg.Enabled() {
		return nil
	}

	switch cfg.Provider {
	case "openai", "anthropic", "gemini":
	default:
		errs = append(errs, FieldError{
			Field:   "generator.provider",
			Message: fmt.Sprintf("unsupported provider %q, must be one of: openai, anthropic, gemini", cfg.Provider),
		})
	}

	if cfg.APIKey == "" {
		errs = append(errs, FieldError{
			Field:   "generator.api_key",
			Message: "API key is required when a provider is set (use NLPOLICY_GENERATOR_API_KEY)",
		})
	}

	if cfg.BaseURL != "" {
		if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "generator.base_url",
				Message: fmt.Sprintf("invalid URL %q", cfg.BaseURL),
			})
		}
	}

	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		errs = append(errs, FieldError{
			Field:   "generator.temperature",
			Message: "must be between 0 and 2",
		})
	}

	if cfg.MaxTokens < 0 {
		errs = append(errs, FieldError{
			Field:   "generator.max_tokens",
			Message: "must not be negative",
		})
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "generator.timeout",
			Message: "must not be negative",
		})
	}

	return errs
}

func validateAnalyzer(cfg *AnalyzerConfig) []FieldError {
	if cfg.ProbeConcurrency < 1 || cfg.ProbeConcurrency > 64 {
		return []FieldError{{
			Field:   "analyzer.probe_concurrency",
			Message: "must be between 1 and 64",
		}}
	}
	return nil
}

func validateProbe(cfg *ProbeConfig) []FieldError {
	var errs []FieldError
	if !cfg.Enabled() {
		return nil
	}

	switch cfg.Driver {
	case "sqlite", "sqlite3", "postgres":
	default:
		errs = append(errs, FieldError{
			Field:   "probe.driver",
			Message: fmt.Sprintf("unsupported driver %q, must be one of: sqlite, sqlite3, postgres", cfg.Driver),
		})
	}

	if cfg.DSN == "" {
		errs = append(errs, FieldError{
			Field:   "probe.dsn",
			Message: "DSN is required when a driver is set",
		})
	}

	if cfg.MaxOpenConns < 0 {
		errs = append(errs, FieldError{
			Field:   "probe.max_open_conns",
			Message: "must not be negative",
		})
	}

	return errs
}

func validateCache(cfg *CacheConfig) []FieldError {
	if cfg.Size < 0 {
		return []FieldError{{
			Field:   "cache.size",
			Message: "must not be negative",
		}}
	}
	return nil
}

func validateHistory(cfg *HistoryConfig) []FieldError {
	var errs []FieldError
	if !cfg.Enabled {
		return nil
	}

	if cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "history.path",
			Message: "path is required when history is enabled",
		})
	}

	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "history.retention_days",
			Message: "must not be negative",
		})
	}

	if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "history.prune_schedule",
			Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.PruneSchedule, err),
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid level %q, must be one of: debug, info, warn, error", cfg.Logging.Level),
		})
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid format %q, must be one of: json, text", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "must start with /",
			})
		}
		for i := 1; i < len(cfg.Metrics.DurationBuckets); i++ {
			if cfg.Metrics.DurationBuckets[i] <= cfg.Metrics.DurationBuckets[i-1] {
				errs = append(errs, FieldError{
					Field:   "telemetry.metrics.duration_buckets",
					Message: "must be strictly increasing",
				})
				break
			}
		}
	}

	return errs
}
