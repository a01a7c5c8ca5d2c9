package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "NLPOLICY_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention NLPOLICY_SECTION_FIELD (e.g., NLPOLICY_GENERATOR_API_KEY).
// An empty path starts from defaults instead of a file.
//
// The loading sequence is:
// 1. Load YAML from file (or start empty)
// 2. Apply environment variable overrides
// 3. Apply default values
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	// overrides run before defaults so that e.g. a provider set only in the
	// environment still gets its default model
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Malformed numeric, boolean or duration values are reported as a ValidationError.
func applyEnvOverrides(cfg *Config) error {
	e := &envReader{}

	// Generator overrides
	e.setString("GENERATOR_PROVIDER", &cfg.Generator.Provider)
	e.setString("GENERATOR_BASE_URL", &cfg.Generator.BaseURL)
	e.setString("GENERATOR_API_KEY", &cfg.Generator.APIKey)
	e.setString("GENERATOR_MODEL", &cfg.Generator.Model)
	e.setFloat("GENERATOR_TEMPERATURE", &cfg.Generator.Temperature)
	e.setInt("GENERATOR_MAX_TOKENS", &cfg.Generator.MaxTokens)
	e.setDuration("GENERATOR_TIMEOUT", &cfg.Generator.Timeout)

	// Schema overrides
	e.setString("SCHEMA_PATH", &cfg.Schema.Path)

	// Analyzer overrides
	e.setInt("ANALYZER_PROBE_CONCURRENCY", &cfg.Analyzer.ProbeConcurrency)

	// Probe overrides
	e.setString("PROBE_DRIVER", &cfg.Probe.Driver)
	e.setString("PROBE_DSN", &cfg.Probe.DSN)
	e.setString("PROBE_SCOPE_FIELD", &cfg.Probe.ScopeField)
	e.setDuration("PROBE_TIMEOUT", &cfg.Probe.Timeout)
	e.setInt("PROBE_MAX_OPEN_CONNS", &cfg.Probe.MaxOpenConns)

	// Cache overrides
	e.setInt("CACHE_SIZE", &cfg.Cache.Size)

	// History overrides
	e.setBool("HISTORY_ENABLED", &cfg.History.Enabled)
	e.setString("HISTORY_PATH", &cfg.History.Path)
	e.setInt("HISTORY_RETENTION_DAYS", &cfg.History.RetentionDays)
	e.setString("HISTORY_PRUNE_SCHEDULE", &cfg.History.PruneSchedule)

	// Telemetry overrides
	e.setString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	e.setString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	e.setBool("TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	e.setBool("TELEMETRY_LOGGING_REDACT_SECRETS", &cfg.Telemetry.Logging.RedactSecrets)
	e.setBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	e.setString("TELEMETRY_METRICS_NAMESPACE", &cfg.Telemetry.Metrics.Namespace)
	e.setString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	e.setString("TELEMETRY_METRICS_ADDRESS", &cfg.Telemetry.Metrics.Address)

	if len(e.errs) > 0 {
		return ValidationError{Errors: e.errs}
	}
	return nil
}

// envReader reads NLPOLICY_* variables and collects parse failures.
type envReader struct {
	errs []FieldError
}

func (e *envReader) lookup(name string) (string, bool) {
	val, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || val == "" {
		return "", false
	}
	return val, true
}

func (e *envReader) fail(name, msg string) {
	e.errs = append(e.errs, FieldError{
		Field:   EnvPrefix + name,
		Message: msg,
	})
}

func (e *envReader) setString(name string, dst *string) {
	if val, ok := e.lookup(name); ok {
		*dst = val
	}
}

func (e *envReader) setInt(name string, dst *int) {
	if val, ok := e.lookup(name); ok {
		i, err := strconv.Atoi(val)
		if err != nil {
			e.fail(name, fmt.Sprintf("invalid integer %q", val))
			return
		}
		*dst = i
	}
}

func (e *envReader) setFloat(name string, dst *float64) {
	if val, ok := e.lookup(name); ok {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			e.fail(name, fmt.Sprintf("invalid number %q", val))
			return
		}
		*dst = f
	}
}

func (e *envReader) setBool(name string, dst *bool) {
	if val, ok := e.lookup(name); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err != nil {
			e.fail(name, fmt.Sprintf("invalid boolean %q", val))
			return
		}
		*dst = b
	}
}

func (e *envReader) setDuration(name string, dst *time.Duration) {
	if val, ok := e.lookup(name); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			e.fail(name, fmt.Sprintf("invalid duration %q", val))
			return
		}
		*dst = d
	}
}
