package config

import "time"

// Config is the root configuration for the policy compiler.
// It is loaded from a YAML file and can be overridden by environment variables.
type Config struct {
	// Generator configures the remote language model used as the primary parser.
	Generator GeneratorConfig `yaml:"generator"`

	// Schema locates the data-model schema consumed by the introspector.
	Schema SchemaConfig `yaml:"schema"`

	// Analyzer tunes the feasibility analyzer.
	Analyzer AnalyzerConfig `yaml:"analyzer"`

	// Probe configures data-existence checks against the live database.
	Probe ProbeConfig `yaml:"probe"`

	// Cache configures the compiled-rule cache in front of the remote parser.
	Cache CacheConfig `yaml:"cache"`

	// History configures the optional compile-history store.
	History HistoryConfig `yaml:"history"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// GeneratorConfig selects and configures the text-generation backend.
// An empty Provider disables remote parsing; every compile then uses the
// local dictionary parser.
type GeneratorConfig struct {
	// Provider is openai, anthropic or gemini. Empty means offline.
	Provider string `yaml:"provider"`

	// BaseURL overrides the vendor endpoint. OpenAI-compatible servers
	// (Ollama, vLLM) use provider openai with a custom base URL.
	BaseURL string `yaml:"base_url"`

	// APIKey is usually supplied through NLPOLICY_GENERATOR_API_KEY or a
	// .env file rather than the YAML file.
	APIKey string `yaml:"api_key"`

	// Model is the vendor model name.
	Model string `yaml:"model"`

	// Temperature is passed through to the vendor API.
	Temperature float64 `yaml:"temperature"`

	// MaxTokens bounds the length of the model reply.
	MaxTokens int `yaml:"max_tokens"`

	// Timeout bounds one generation request.
	Timeout time.Duration `yaml:"timeout"`
}

// Enabled reports whether a remote generator is configured.
func (g GeneratorConfig) Enabled() bool {
	return g.Provider != ""
}

// SchemaConfig locates the schema file.
type SchemaConfig struct {
	// Path is the schema file (Prisma-style model blocks).
	Path string `yaml:"path"`
}

// AnalyzerConfig tunes the feasibility analyzer.
type AnalyzerConfig struct {
	// ProbeConcurrency bounds concurrent data probes per analysis.
	ProbeConcurrency int `yaml:"probe_concurrency"`
}

// ProbeConfig configures the database used for hasData checks.
// An empty Driver disables probing and every field reports hasData false.
type ProbeConfig struct {
	// Driver is sqlite, sqlite3 (cgo) or postgres.
	Driver string `yaml:"driver"`

	// DSN is the driver-specific data source name.
	DSN string `yaml:"dsn"`

	// ScopeField is the model field compared with the scope ID.
	ScopeField string `yaml:"scope_field"`

	// Timeout bounds each probe query.
	Timeout time.Duration `yaml:"timeout"`

	// MaxOpenConns limits the connection pool.
	MaxOpenConns int `yaml:"max_open_conns"`
}

// Enabled reports whether probing is configured.
func (p ProbeConfig) Enabled() bool {
	return p.Driver != ""
}

// CacheConfig configures the compiled-rule LRU cache.
type CacheConfig struct {
	// Size is the number of cached rules. Zero disables the cache.
	Size int `yaml:"size"`
}

// HistoryConfig configures the compile-history store.
type HistoryConfig struct {
	// Enabled turns on recording of compile results.
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file.
	Path string `yaml:"path"`

	// RetentionDays is how long records are kept. Zero keeps records forever.
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for the retention pruner.
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig groups logging and metrics settings.
type TelemetryConfig struct {
	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the slog logger.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is json or text.
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks API keys and bearer tokens in log attributes.
	RedactSecrets bool `yaml:"redact_secrets"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns metric collection on.
	Enabled bool `yaml:"enabled"`

	// Namespace prefixes every metric name.
	Namespace string `yaml:"namespace"`

	// Path is the HTTP path served by serve-metrics.
	Path string `yaml:"path"`

	// Address is the listen address of serve-metrics.
	Address string `yaml:"address"`

	// DurationBuckets are the compile duration histogram buckets in seconds.
	DurationBuckets []float64 `yaml:"duration_buckets"`
}
