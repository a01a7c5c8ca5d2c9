package config

import "time"

// Default values for configuration fields.
const (
	// Generator defaults
	DefaultGeneratorTemperature = 0.1
	DefaultGeneratorMaxTokens   = 2048
	DefaultGeneratorTimeout     = 30 * time.Second

	// Schema defaults
	DefaultSchemaPath = "prisma/schema.prisma"

	// Analyzer defaults
	DefaultProbeConcurrency = 4

	// Probe defaults
	DefaultProbeScopeField   = "companyId"
	DefaultProbeTimeout      = 5 * time.Second
	DefaultProbeMaxOpenConns = 4

	// History defaults
	DefaultHistoryPath          = "data/history.db"
	DefaultHistoryRetentionDays = 90
	DefaultHistoryPruneSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsNamespace = "nlpolicy"
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsAddress   = "127.0.0.1:9090"
)

// DefaultDurationBuckets covers fast dictionary compiles through slow
// remote-model round trips.
var DefaultDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30}

// DefaultGeneratorModels is the model used when a provider is configured
// without one.
var DefaultGeneratorModels = map[string]string{
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-3-5-haiku-latest",
	"gemini":    "gemini-2.0-flash",
}

// ApplyDefaults fills zero-valued fields with their defaults. Fields that
// are disabled by being empty (generator.provider, probe.driver) stay empty.
func ApplyDefaults(cfg *Config) {
	// Generator defaults
	if cfg.Generator.Provider != "" && cfg.Generator.Model == "" {
		cfg.Generator.Model = DefaultGeneratorModels[cfg.Generator.Provider]
	}
	if cfg.Generator.Temperature == 0 {
		cfg.Generator.Temperature = DefaultGeneratorTemperature
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = DefaultGeneratorMaxTokens
	}
	if cfg.Generator.Timeout == 0 {
		cfg.Generator.Timeout = DefaultGeneratorTimeout
	}

	// Schema defaults
	if cfg.Schema.Path == "" {
		cfg.Schema.Path = DefaultSchemaPath
	}

	// Analyzer defaults
	if cfg.Analyzer.ProbeConcurrency == 0 {
		cfg.Analyzer.ProbeConcurrency = DefaultProbeConcurrency
	}

	// Probe defaults
	if cfg.Probe.ScopeField == "" {
		cfg.Probe.ScopeField = DefaultProbeScopeField
	}
	if cfg.Probe.Timeout == 0 {
		cfg.Probe.Timeout = DefaultProbeTimeout
	}
	if cfg.Probe.MaxOpenConns == 0 {
		cfg.Probe.MaxOpenConns = DefaultProbeMaxOpenConns
	}

	// History defaults
	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}
	if cfg.History.RetentionDays == 0 {
		cfg.History.RetentionDays = DefaultHistoryRetentionDays
	}
	if cfg.History.PruneSchedule == "" {
		cfg.History.PruneSchedule = DefaultHistoryPruneSchedule
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Address == "" {
		cfg.Telemetry.Metrics.Address = DefaultMetricsAddress
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
