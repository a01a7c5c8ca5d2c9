// Package config loads the policy compiler configuration.
//
// Configuration comes from an optional YAML file, environment variables and
// built-in defaults:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("nlpolicy.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention NLPOLICY_SECTION_FIELD:
//
//   - NLPOLICY_GENERATOR_PROVIDER overrides generator.provider
//   - NLPOLICY_GENERATOR_API_KEY overrides generator.api_key
//   - NLPOLICY_PROBE_DSN overrides probe.dsn
//   - NLPOLICY_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables take precedence over the file. Defaults fill
// whatever is still empty, then the result is validated.
//
// # Disabled Components
//
// An empty generator.provider compiles every policy with the local
// dictionary parser. An empty probe.driver disables data checks.
// history.enabled turns on the compile-history store.
package config
