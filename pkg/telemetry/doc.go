// Package telemetry groups the observability packages of the policy compiler.
//
// # Components
//
//   - logging: slog logger construction, secret redaction, compile IDs in context
//   - metrics: Prometheus collector for compiles, fallbacks and feasibility verdicts
//   - health: readiness checks for the schema catalog, probe database and history store
//
// The collector is passed to the compiler as its Observer; the health checker
// and the metrics handler are mounted by the serve-metrics command.
package telemetry
