// Package metrics exposes Prometheus metrics for policy compilation:
// compile counts by parser and outcome, remote parse failures by stage,
// dictionary fallbacks, feasibility verdicts, missing field references,
// compile latency and schema catalog size.
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	http.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
package metrics
