package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/nlpolicy/pkg/config"
)

// Collector records policy compilation metrics on its own registry.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	compiles      *prometheus.CounterVec
	parseFailures *prometheus.CounterVec
	fallbacks     prometheus.Counter
	readiness     *prometheus.CounterVec
	missingFields prometheus.Counter
	duration      *prometheus.HistogramVec
	schemaModels  prometheus.Gauge
}

// NewCollector registers every metric. A nil registry gets a fresh one.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "nlpolicy"
	}
	if len(cfg.DurationBuckets) == 0 {
		// local parses take microseconds, remote ones seconds
		cfg.DurationBuckets = []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
		compiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "compile_total",
			Help:      "Policies compiled, by parser and outcome.",
		}, []string{"parser", "understood"}),
		parseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "parse_failures_total",
			Help:      "Remote parse failures, by stage.",
		}, []string{"stage"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "fallback_total",
			Help:      "Compilations that fell back to the dictionary parser.",
		}),
		readiness: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "readiness_total",
			Help:      "Feasibility verdicts, by execution readiness.",
		}, []string{"readiness"}),
		missingFields: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "missing_fields_total",
			Help:      "Unresolvable field references reported by the analyzer.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "compile_duration_seconds",
			Help:      "End-to-end compile latency, by parser.",
			Buckets:   cfg.DurationBuckets,
		}, []string{"parser"}),
		schemaModels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "schema_models",
			Help:      "Models in the loaded schema catalog.",
		}),
	}

	registry.MustRegister(
		c.compiles,
		c.parseFailures,
		c.fallbacks,
		c.readiness,
		c.missingFields,
		c.duration,
		c.schemaModels,
	)
	return c
}

// ObserveCompile records one finished compilation.
func (c *Collector) ObserveCompile(parser string, understood bool, d time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.compiles.WithLabelValues(parser, strconv.FormatBool(understood)).Inc()
	c.duration.WithLabelValues(parser).Observe(d.Seconds())
}

// ObserveParseFailure records a remote failure at stage.
func (c *Collector) ObserveParseFailure(stage string) {
	if !c.config.Enabled {
		return
	}
	c.parseFailures.WithLabelValues(stage).Inc()
}

func (c *Collector) ObserveFallback() {
	if !c.config.Enabled {
		return
	}
	c.fallbacks.Inc()
}

// ObserveFeasibility records a verdict and its missing field count.
func (c *Collector) ObserveFeasibility(readiness string, missing int) {
	if !c.config.Enabled {
		return
	}
	c.readiness.WithLabelValues(readiness).Inc()
	c.missingFields.Add(float64(missing))
}

// SetSchemaModels sets the catalog size gauge.
func (c *Collector) SetSchemaModels(n int) {
	if !c.config.Enabled {
		return
	}
	c.schemaModels.Set(float64(n))
}

// Registry returns the registry the collector writes to.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
