package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/nlpolicy/pkg/config"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{Enabled: true, Namespace: "test"}
}

func TestCollectorCounters(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.ObserveCompile("remote", true, 1200*time.Millisecond)
	c.ObserveCompile("dictionary", false, time.Millisecond)
	c.ObserveCompile("dictionary", false, time.Millisecond)
	c.ObserveParseFailure("extract")
	c.ObserveFallback()
	c.ObserveFeasibility("PARTIAL", 2)
	c.ObserveFeasibility("READY", 0)
	c.SetSchemaModels(10)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"remote understood", testutil.ToFloat64(c.compiles.WithLabelValues("remote", "true")), 1},
		{"dictionary not understood", testutil.ToFloat64(c.compiles.WithLabelValues("dictionary", "false")), 2},
		{"extract failures", testutil.ToFloat64(c.parseFailures.WithLabelValues("extract")), 1},
		{"fallbacks", testutil.ToFloat64(c.fallbacks), 1},
		{"partial verdicts", testutil.ToFloat64(c.readiness.WithLabelValues("PARTIAL")), 1},
		{"missing fields", testutil.ToFloat64(c.missingFields), 2},
		{"schema models", testutil.ToFloat64(c.schemaModels), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if n := testutil.CollectAndCount(c.duration); n != 2 {
		t.Errorf("duration series = %d, want 2", n)
	}
}

func TestCollectorDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	c := NewCollector(cfg, nil)

	c.ObserveCompile("remote", true, time.Second)
	c.ObserveFallback()

	if got := testutil.ToFloat64(c.fallbacks); got != 0 {
		t.Errorf("fallbacks = %v, want 0 when disabled", got)
	}
}

func TestCollectorDefaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	NewCollector(cfg, nil)
	if cfg.Namespace != "nlpolicy" {
		t.Errorf("Namespace = %q, want nlpolicy", cfg.Namespace)
	}
	if len(cfg.DurationBuckets) == 0 {
		t.Error("DurationBuckets not defaulted")
	}
}

func TestHandler(t *testing.T) {
	c := NewCollector(testConfig(), nil)
	c.ObserveFallback()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test_fallback_total 1") {
		t.Errorf("body missing fallback counter:\n%s", rec.Body.String())
	}
}
