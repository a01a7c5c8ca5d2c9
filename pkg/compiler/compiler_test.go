package compiler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"mercator-hq/nlpolicy/internal/testutil"
	"mercator-hq/nlpolicy/pkg/feasibility"
	"mercator-hq/nlpolicy/pkg/parser/remote"
	"mercator-hq/nlpolicy/pkg/providers"
	"mercator-hq/nlpolicy/pkg/rule"
	"mercator-hq/nlpolicy/pkg/schema"
)

const latenessPolicy = "إذا تأخر الموظف أكثر من 3 أيام يتم خصم 100 ريال"

type remoteFunc func(ctx context.Context, text string) (*rule.PolicyRule, error)

func (f remoteFunc) Parse(ctx context.Context, text string) (*rule.PolicyRule, error) {
	return f(ctx, text)
}

type recordingObserver struct {
	mu          sync.Mutex
	compiles    []string
	failures    []string
	fallbacks   int
	readiness   []string
	missingSeen int
}

func (o *recordingObserver) ObserveCompile(parser string, understood bool, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.compiles = append(o.compiles, parser)
}

func (o *recordingObserver) ObserveParseFailure(stage string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, stage)
}

func (o *recordingObserver) ObserveFallback() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fallbacks++
}

func (o *recordingObserver) ObserveFeasibility(readiness string, missing int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.readiness = append(o.readiness, readiness)
	o.missingSeen += missing
}

type memoryRecorder struct {
	results []*Result
	err     error
}

func (r *memoryRecorder) Record(ctx context.Context, res *Result) error {
	r.results = append(r.results, res)
	return r.err
}

func remoteRule() *rule.PolicyRule {
	r := rule.New()
	r.Understood = true
	r.Trigger.Event = rule.TriggerAttendance
	r.Conditions = []rule.Condition{{Field: "attendance.currentPeriod.lateDays", Operator: rule.OpGreaterThan, Value: 3.0}}
	r.Actions = []rule.Action{{Type: rule.ActionDeductFromPayroll, ValueType: rule.ValueFixed, Value: 100.0}}
	return r
}

func newAnalyzer() *feasibility.Analyzer {
	return feasibility.NewAnalyzer(schema.NewFromText(testutil.HRSchema), feasibility.Options{})
}

func TestCompileRemote(t *testing.T) {
	obs := &recordingObserver{}
	rec := &memoryRecorder{}
	c := New(Options{
		Remote: remoteFunc(func(ctx context.Context, text string) (*rule.PolicyRule, error) {
			return remoteRule(), nil
		}),
		Analyzer: newAnalyzer(),
		Observer: obs,
		Recorder: rec,
	})

	res, err := c.Compile(context.Background(), latenessPolicy, "company-1")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if res.Parser != ParserRemote || res.FallbackReason != "" {
		t.Errorf("parser = %q, fallback = %q", res.Parser, res.FallbackReason)
	}
	if res.ID == "" || res.ScopeID != "company-1" {
		t.Errorf("id = %q, scope = %q", res.ID, res.ScopeID)
	}
	if !res.Rule.Understood || len(res.Rule.Actions) != 1 {
		t.Errorf("unexpected rule: %+v", res.Rule)
	}
	if res.Readiness() != feasibility.ReadinessReady {
		t.Errorf("readiness = %q", res.Readiness())
	}
	if len(res.Issues) != 0 {
		t.Errorf("unexpected issues: %v", res.Issues)
	}

	if len(obs.compiles) != 1 || obs.compiles[0] != ParserRemote || obs.fallbacks != 0 {
		t.Errorf("observer = %+v", obs)
	}
	if len(obs.readiness) != 1 || obs.readiness[0] != string(feasibility.ReadinessReady) {
		t.Errorf("readiness observed = %v", obs.readiness)
	}
	if len(rec.results) != 1 || rec.results[0] != res {
		t.Errorf("recorder got %d results", len(rec.results))
	}
}

func TestCompileFallback(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		genErr    error
		wantStage string
	}{
		{name: "generator unreachable", genErr: errors.New("connection refused"), wantStage: "generate"},
		{name: "prose reply", reply: "I cannot help with that.", wantStage: "extract"},
		{name: "empty array", reply: "[]", wantStage: "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := providers.GeneratorFunc(func(ctx context.Context, sys, prompt string) (string, error) {
				return tt.reply, tt.genErr
			})
			rp, err := remote.New(gen, remote.Options{})
			if err != nil {
				t.Fatal(err)
			}
			obs := &recordingObserver{}
			c := New(Options{Remote: rp, Observer: obs})

			res, err := c.Compile(context.Background(), latenessPolicy, "")
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if res.Parser != ParserDictionary {
				t.Errorf("parser = %q, want dictionary", res.Parser)
			}
			if res.FallbackReason == "" {
				t.Error("FallbackReason should be set")
			}
			if !res.Rule.Understood {
				t.Errorf("dictionary fallback should understand the policy: %s", res.Rule.Explanation)
			}
			if res.Feasibility != nil {
				t.Error("feasibility should be skipped without an analyzer")
			}
			if len(obs.failures) != 1 || obs.failures[0] != tt.wantStage || obs.fallbacks != 1 {
				t.Errorf("failures = %v, fallbacks = %d", obs.failures, obs.fallbacks)
			}
		})
	}
}

func TestCompileOffline(t *testing.T) {
	c := New(Options{Analyzer: newAnalyzer()})

	res, err := c.Compile(context.Background(), "deduct 100 if late more than 3 days", "")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if res.Parser != ParserDictionary || res.FallbackReason != "" {
		t.Errorf("parser = %q, fallback = %q", res.Parser, res.FallbackReason)
	}
	if res.Rule.Confidence == nil {
		t.Error("dictionary rules carry a confidence")
	}
	if res.Feasibility == nil {
		t.Fatal("expected feasibility report")
	}
}

func TestCompilePostProcesses(t *testing.T) {
	c := New(Options{})

	res, err := c.Compile(context.Background(), "خصم 50 ريال لمن عمل من 4 ل 6 ساعات", "")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	dq := res.Rule.DynamicQuery
	if dq == nil || dq.Type != rule.QueryCountCondition {
		t.Fatalf("expected hour-range dynamic query, got %+v", dq)
	}
}

func TestCompileTextLength(t *testing.T) {
	c := New(Options{})
	if _, err := c.Compile(context.Background(), "short", ""); err == nil {
		t.Error("expected error for short text")
	}
	if _, err := c.Compile(context.Background(), strings.Repeat("x", rule.MaxPolicyTextLength+1), ""); err == nil {
		t.Error("expected error for long text")
	}
}

func TestCompileCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := New(Options{
		Remote: remoteFunc(func(ctx context.Context, text string) (*rule.PolicyRule, error) {
			cancel()
			return nil, &remote.ParseFailure{Stage: remote.StageGenerate, Cause: ctx.Err()}
		}),
	})

	_, err := c.Compile(ctx, latenessPolicy, "")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestCompileRecorderErrorIgnored(t *testing.T) {
	rec := &memoryRecorder{err: errors.New("disk full")}
	c := New(Options{Recorder: rec})

	if _, err := c.Compile(context.Background(), latenessPolicy, ""); err != nil {
		t.Fatalf("recorder failure should not fail the compile: %v", err)
	}
	if len(rec.results) != 1 {
		t.Errorf("recorder calls = %d", len(rec.results))
	}
}

func TestCompileValidationIssues(t *testing.T) {
	c := New(Options{
		Remote: remoteFunc(func(ctx context.Context, text string) (*rule.PolicyRule, error) {
			r := remoteRule()
			r.Trigger.Event = ""
			return r, nil
		}),
	})

	res, err := c.Compile(context.Background(), latenessPolicy, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Issues) == 0 {
		t.Error("expected a validation issue for the missing trigger event")
	}
}
