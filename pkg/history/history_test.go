package history

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mercator-hq/nlpolicy/pkg/compiler"
	"mercator-hq/nlpolicy/pkg/feasibility"
	"mercator-hq/nlpolicy/pkg/rule"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func result(id, scope, parser string, at time.Time) *compiler.Result {
	r := rule.New()
	r.Understood = true
	r.Trigger.Event = rule.TriggerAttendance
	r.Actions = []rule.Action{{Type: rule.ActionDeductFromPayroll, ValueType: rule.ValueFixed, Value: 100.0}}
	return &compiler.Result{
		ID:      id,
		Text:    "deduct 100 if late more than 3 days",
		ScopeID: scope,
		Parser:  parser,
		Rule:    r,
		Feasibility: &feasibility.Result{
			IsExecutable: true,
			Summary:      feasibility.Summary{ExecutionReadiness: feasibility.ReadinessReady, ConfidenceScore: 100},
		},
		CompiledAt: at,
		Duration:   42 * time.Millisecond,
	}
}

func TestStoreRecordAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := s.Record(ctx, result("c1", "acme", compiler.ParserRemote, at)); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	e, err := s.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !e.CompiledAt.Equal(at) || e.Duration != 42*time.Millisecond {
		t.Errorf("times = %v %v", e.CompiledAt, e.Duration)
	}
	if !e.Understood || e.Parser != compiler.ParserRemote || e.Readiness != string(feasibility.ReadinessReady) {
		t.Errorf("entry = %+v", e)
	}
	if e.Rule == "" || e.Feasibility == "" {
		t.Error("rule and feasibility JSON should be stored")
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := s.Record(ctx, result("c1", "acme", compiler.ParserRemote, at)); err == nil {
		t.Error("duplicate ID should fail")
	}
}

func TestStoreList(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, r := range []*compiler.Result{
		result("a", "acme", compiler.ParserRemote, base),
		result("b", "acme", compiler.ParserDictionary, base.Add(time.Hour)),
		result("c", "globex", compiler.ParserDictionary, base.Add(2*time.Hour)),
	} {
		if err := s.Record(ctx, r); err != nil {
			t.Fatalf("Record(%d) error = %v", i, err)
		}
	}

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"all newest first", Query{}, []string{"c", "b", "a"}},
		{"by scope", Query{ScopeID: "acme"}, []string{"b", "a"}},
		{"by parser", Query{Parser: compiler.ParserDictionary}, []string{"c", "b"}},
		{"since", Query{Since: base.Add(30 * time.Minute)}, []string{"c", "b"}},
		{"limit", Query{Limit: 1}, []string{"c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := s.List(ctx, tt.q)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			var got []string
			for _, e := range entries {
				got = append(got, e.ID)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestStorePrune(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	s.Record(ctx, result("old", "", compiler.ParserRemote, now.AddDate(0, 0, -100)))
	s.Record(ctx, result("new", "", compiler.ParserRemote, now.AddDate(0, 0, -1)))

	sched := NewScheduler(s, 90, "0 3 * * *")
	sched.now = func() time.Time { return now }

	if deleted := sched.RunOnce(ctx); deleted != 1 {
		t.Errorf("RunOnce() deleted %d, want 1", deleted)
	}
	n, err := s.Count(ctx)
	if err != nil || n != 1 {
		t.Errorf("Count() = %d, %v", n, err)
	}
	if _, err := s.Get(ctx, "new"); err != nil {
		t.Errorf("recent entry pruned: %v", err)
	}
}

type countingPruner struct {
	mu     sync.Mutex
	cutoff time.Time
	calls  int
	err    error
}

func (p *countingPruner) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.cutoff = cutoff
	return 3, p.err
}

func TestSchedulerStart(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		retention   int
		wantRunning bool
		wantError   bool
	}{
		{"daily", "0 3 * * *", 90, true, false},
		{"hourly", "0 * * * *", 30, true, false},
		{"empty schedule", "", 90, false, false},
		{"zero retention", "0 3 * * *", 0, false, false},
		{"invalid schedule", "invalid cron", 90, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sched := NewScheduler(&countingPruner{}, tt.retention, tt.schedule)
			err := sched.Start(ctx)
			if (err != nil) != tt.wantError {
				t.Fatalf("Start() error = %v, wantError %v", err, tt.wantError)
			}
			if sched.IsRunning() != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", sched.IsRunning(), tt.wantRunning)
			}
			if tt.wantRunning {
				if sched.NextRun() == nil {
					t.Error("NextRun() should be set")
				}
				sched.Stop()
				if sched.IsRunning() {
					t.Error("scheduler still running after Stop")
				}
			}
		})
	}
}

func TestSchedulerRunOnce(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	p := &countingPruner{}
	sched := NewScheduler(p, 7, "")
	sched.now = func() time.Time { return now }

	if got := sched.RunOnce(context.Background()); got != 3 {
		t.Errorf("RunOnce() = %d", got)
	}
	if !p.cutoff.Equal(now.AddDate(0, 0, -7)) {
		t.Errorf("cutoff = %v", p.cutoff)
	}

	p.err = errors.New("locked")
	if got := sched.RunOnce(context.Background()); got != 0 {
		t.Errorf("RunOnce() on error = %d, want 0", got)
	}
}
