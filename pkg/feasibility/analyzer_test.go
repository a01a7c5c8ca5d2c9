package feasibility

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"mercator-hq/nlpolicy/internal/testutil"
	"mercator-hq/nlpolicy/pkg/rule"
	"mercator-hq/nlpolicy/pkg/schema"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeProbe struct {
	mu     sync.Mutex
	calls  map[string]int
	data   map[string]bool
	failOn string
}

func (p *fakeProbe) HasData(ctx context.Context, model, scopeID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls == nil {
		p.calls = map[string]int{}
	}
	p.calls[model]++
	if model == p.failOn {
		return false, errors.New("connection refused")
	}
	return p.data[model], nil
}

func newAnalyzer(probe Probe) *Analyzer {
	return NewAnalyzer(schema.NewFromText(testutil.HRSchema), Options{Probe: probe})
}

func ruleWith(conds ...rule.Condition) *rule.PolicyRule {
	r := rule.New()
	r.Understood = true
	r.Conditions = conds
	r.Actions = []rule.Action{{Type: rule.ActionAddToPayroll, ValueType: rule.ValueFixed, Value: 100.0}}
	return r
}

func cond(field string) rule.Condition {
	return rule.Condition{Field: field, Operator: rule.OpGreaterThan, Value: 3.0}
}

func TestAnalyzeReadiness(t *testing.T) {
	tests := []struct {
		name          string
		rule          *rule.PolicyRule
		wantReadiness Readiness
		wantScore     int
		wantAvailable int
		wantMissing   int
	}{
		{
			name:          "semantic field resolves",
			rule:          ruleWith(cond("attendance.currentPeriod.lateDays")),
			wantReadiness: ReadinessReady,
			wantScore:     100,
			wantAvailable: 1,
		},
		{
			name:          "direct schema field resolves",
			rule:          ruleWith(cond("Attendance.workingHours")),
			wantReadiness: ReadinessReady,
			wantScore:     100,
			wantAvailable: 1,
		},
		{
			name:          "unknown field",
			rule:          ruleWith(cond("attendance.currentPeriod.earlyLeaveDays")),
			wantReadiness: ReadinessNotReady,
			wantScore:     0,
			wantMissing:   1,
		},
		{
			name:          "partial",
			rule:          ruleWith(cond("contract.basicSalary"), cond("location.geofenceExitCount")),
			wantReadiness: ReadinessPartial,
			wantScore:     50,
			wantAvailable: 1,
			wantMissing:   1,
		},
		{
			name: "partial rounds",
			rule: ruleWith(cond("contract.basicSalary"), cond("contract.totalSalary"),
				cond("location.geofenceExitCount")),
			wantReadiness: ReadinessPartial,
			wantScore:     67,
			wantAvailable: 2,
			wantMissing:   1,
		},
		{
			name:          "no references",
			rule:          ruleWith(),
			wantReadiness: ReadinessReady,
			wantScore:     90,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newAnalyzer(nil).Analyze(context.Background(), tt.rule, "company-1")

			if res.Summary.ExecutionReadiness != tt.wantReadiness {
				t.Errorf("readiness = %s, want %s", res.Summary.ExecutionReadiness, tt.wantReadiness)
			}
			if res.Summary.ConfidenceScore != tt.wantScore {
				t.Errorf("confidence = %d, want %d", res.Summary.ConfidenceScore, tt.wantScore)
			}
			if len(res.AvailableFields) != tt.wantAvailable {
				t.Errorf("available = %+v, want %d", res.AvailableFields, tt.wantAvailable)
			}
			if len(res.MissingFields) != tt.wantMissing {
				t.Errorf("missing = %+v, want %d", res.MissingFields, tt.wantMissing)
			}
			if res.IsExecutable != (tt.wantReadiness == ReadinessReady) {
				t.Errorf("IsExecutable = %v with readiness %s", res.IsExecutable, res.Summary.ExecutionReadiness)
			}
		})
	}
}

func TestAnalyzeNoReferencesWarns(t *testing.T) {
	res := newAnalyzer(nil).Analyze(context.Background(), ruleWith(), "company-1")
	if len(res.Warnings) == 0 {
		t.Fatal("expected a warning for a rule without conditions")
	}
	if res.Summary.TotalConditions != 0 {
		t.Errorf("TotalConditions = %d, want 0", res.Summary.TotalConditions)
	}
}

func TestAnalyzeMissingFieldSuggestion(t *testing.T) {
	res := newAnalyzer(nil).Analyze(context.Background(), ruleWith(cond("Contract.basicSalry")), "company-1")

	if len(res.MissingFields) != 1 {
		t.Fatalf("missing = %+v, want exactly one", res.MissingFields)
	}
	mf := res.MissingFields[0]
	if mf.Reason != ReasonNotFound || mf.Priority != PriorityHigh {
		t.Errorf("missing field = %+v", mf)
	}
	if !strings.Contains(mf.Suggestion, "Contract.basicSalary") {
		t.Errorf("suggestion = %q, want it to mention Contract.basicSalary", mf.Suggestion)
	}
	if len(res.Recommendations) != 2 {
		t.Errorf("recommendations = %v, want summary plus one group", res.Recommendations)
	}
}

func TestAnalyzeFormulaFields(t *testing.T) {
	r := ruleWith(cond("attendance.currentPeriod.overtimeHours"))
	r.Actions = []rule.Action{{
		Type:      rule.ActionAddToPayroll,
		ValueType: rule.ValueFormula,
		Value:     "MAX(attendance.currentPeriod.overtimeHours - 20, 0) * (contract.basicSalary / 240) * 1.5 + bonus.extra",
	}}

	res := newAnalyzer(nil).Analyze(context.Background(), r, "company-1")

	var fields []string
	for _, f := range res.AvailableFields {
		fields = append(fields, f.Field)
	}
	want := []string{"attendance.currentPeriod.overtimeHours", "contract.basicSalary"}
	if !slices.Equal(fields, want) {
		t.Errorf("available fields = %v, want %v", fields, want)
	}
	if len(res.MissingFields) != 1 || res.MissingFields[0].Field != "bonus.extra" || res.MissingFields[0].Reason != ReasonFormula {
		t.Errorf("missing = %+v, want bonus.extra from formula", res.MissingFields)
	}
}

func TestAnalyzeDynamicQuery(t *testing.T) {
	t.Run("resolves mirrored conditions", func(t *testing.T) {
		r := ruleWith(
			rule.Condition{Field: "dynamicQuery.date", Operator: rule.OpEquals, Value: "2026-01-07"},
			rule.Condition{Field: "dynamicQuery.checkIn", Operator: rule.OpLessThanOrEqual, Value: "09:00:00"},
		)
		r.DynamicQuery = &rule.DynamicQuery{
			Type:      rule.QueryDateSpecific,
			Table:     "Attendance",
			Operation: rule.OperationExists,
			Where: []rule.Where{
				{Field: "date", Operator: rule.OpEquals, Value: "2026-01-07"},
				{Field: "checkIn", Operator: rule.OpLessThanOrEqual, Value: "09:00:00"},
			},
		}

		res := newAnalyzer(nil).Analyze(context.Background(), r, "company-1")
		if res.Summary.ExecutionReadiness != ReadinessReady {
			t.Errorf("readiness = %s, missing = %+v", res.Summary.ExecutionReadiness, res.MissingFields)
		}
		if res.Summary.TotalConditions != 4 || res.Summary.SatisfiedConditions != 4 {
			t.Errorf("summary = %+v", res.Summary)
		}
	})

	t.Run("missing table", func(t *testing.T) {
		r := ruleWith()
		r.DynamicQuery = &rule.DynamicQuery{
			Type:      rule.QueryCustom,
			Table:     "Payroll",
			Operation: rule.OperationSum,
			Where:     []rule.Where{{Field: "amount", Operator: rule.OpGreaterThan, Value: 0.0}},
		}

		res := newAnalyzer(nil).Analyze(context.Background(), r, "company-1")
		if len(res.MissingFields) != 2 {
			t.Fatalf("missing = %+v, want table and field", res.MissingFields)
		}
		if res.MissingFields[0].Reason != ReasonQueryTable || res.MissingFields[1].Field != "Payroll.amount" {
			t.Errorf("missing = %+v", res.MissingFields)
		}
		if res.Summary.ExecutionReadiness != ReadinessNotReady {
			t.Errorf("readiness = %s, want NOT_READY", res.Summary.ExecutionReadiness)
		}
		want := "add 1 field(s) to model Payroll: amount"
		if !slices.Contains(res.Recommendations, want) {
			t.Errorf("recommendations = %v, want %q", res.Recommendations, want)
		}
	})
}

func TestRecommendationsQueryTable(t *testing.T) {
	r := ruleWith(rule.Condition{Field: "dynamicQuery.amount", Operator: rule.OpGreaterThan, Value: 0.0})
	r.DynamicQuery = &rule.DynamicQuery{
		Type:      rule.QueryCustom,
		Table:     "Payroll",
		Operation: rule.OperationSum,
		Where:     []rule.Where{{Field: "amount", Operator: rule.OpGreaterThan, Value: 0.0}},
	}

	res := newAnalyzer(nil).Analyze(context.Background(), r, "company-1")
	want := []string{
		"add 3 missing field(s) before activating the policy",
		"add 1 field(s) to model Payroll: amount",
	}
	if !slices.Equal(res.Recommendations, want) {
		t.Errorf("recommendations = %v, want %v", res.Recommendations, want)
	}
}

func TestAnalyzeProbes(t *testing.T) {
	probe := &fakeProbe{data: map[string]bool{"Attendance": true}, failOn: "Contract"}
	r := ruleWith(
		cond("attendance.currentPeriod.lateDays"),
		cond("attendance.currentPeriod.absentDays"),
		cond("contract.basicSalary"),
		cond("leaves.balance.annual"),
	)

	res := newAnalyzer(probe).Analyze(context.Background(), r, "company-1")

	got := map[string]bool{}
	for _, f := range res.AvailableFields {
		got[f.Field] = f.HasData
	}
	want := map[string]bool{
		"attendance.currentPeriod.lateDays":   true,
		"attendance.currentPeriod.absentDays": true,
		"contract.basicSalary":                false,
		"leaves.balance.annual":               false,
	}
	for field, hasData := range want {
		if got[field] != hasData {
			t.Errorf("HasData(%s) = %v, want %v", field, got[field], hasData)
		}
	}
	if probe.calls["Attendance"] != 1 {
		t.Errorf("Attendance probed %d times, want 1", probe.calls["Attendance"])
	}
	if res.Summary.ExecutionReadiness != ReadinessReady {
		t.Errorf("probe failure changed readiness to %s", res.Summary.ExecutionReadiness)
	}
}

func TestAnalyzeHasDataEveryResolution(t *testing.T) {
	r := ruleWith(
		cond("contract.basicSalary"),
		cond("Contract.basicSalary"),
		rule.Condition{Field: "dynamicQuery.date", Operator: rule.OpEquals, Value: "2026-01-07"},
	)
	r.DynamicQuery = &rule.DynamicQuery{
		Type:      rule.QueryDateSpecific,
		Table:     "Attendance",
		Operation: rule.OperationExists,
		Where:     []rule.Where{{Field: "date", Operator: rule.OpEquals, Value: "2026-01-07"}},
	}

	tests := []struct {
		name    string
		checker Probe
		want    bool
	}{
		{"no checker", nil, false},
		{"data present", &fakeProbe{data: map[string]bool{"Contract": true, "Attendance": true}}, true},
		{"data absent", &fakeProbe{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newAnalyzer(tt.checker).Analyze(context.Background(), r, "company-1")
			if len(res.AvailableFields) != 4 {
				t.Fatalf("available = %+v, want 4", res.AvailableFields)
			}
			for _, f := range res.AvailableFields {
				if f.HasData != tt.want {
					t.Errorf("HasData(%s) = %v, want %v", f.Field, f.HasData, tt.want)
				}
			}
		})
	}
}

func TestAnalyzeDegradedCatalog(t *testing.T) {
	a := NewAnalyzer(schema.NewFromText(""), Options{})
	res := a.Analyze(context.Background(), ruleWith(cond("contract.basicSalary")), "company-1")

	if res.IsExecutable {
		t.Error("rule reported executable against an empty catalog")
	}
	if len(res.MissingFields) != 1 {
		t.Errorf("missing = %+v, want 1", res.MissingFields)
	}
}

func TestAnalyzeClarificationWarning(t *testing.T) {
	r := ruleWith(cond("contract.basicSalary"))
	r.ClarificationNeeded = rule.StringPtr("which target counts as achieved?")

	res := newAnalyzer(nil).Analyze(context.Background(), r, "company-1")
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "which target") {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestSummarizeScoreBounds(t *testing.T) {
	for total := 0; total < 6; total++ {
		for satisfied := 0; satisfied < 8; satisfied++ {
			for missing := 0; missing < 8; missing++ {
				s := summarize(total, satisfied, missing)
				if s.ConfidenceScore < 0 || s.ConfidenceScore > 100 {
					t.Fatalf("summarize(%d, %d, %d) score = %d", total, satisfied, missing, s.ConfidenceScore)
				}
			}
		}
	}
}

func TestSupportedFields(t *testing.T) {
	a := newAnalyzer(nil)
	fields := a.SupportedFields()
	if len(fields) == 0 || fields[0] != "employee.tenure.months" {
		t.Errorf("SupportedFields() = %v", fields)
	}
	if desc, ok := a.FieldDescription("contract.basicSalary"); !ok || desc == "" {
		t.Errorf("FieldDescription(contract.basicSalary) = %q, %v", desc, ok)
	}
	if _, ok := a.FieldDescription("nope.nothing"); ok {
		t.Error("FieldDescription returned ok for unknown path")
	}
}

func TestFormulaFields(t *testing.T) {
	got := FormulaFields("employee.tenure.years * 200 + employee.tenure.years")
	if !slices.Equal(got, []string{"employee.tenure.years"}) {
		t.Errorf("FormulaFields() = %v", got)
	}
}
