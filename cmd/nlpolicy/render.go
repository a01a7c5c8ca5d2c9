package main

import (
	"fmt"
	"strings"
	"time"

	"mercator-hq/nlpolicy/pkg/compiler"
	"mercator-hq/nlpolicy/pkg/feasibility"
	"mercator-hq/nlpolicy/pkg/parser/dictionary"
	"mercator-hq/nlpolicy/pkg/rule"
)

// compileOutput is what compile and watch print for one policy.
type compileOutput struct {
	Source string `json:"source,omitempty"`
	*compiler.Result
	Analysis *dictionary.Analysis `json:"analysis,omitempty"`
}

// Text implements cli.Texter.
func (o compileOutput) Text() string {
	var sb strings.Builder
	r := o.Rule

	if o.Source != "" {
		fmt.Fprintf(&sb, "== %s\n", o.Source)
	}
	fmt.Fprintf(&sb, "compile %s (%s parser, %s)\n", o.ID, o.Parser, o.Duration.Round(time.Microsecond))
	if o.FallbackReason != "" {
		fmt.Fprintf(&sb, "  fallback: %s\n", o.FallbackReason)
	}

	status := "understood"
	if !r.Understood {
		status = "NOT understood"
	}
	fmt.Fprintf(&sb, "  %s: %s\n", status, r.Explanation)
	if r.ClarificationNeeded != nil {
		fmt.Fprintf(&sb, "  clarification needed: %s\n", *r.ClarificationNeeded)
	}
	if r.Confidence != nil {
		fmt.Fprintf(&sb, "  confidence: %d\n", *r.Confidence)
	}

	fmt.Fprintf(&sb, "  trigger: %s\n", r.Trigger.Event)
	writeConditions(&sb, r)
	for _, a := range r.Actions {
		fmt.Fprintf(&sb, "  action: %s %s %v\n", a.Type, a.ValueType, a.Value)
	}
	if dq := r.DynamicQuery; dq != nil {
		fmt.Fprintf(&sb, "  dynamic query: %s %s on %s\n", dq.Type, dq.Operation, dq.Table)
		for _, w := range dq.Where {
			fmt.Fprintf(&sb, "    where %s %s %v\n", w.Field, w.Operator, w.Value)
		}
	}
	for _, issue := range o.Issues {
		fmt.Fprintf(&sb, "  issue: %s\n", issue)
	}

	if f := o.Feasibility; f != nil {
		sb.WriteString(feasibilityText(f))
	}

	if a := o.Analysis; a != nil {
		sb.WriteString("  tokens:\n")
		for _, t := range a.Tokens {
			fmt.Fprintf(&sb, "    %q -> %v (%s)\n", t.Raw, t.Value, t.Role)
		}
	}
	return sb.String()
}

func writeConditions(sb *strings.Builder, r *rule.PolicyRule) {
	if len(r.Conditions) > 1 {
		fmt.Fprintf(sb, "  conditions (%s):\n", r.ConditionLogic)
	}
	for _, c := range r.Conditions {
		fmt.Fprintf(sb, "  condition: %s %s %v\n", c.Field, c.Operator, c.Value)
	}
}

// analyzeOutput is what analyze prints.
type analyzeOutput struct {
	*feasibility.Result
}

// Text implements cli.Texter.
func (o analyzeOutput) Text() string {
	return feasibilityText(o.Result)
}

func feasibilityText(f *feasibility.Result) string {
	var sb strings.Builder
	s := f.Summary
	fmt.Fprintf(&sb, "  feasibility: %s (score %d, %d/%d fields available)\n",
		s.ExecutionReadiness, s.ConfidenceScore, s.SatisfiedConditions, s.TotalConditions)
	for _, av := range f.AvailableFields {
		fmt.Fprintf(&sb, "    + %s -> %s (%s, hasData=%t)\n", av.Field, av.Source, av.DataType, av.HasData)
	}
	for _, m := range f.MissingFields {
		fmt.Fprintf(&sb, "    - %s: %s [%s]", m.Field, m.Reason, m.Priority)
		if m.Suggestion != "" {
			fmt.Fprintf(&sb, " %s", m.Suggestion)
		}
		sb.WriteString("\n")
	}
	for _, rec := range f.Recommendations {
		fmt.Fprintf(&sb, "    recommendation: %s\n", rec)
	}
	for _, w := range f.Warnings {
		fmt.Fprintf(&sb, "    warning: %s\n", w)
	}
	return sb.String()
}
