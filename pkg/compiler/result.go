package compiler

import (
	"time"

	"mercator-hq/nlpolicy/pkg/feasibility"
	"mercator-hq/nlpolicy/pkg/rule"
)

// Result is the outcome of one compile.
type Result struct {
	ID      string `json:"id" yaml:"id"`
	Text    string `json:"text" yaml:"text"`
	ScopeID string `json:"scopeId,omitempty" yaml:"scopeId,omitempty"`

	// Parser is "remote" or "dictionary".
	Parser string `json:"parser" yaml:"parser"`

	// FallbackReason is the remote failure that caused a dictionary parse.
	FallbackReason string `json:"fallbackReason,omitempty" yaml:"fallbackReason,omitempty"`

	Rule        *rule.PolicyRule    `json:"rule" yaml:"rule"`
	Feasibility *feasibility.Result `json:"feasibility,omitempty" yaml:"feasibility,omitempty"`

	// Issues are structural validation problems of Rule.
	Issues []string `json:"issues,omitempty" yaml:"issues,omitempty"`

	CompiledAt time.Time     `json:"compiledAt" yaml:"compiledAt"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
}

// Readiness returns the feasibility verdict, or "" when feasibility was not
// analyzed.
func (r *Result) Readiness() feasibility.Readiness {
	if r.Feasibility == nil {
		return ""
	}
	return r.Feasibility.Summary.ExecutionReadiness
}
