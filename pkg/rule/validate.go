package rule

import (
	"errors"
	"fmt"
	"unicode/utf8"

	rerrors "mercator-hq/nlpolicy/pkg/rule/errors"
)

// Limits on policy text and compiled rule size.
const (
	MinPolicyTextLength = 10
	MaxPolicyTextLength = 2000
	MaxConditions       = 20
	MaxActions          = 10
)

// Validate checks the structural invariants of a compiled rule and returns
// every problem found. A rule with understood=false and no actions is valid.
func Validate(r *PolicyRule) *rerrors.ErrorList {
	errs := rerrors.NewErrorList()
	if r == nil {
		errs.AddError(rerrors.ErrorTypeStructural, "rule is nil", "")
		return errs
	}

	if r.Understood {
		if r.Trigger.Event == "" {
			errs.AddError(rerrors.ErrorTypeStructural, "understood rule has no trigger event", "trigger.event")
		}
		if len(r.Actions) == 0 {
			errs.AddError(rerrors.ErrorTypeStructural, "understood rule has no actions", "actions")
		}
	}
	if r.Trigger.Event != "" && !r.Trigger.Event.Valid() {
		errs.AddError(rerrors.ErrorTypeSemantic, fmt.Sprintf("unknown trigger event %q", r.Trigger.Event), "trigger.event")
	}
	if r.ConditionLogic != "" && r.ConditionLogic != LogicAll && r.ConditionLogic != LogicAny {
		errs.AddError(rerrors.ErrorTypeSemantic, fmt.Sprintf("unknown condition logic %q", r.ConditionLogic), "conditionLogic")
	}
	if !r.Scope.Type.Valid() {
		errs.AddError(rerrors.ErrorTypeSemantic, fmt.Sprintf("unknown scope type %q", r.Scope.Type), "scope.type")
	}

	if len(r.Conditions) > MaxConditions {
		errs.AddError(rerrors.ErrorTypeLimit,
			fmt.Sprintf("rule has %d conditions, maximum is %d", len(r.Conditions), MaxConditions), "conditions")
	}
	for i, c := range r.Conditions {
		loc := fmt.Sprintf("conditions[%d]", i)
		if c.Field == "" {
			errs.AddError(rerrors.ErrorTypeStructural, "condition has no field", loc+".field")
		}
		if !c.Operator.Valid() {
			errs.AddErrorWithSuggestion(rerrors.ErrorTypeSemantic,
				fmt.Sprintf("unknown operator %q", c.Operator), loc+".operator", suggestOperator(string(c.Operator)))
		}
	}

	if len(r.Actions) > MaxActions {
		errs.AddError(rerrors.ErrorTypeLimit,
			fmt.Sprintf("rule has %d actions, maximum is %d", len(r.Actions), MaxActions), "actions")
	}
	for i, a := range r.Actions {
		loc := fmt.Sprintf("actions[%d]", i)
		if !a.Type.Valid() {
			errs.AddError(rerrors.ErrorTypeSemantic, fmt.Sprintf("unknown action type %q", a.Type), loc+".type")
		}
		if !a.ValueType.Valid() {
			errs.AddError(rerrors.ErrorTypeSemantic, fmt.Sprintf("unknown value type %q", a.ValueType), loc+".valueType")
		}
	}

	if dq := r.DynamicQuery; dq != nil {
		if dq.Table == "" {
			errs.AddError(rerrors.ErrorTypeStructural, "dynamic query has no table", "dynamicQuery.table")
		}
		if !dq.Operation.Valid() {
			errs.AddError(rerrors.ErrorTypeSemantic, fmt.Sprintf("unknown operation %q", dq.Operation), "dynamicQuery.operation")
		}
		for i, w := range dq.Where {
			if !w.Operator.Valid() {
				errs.AddError(rerrors.ErrorTypeSemantic,
					fmt.Sprintf("unknown operator %q", w.Operator), fmt.Sprintf("dynamicQuery.where[%d].operator", i))
			}
		}
	}

	return errs
}

// ErrTextLength is wrapped by CheckText errors.
var ErrTextLength = errors.New("policy text length out of range")

// CheckText enforces the accepted policy text length, counted in runes.
func CheckText(text string) error {
	n := utf8.RuneCountInString(text)
	if n < MinPolicyTextLength {
		return fmt.Errorf("%w: %d characters, minimum is %d", ErrTextLength, n, MinPolicyTextLength)
	}
	if n > MaxPolicyTextLength {
		return fmt.Errorf("%w: %d characters, maximum is %d", ErrTextLength, n, MaxPolicyTextLength)
	}
	return nil
}

func suggestOperator(s string) string {
	if op, ok := NormalizeOperator(s); ok {
		return fmt.Sprintf("use %s", op)
	}
	return "use one of EQUALS, NOT_EQUALS, GREATER_THAN, LESS_THAN, GREATER_THAN_OR_EQUAL, LESS_THAN_OR_EQUAL, CONTAINS, IN, BETWEEN"
}
