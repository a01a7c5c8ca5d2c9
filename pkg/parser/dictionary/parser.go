package dictionary

import (
	"fmt"
	"strconv"
	"strings"

	"mercator-hq/nlpolicy/pkg/rule"
)

// Parser is the offline policy parser. It has no state and is safe for
// concurrent use.
type Parser struct{}

// New creates a dictionary parser.
func New() *Parser {
	return &Parser{}
}

// Analysis is the intermediate state of a parse, exposed for diagnostics.
type Analysis struct {
	Words          []string        `json:"words"`
	Tokens         []Token         `json:"tokens"`
	HasDate        bool            `json:"hasDate"`
	HasConnective  bool            `json:"hasConnective"`
	ConditionField string          `json:"conditionField,omitempty"`
	FieldFromText  bool            `json:"fieldFromText,omitempty"`
	Operator       rule.Operator   `json:"operator,omitempty"`
	ActionType     rule.ActionType `json:"actionType,omitempty"`

	conditionToken *Token
	actionToken    *Token
	conditionValue *float64
	tieBreak       bool
	positional     bool
	opDefaulted    bool
	valueDefaulted bool
}

// Parse compiles text into a best-effort rule. It never fails: when a
// condition and an action cannot both be resolved the rule comes back with
// Understood false and an explanation of what was recognized.
func (p *Parser) Parse(text string) *rule.PolicyRule {
	return p.build(p.Analyze(text))
}

// Analyze runs the tokenizing and classification steps without building a rule.
func (p *Parser) Analyze(text string) *Analysis {
	a := &Analysis{}
	a.Words, a.HasDate = normalize(text)
	a.Tokens = extractTokens(a.Words)
	a.tieBreak, a.positional = classify(a.Words, a.Tokens)
	a.HasConnective = containsAny(a.Words, 0, len(a.Words), connectives)

	for k := range a.Tokens {
		t := &a.Tokens[k]
		if t.Role == RoleCondition && a.conditionToken == nil {
			a.conditionToken = t
		}
		if t.Role == RoleAction && a.actionToken == nil {
			a.actionToken = t
		}
	}

	a.resolveField()
	a.resolveOperator()
	a.resolveAction()
	return a
}

func (a *Analysis) resolveField() {
	var categorical bool
	if a.conditionToken != nil {
		i := a.conditionToken.Index
		a.ConditionField, categorical = lookupField(a.Words, i-windowBefore, i+windowAfter+1, i, false)
	}
	if a.ConditionField == "" {
		anchor := 0
		if a.conditionToken != nil {
			anchor = a.conditionToken.Index
		}
		a.ConditionField, categorical = lookupField(a.Words, 0, len(a.Words), anchor, true)
		a.FieldFromText = a.ConditionField != ""
	}

	if a.conditionToken != nil {
		v := a.conditionToken.Value
		a.conditionValue = &v
		return
	}
	// categorical terms imply "at least one" unless a date stands where a
	// magnitude would be
	if categorical && !a.HasDate {
		v := 1.0
		a.conditionValue = &v
		a.valueDefaulted = true
	}
}

// lookupField returns the dictionary match nearest to anchor within
// words[lo:hi]. With excludeBase it skips salary words used as an action base.
func lookupField(words []string, lo, hi, anchor int, excludeBase bool) (string, bool) {
	lo, hi = clampRange(lo, hi, len(words))
	best := -1.0
	var found *fieldEntry
	for j := lo; j < hi; j++ {
		for e := range fieldDictionary {
			entry := &fieldDictionary[e]
			if !anyPhraseAt(words, j, entry.terms) {
				continue
			}
			if len(entry.requires) > 0 && !containsAny(words, lo, hi, entry.requires) {
				continue
			}
			if excludeBase && entry.path == "contract.basicSalary" && j > 0 && anyPhraseAt(words, j-1, salaryBaseMarkers) {
				continue
			}
			if d := distance(anchor, j); best < 0 || d < best {
				best, found = d, entry
			}
			break
		}
	}
	if found == nil {
		return "", false
	}
	return found.path, found.categorical
}

func (a *Analysis) resolveOperator() {
	if a.ConditionField == "" {
		return
	}
	lo, hi, anchor := 0, len(a.Words), 0
	if a.conditionToken != nil {
		anchor = a.conditionToken.Index
		lo, hi = anchor-windowBefore, anchor+windowAfter+1
	}
	lo, hi = clampRange(lo, hi, len(a.Words))

	best := -1.0
	for j := lo; j < hi; j++ {
		for _, entry := range operatorDictionary {
			if anyPhraseAt(a.Words, j, entry.terms) {
				if d := distance(anchor, j); best < 0 || d < best {
					best, a.Operator = d, entry.op
				}
				break
			}
		}
	}
	if a.Operator == "" {
		a.Operator = rule.OpGreaterThanOrEqual
		a.opDefaulted = true
	}
}

func (a *Analysis) resolveAction() {
	anchor := -1
	if a.actionToken != nil {
		anchor = a.actionToken.Index
	}

	best := -1.0
	for j := range a.Words {
		for _, entry := range actionDictionary {
			if !anyPhraseAt(a.Words, j, entry.terms) {
				continue
			}
			d := float64(j)
			if anchor >= 0 {
				d = distance(anchor, j)
			}
			if best < 0 || d < best {
				best, a.ActionType = d, entry.typ
			}
			break
		}
	}

	if a.ActionType != "" && a.actionToken == nil {
		for k := range a.Tokens {
			if a.Tokens[k].Role == RoleNone {
				a.actionToken = &a.Tokens[k]
				break
			}
		}
	}
}

// confidence scores the numeric pairing, 0-100.
func (a *Analysis) confidence(understood bool) int {
	if !understood {
		return 0
	}
	score := 100
	if a.tieBreak {
		score -= 15
	}
	if a.positional {
		score -= 25
	}
	if a.FieldFromText {
		score -= 15
	}
	if a.opDefaulted {
		score -= 10
	}
	if a.valueDefaulted {
		score -= 10
	}
	return max(score, 0)
}

func (p *Parser) build(a *Analysis) *rule.PolicyRule {
	r := rule.New()
	r.Trigger.Event = inferTrigger(a.Words)

	conditionOK := a.ConditionField != "" && a.conditionValue != nil
	actionOK := a.ActionType != "" && a.actionToken != nil

	if conditionOK {
		r.Conditions = append(r.Conditions, rule.Condition{
			Field:    a.ConditionField,
			Operator: a.Operator,
			Value:    *a.conditionValue,
		})
	}
	if actionOK {
		r.Actions = append(r.Actions, rule.Action{
			Type:      a.ActionType,
			ValueType: valueType(a),
			Value:     a.actionToken.Value,
		})
	}

	r.Understood = conditionOK && actionOK
	r.Explanation = explain(a, conditionOK, actionOK)
	r.Confidence = rule.IntPtr(a.confidence(r.Understood))
	if !r.Understood && conditionOK != actionOK {
		r.ClarificationNeeded = rule.StringPtr(r.Explanation)
	}
	return r
}

func valueType(a *Analysis) rule.ValueType {
	t := a.actionToken
	if t.Percent {
		return rule.ValuePercentage
	}
	if a.ActionType == rule.ActionDeductFromPayroll && t.Index+1 < len(a.Words) && anyPhraseAt(a.Words, t.Index+1, dayUnits) {
		return rule.ValueDays
	}
	return rule.ValueFixed
}

func inferTrigger(words []string) rule.TriggerEvent {
	for _, entry := range triggerDictionary {
		if containsAny(words, 0, len(words), entry.terms) {
			return entry.event
		}
	}
	return rule.TriggerPayroll
}

func explain(a *Analysis, conditionOK, actionOK bool) string {
	if !actionOK {
		missing := "no action was recognized"
		if a.ActionType != "" {
			missing = fmt.Sprintf("action %s has no amount", a.ActionType)
		}
		if conditionOK {
			return fmt.Sprintf("recognized condition %s %s %s but %s",
				a.ConditionField, a.Operator, formatNumber(*a.conditionValue), missing)
		}
		return "could not resolve a condition and " + missing
	}

	action := fmt.Sprintf("%s of %s", a.ActionType, formatNumber(a.actionToken.Value))
	if conditionOK {
		return fmt.Sprintf("%s when %s %s %s", action, a.ConditionField, a.Operator, formatNumber(*a.conditionValue))
	}

	var sb strings.Builder
	sb.WriteString("recognized action " + action)
	if a.HasConnective {
		sb.WriteString(" but the condition is ambiguous")
	} else {
		sb.WriteString(" but no condition was found")
	}
	switch {
	case a.ConditionField != "" && a.HasDate:
		sb.WriteString(fmt.Sprintf(": field %s has no value, a date appears where a number was expected", a.ConditionField))
	case a.ConditionField != "":
		sb.WriteString(fmt.Sprintf(": field %s has no value", a.ConditionField))
	case a.conditionToken != nil:
		sb.WriteString(fmt.Sprintf(": value %s matches no known field", formatNumber(a.conditionToken.Value)))
	case a.HasDate:
		sb.WriteString(": a date appears where a number was expected")
	}
	return sb.String()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
