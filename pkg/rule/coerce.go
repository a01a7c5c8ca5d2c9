package rule

import (
	"fmt"
	"strconv"
	"strings"

	rerrors "mercator-hq/nlpolicy/pkg/rule/errors"
)

// Coerce converts an untyped JSON tree into a PolicyRule. Unknown enum
// values fall back to defaults where one exists; conditions and actions with
// unrecognized operators or types are dropped. Every adjustment is reported
// in the returned list as a coercion note, which is informational.
func Coerce(raw map[string]any) (*PolicyRule, *rerrors.ErrorList) {
	notes := rerrors.NewErrorList()
	r := New()

	r.Understood = asBool(raw["understood"])
	r.Explanation = asString(raw["explanation"])
	if s := asString(raw["clarificationNeeded"]); s != "" {
		r.ClarificationNeeded = StringPtr(s)
	}

	if t, ok := raw["trigger"].(map[string]any); ok {
		ev := TriggerEvent(strings.ToUpper(asString(t["event"])))
		switch {
		case ev.Valid():
			r.Trigger.Event = ev
		case ev == "":
		default:
			notes.AddError(rerrors.ErrorTypeCoercion, fmt.Sprintf("unknown trigger event %q, using CUSTOM", ev), "trigger.event")
			r.Trigger.Event = TriggerCustom
		}
		r.Trigger.SubEvent = asString(t["subEvent"])
	}

	if logic := strings.ToUpper(asString(raw["conditionLogic"])); logic == string(LogicAny) || logic == "OR" {
		r.ConditionLogic = LogicAny
	}

	for i, item := range asSlice(raw["conditions"]) {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		loc := fmt.Sprintf("conditions[%d]", i)
		field := asString(m["field"])
		op, ok := NormalizeOperator(asString(m["operator"]))
		if field == "" || !ok {
			notes.AddError(rerrors.ErrorTypeCoercion, fmt.Sprintf("dropped condition with field %q operator %q", field, asString(m["operator"])), loc)
			continue
		}
		r.Conditions = append(r.Conditions, Condition{
			Field:       field,
			Operator:    op,
			Value:       m["value"],
			Aggregation: asString(m["aggregation"]),
			Period:      asString(m["period"]),
		})
	}

	for i, item := range asSlice(raw["actions"]) {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		loc := fmt.Sprintf("actions[%d]", i)
		at := ActionType(strings.ToUpper(asString(m["type"])))
		if !at.Valid() {
			notes.AddError(rerrors.ErrorTypeCoercion, fmt.Sprintf("dropped action with unknown type %q", at), loc+".type")
			continue
		}
		vt := ValueType(strings.ToUpper(asString(m["valueType"])))
		if !vt.Valid() {
			if vt != "" {
				notes.AddError(rerrors.ErrorTypeCoercion, fmt.Sprintf("unknown value type %q, using FIXED", vt), loc+".valueType")
			}
			vt = ValueFixed
		}
		r.Actions = append(r.Actions, Action{
			Type:          at,
			ValueType:     vt,
			Value:         m["value"],
			Base:          asString(m["base"]),
			ComponentCode: asString(m["componentCode"]),
			Description:   asString(m["description"]),
		})
	}

	if s, ok := raw["scope"].(map[string]any); ok {
		st, ok := NormalizeScope(asString(s["type"]))
		if !ok {
			notes.AddError(rerrors.ErrorTypeCoercion, fmt.Sprintf("unknown scope type %q, using ALL_EMPLOYEES", asString(s["type"])), "scope.type")
			st = ScopeAllEmployees
		}
		r.Scope = Scope{Type: st, TargetID: asString(s["targetId"]), TargetName: asString(s["targetName"])}
	}

	if dr, ok := raw["dateRange"].(map[string]any); ok {
		r.DateRange = &DateRange{
			Type:  strings.ToUpper(asString(dr["type"])),
			Start: firstString(dr, "start", "startDate"),
			End:   firstString(dr, "end", "endDate"),
		}
	}
	if n, ok := asInt(raw["lookbackMonths"]); ok {
		r.LookbackMonths = IntPtr(n)
	}
	r.ApplicableDepartments = asStrings(raw["applicableDepartments"])
	r.ApplicableJobTitles = asStrings(raw["applicableJobTitles"])

	if dq, ok := raw["dynamicQuery"].(map[string]any); ok {
		r.DynamicQuery = coerceDynamicQuery(dq, notes)
	}

	if r.Understood && len(r.Actions) == 0 {
		notes.AddError(rerrors.ErrorTypeCoercion, "rule marked understood without actions, marking not understood", "understood")
		r.Understood = false
	}

	return r, notes
}

func coerceDynamicQuery(m map[string]any, notes *rerrors.ErrorList) *DynamicQuery {
	dq := &DynamicQuery{
		Table:       asString(m["table"]),
		TargetField: asString(m["targetField"]),
		Description: asString(m["description"]),
		Where:       []Where{},
	}

	dq.Type = QueryType(strings.ToUpper(asString(m["type"])))
	if !dq.Type.Valid() {
		dq.Type = QueryCustom
	}
	dq.Operation = Operation(strings.ToUpper(asString(m["operation"])))
	if !dq.Operation.Valid() {
		dq.Operation = OperationCount
	}

	for i, item := range asSlice(m["where"]) {
		w, ok := item.(map[string]any)
		if !ok {
			continue
		}
		op, ok := NormalizeOperator(asString(w["operator"]))
		field := asString(w["field"])
		if !ok || field == "" {
			notes.AddError(rerrors.ErrorTypeCoercion, fmt.Sprintf("dropped where entry with field %q", field), fmt.Sprintf("dynamicQuery.where[%d]", i))
			continue
		}
		dq.Where = append(dq.Where, Where{Field: field, Operator: op, Value: w["value"]})
	}

	if dq.Table == "" && len(dq.Where) == 0 {
		return nil
	}
	return dq
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// firstString returns the first non-empty string among keys.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := asString(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	}
	return false
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := asString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
