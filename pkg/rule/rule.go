package rule

// PolicyRule is the compiled, typed representation of a natural-language policy.
type PolicyRule struct {
	Understood            bool           `json:"understood"`
	Trigger               Trigger        `json:"trigger"`
	Conditions            []Condition    `json:"conditions"`
	ConditionLogic        ConditionLogic `json:"conditionLogic"`
	Actions               []Action       `json:"actions"`
	Scope                 Scope          `json:"scope"`
	DateRange             *DateRange     `json:"dateRange,omitempty"`
	LookbackMonths        *int           `json:"lookbackMonths,omitempty"`
	ApplicableDepartments []string       `json:"applicableDepartments"`
	ApplicableJobTitles   []string       `json:"applicableJobTitles"`
	DynamicQuery          *DynamicQuery  `json:"dynamicQuery,omitempty"`
	Explanation           string         `json:"explanation"`
	ClarificationNeeded   *string        `json:"clarificationNeeded"`

	// Confidence is set by the dictionary parser only: how sure it is of the
	// numeric role pairing, 0-100. Remote rules leave it nil.
	Confidence *int `json:"confidence,omitempty"`
}

// Trigger names the event category that causes evaluation.
type Trigger struct {
	Event    TriggerEvent `json:"event"`
	SubEvent string       `json:"subEvent,omitempty"`
}

// Condition compares a semantic field against a value.
type Condition struct {
	Field       string   `json:"field"`
	Operator    Operator `json:"operator"`
	Value       any      `json:"value"`
	Aggregation string   `json:"aggregation,omitempty"`
	Period      string   `json:"period,omitempty"`
}

// Action is an effect applied when the conditions hold.
type Action struct {
	Type          ActionType `json:"type"`
	ValueType     ValueType  `json:"valueType"`
	Value         any        `json:"value"`
	Base          string     `json:"base,omitempty"`
	ComponentCode string     `json:"componentCode,omitempty"`
	Description   string     `json:"description,omitempty"`
}

// Scope is the population a rule applies to.
type Scope struct {
	Type       ScopeType `json:"type"`
	TargetID   string    `json:"targetId,omitempty"`
	TargetName string    `json:"targetName,omitempty"`
}

// DateRange bounds the evaluation window, ISO dates. Type is one of
// SPECIFIC_DATE, DATE_RANGE, MONTH or HIJRI_MONTH when the model supplies it.
type DateRange struct {
	Type  string `json:"type,omitempty"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// DynamicQuery is an ad-hoc data lookup for conditions no semantic field covers.
type DynamicQuery struct {
	Type        QueryType `json:"type"`
	Table       string    `json:"table"`
	Where       []Where   `json:"where"`
	Operation   Operation `json:"operation"`
	TargetField string    `json:"targetField,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Where is a single filter inside a dynamic query.
type Where struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// DynamicQueryPrefix prefixes condition fields mirrored from a dynamic query.
const DynamicQueryPrefix = "dynamicQuery."

// New returns an empty, not-understood rule with defaults applied.
func New() *PolicyRule {
	return &PolicyRule{
		Trigger:        Trigger{Event: TriggerPayroll},
		Conditions:     []Condition{},
		ConditionLogic: LogicAll,
		Actions:        []Action{},
		Scope:          Scope{Type: ScopeAllEmployees},
	}
}

// HasDynamicQuery reports whether the rule carries a dynamic query with at
// least one where entry.
func (r *PolicyRule) HasDynamicQuery() bool {
	return r.DynamicQuery != nil && len(r.DynamicQuery.Where) > 0
}

// Clone returns a deep copy of the rule. Condition and action values are
// copied by assignment; slices inside them are shared.
func (r *PolicyRule) Clone() *PolicyRule {
	if r == nil {
		return nil
	}
	out := *r
	out.Conditions = append([]Condition(nil), r.Conditions...)
	out.Actions = append([]Action(nil), r.Actions...)
	if r.ApplicableDepartments != nil {
		out.ApplicableDepartments = append([]string(nil), r.ApplicableDepartments...)
	}
	if r.ApplicableJobTitles != nil {
		out.ApplicableJobTitles = append([]string(nil), r.ApplicableJobTitles...)
	}
	if r.DateRange != nil {
		dr := *r.DateRange
		out.DateRange = &dr
	}
	if r.LookbackMonths != nil {
		n := *r.LookbackMonths
		out.LookbackMonths = &n
	}
	if r.ClarificationNeeded != nil {
		s := *r.ClarificationNeeded
		out.ClarificationNeeded = &s
	}
	if r.Confidence != nil {
		c := *r.Confidence
		out.Confidence = &c
	}
	if r.DynamicQuery != nil {
		dq := *r.DynamicQuery
		dq.Where = append([]Where(nil), r.DynamicQuery.Where...)
		out.DynamicQuery = &dq
	}
	return &out
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// IntPtr returns a pointer to n.
func IntPtr(n int) *int { return &n }
