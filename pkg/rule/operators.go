package rule

import "strings"

// operatorAliases maps symbols and words to canonical operators. Keys are
// compared after lowercasing and trimming.
var operatorAliases = map[string]Operator{
	">":                     OpGreaterThan,
	"gt":                    OpGreaterThan,
	"greater_than":          OpGreaterThan,
	"greater":               OpGreaterThan,
	"more_than":             OpGreaterThan,
	"أكبر":                  OpGreaterThan,
	"أكثر":                  OpGreaterThan,
	"يتجاوز":                OpGreaterThan,
	"<":                     OpLessThan,
	"lt":                    OpLessThan,
	"less_than":             OpLessThan,
	"less":                  OpLessThan,
	"أقل":                   OpLessThan,
	">=":                    OpGreaterThanOrEqual,
	"gte":                   OpGreaterThanOrEqual,
	"greater_than_or_equal": OpGreaterThanOrEqual,
	"at_least":              OpGreaterThanOrEqual,
	"على الأقل":             OpGreaterThanOrEqual,
	"<=":                    OpLessThanOrEqual,
	"lte":                   OpLessThanOrEqual,
	"less_than_or_equal":    OpLessThanOrEqual,
	"at_most":               OpLessThanOrEqual,
	"على الأكثر":            OpLessThanOrEqual,
	"=":                     OpEquals,
	"==":                    OpEquals,
	"===":                   OpEquals,
	"eq":                    OpEquals,
	"equals":                OpEquals,
	"equal":                 OpEquals,
	"يساوي":                 OpEquals,
	"!=":                    OpNotEquals,
	"!==":                   OpNotEquals,
	"<>":                    OpNotEquals,
	"ne":                    OpNotEquals,
	"not_equals":            OpNotEquals,
	"لا يساوي":              OpNotEquals,
	"contains":              OpContains,
	"يحتوي":                 OpContains,
	"in":                    OpIn,
	"ضمن":                   OpIn,
	"between":               OpBetween,
	"بين":                   OpBetween,
}

// NormalizeOperator converts an operator alias to its canonical form.
// The second result is false when s is not recognized.
func NormalizeOperator(s string) (Operator, bool) {
	key := strings.TrimSpace(s)
	if op := Operator(strings.ToUpper(key)); op.Valid() {
		return op, true
	}
	key = strings.ToLower(key)
	if op, ok := operatorAliases[key]; ok {
		return op, true
	}
	if op, ok := operatorAliases[strings.ReplaceAll(key, " ", "_")]; ok {
		return op, true
	}
	return "", false
}

// NormalizeScope converts scope aliases like "ALL" to a canonical scope type.
func NormalizeScope(s string) (ScopeType, bool) {
	key := strings.ToUpper(strings.TrimSpace(s))
	switch key {
	case "ALL", "ALL_EMPLOYEE", "EVERYONE", "COMPANY", "":
		return ScopeAllEmployees, true
	case "DEPT":
		return ScopeDepartment, true
	case "JOB", "TITLE", "POSITION":
		return ScopeJobTitle, true
	}
	st := ScopeType(key)
	return st, st.Valid()
}
