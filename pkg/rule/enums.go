package rule

// TriggerEvent is the category of system event that causes a rule to be evaluated.
type TriggerEvent string

const (
	TriggerAttendance   TriggerEvent = "ATTENDANCE"
	TriggerLeave        TriggerEvent = "LEAVE"
	TriggerCustody      TriggerEvent = "CUSTODY"
	TriggerPayroll      TriggerEvent = "PAYROLL"
	TriggerAnniversary  TriggerEvent = "ANNIVERSARY"
	TriggerContract     TriggerEvent = "CONTRACT"
	TriggerDisciplinary TriggerEvent = "DISCIPLINARY"
	TriggerPerformance  TriggerEvent = "PERFORMANCE"
	TriggerCustom       TriggerEvent = "CUSTOM"
)

// TriggerEvents lists every trigger event in prompt order.
var TriggerEvents = []TriggerEvent{
	TriggerAttendance, TriggerLeave, TriggerCustody, TriggerPayroll, TriggerAnniversary,
	TriggerContract, TriggerDisciplinary, TriggerPerformance, TriggerCustom,
}

// Valid reports whether e is a known trigger event.
func (e TriggerEvent) Valid() bool {
	for _, v := range TriggerEvents {
		if v == e {
			return true
		}
	}
	return false
}

// Operator is a comparison applied between a field and a value.
type Operator string

const (
	OpEquals             Operator = "EQUALS"
	OpNotEquals          Operator = "NOT_EQUALS"
	OpGreaterThan        Operator = "GREATER_THAN"
	OpLessThan           Operator = "LESS_THAN"
	OpGreaterThanOrEqual Operator = "GREATER_THAN_OR_EQUAL"
	OpLessThanOrEqual    Operator = "LESS_THAN_OR_EQUAL"
	OpContains           Operator = "CONTAINS"
	OpIn                 Operator = "IN"
	OpBetween            Operator = "BETWEEN"
)

// Operators lists every operator in prompt order.
var Operators = []Operator{
	OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpGreaterThanOrEqual,
	OpLessThanOrEqual, OpContains, OpIn, OpBetween,
}

// Valid reports whether o is a canonical operator.
func (o Operator) Valid() bool {
	for _, v := range Operators {
		if v == o {
			return true
		}
	}
	return false
}

// ConditionLogic combines the conditions of a rule.
type ConditionLogic string

const (
	LogicAll ConditionLogic = "ALL" // AND
	LogicAny ConditionLogic = "ANY" // OR
)

// ActionType is the effect applied when a rule's conditions hold.
type ActionType string

const (
	ActionAddToPayroll      ActionType = "ADD_TO_PAYROLL"
	ActionDeductFromPayroll ActionType = "DEDUCT_FROM_PAYROLL"
	ActionSendNotification  ActionType = "SEND_NOTIFICATION"
	ActionAlertHR           ActionType = "ALERT_HR"
	ActionCreateRecord      ActionType = "CREATE_RECORD"
)

// ActionTypes lists every action type in prompt order.
var ActionTypes = []ActionType{
	ActionAddToPayroll, ActionDeductFromPayroll, ActionSendNotification, ActionAlertHR, ActionCreateRecord,
}

// Valid reports whether a is a known action type.
func (a ActionType) Valid() bool {
	for _, v := range ActionTypes {
		if v == a {
			return true
		}
	}
	return false
}

// ValueType says how an action's value is interpreted.
type ValueType string

const (
	ValueFixed      ValueType = "FIXED"
	ValuePercentage ValueType = "PERCENTAGE"
	ValueDays       ValueType = "DAYS"
	ValueFormula    ValueType = "FORMULA"
)

// ValueTypes lists every value type in prompt order.
var ValueTypes = []ValueType{ValueFixed, ValuePercentage, ValueDays, ValueFormula}

// Valid reports whether v is a known value type.
func (v ValueType) Valid() bool {
	for _, vt := range ValueTypes {
		if vt == v {
			return true
		}
	}
	return false
}

// ScopeType is the population a rule applies to.
type ScopeType string

const (
	ScopeAllEmployees ScopeType = "ALL_EMPLOYEES"
	ScopeEmployee     ScopeType = "EMPLOYEE"
	ScopeDepartment   ScopeType = "DEPARTMENT"
	ScopeBranch       ScopeType = "BRANCH"
	ScopeJobTitle     ScopeType = "JOB_TITLE"
)

// ScopeTypes lists every scope type in prompt order.
var ScopeTypes = []ScopeType{ScopeAllEmployees, ScopeEmployee, ScopeDepartment, ScopeBranch, ScopeJobTitle}

// Valid reports whether s is a known scope type.
func (s ScopeType) Valid() bool {
	for _, v := range ScopeTypes {
		if v == s {
			return true
		}
	}
	return false
}

// QueryType classifies a dynamic query.
type QueryType string

const (
	QueryDateSpecific   QueryType = "DATE_SPECIFIC"
	QueryTimeRange      QueryType = "TIME_RANGE"
	QueryCountCondition QueryType = "COUNT_CONDITION"
	QueryAggregate      QueryType = "AGGREGATE"
	QueryCustom         QueryType = "CUSTOM"
)

// QueryTypes lists every dynamic query type.
var QueryTypes = []QueryType{QueryDateSpecific, QueryTimeRange, QueryCountCondition, QueryAggregate, QueryCustom}

// Valid reports whether q is a known query type.
func (q QueryType) Valid() bool {
	for _, v := range QueryTypes {
		if v == q {
			return true
		}
	}
	return false
}

// Operation is the aggregate a dynamic query computes.
type Operation string

const (
	OperationCount  Operation = "COUNT"
	OperationSum    Operation = "SUM"
	OperationAvg    Operation = "AVG"
	OperationMax    Operation = "MAX"
	OperationMin    Operation = "MIN"
	OperationExists Operation = "EXISTS"
)

// Operations lists every dynamic query operation.
var Operations = []Operation{OperationCount, OperationSum, OperationAvg, OperationMax, OperationMin, OperationExists}

// Valid reports whether o is a known operation.
func (o Operation) Valid() bool {
	for _, v := range Operations {
		if v == o {
			return true
		}
	}
	return false
}
