package feasibility

// Readiness is the tri-state execution verdict.
type Readiness string

const (
	ReadinessReady    Readiness = "READY"
	ReadinessPartial  Readiness = "PARTIAL"
	ReadinessNotReady Readiness = "NOT_READY"
)

// Priority ranks a missing field.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Reasons attached to missing fields.
const (
	ReasonNotFound   = "not found"
	ReasonFormula    = "not found (used in formula)"
	ReasonQueryTable = "dynamic query table not found"
	ReasonQueryField = "dynamic query field not found"
)

// Result is the feasibility report for one rule.
type Result struct {
	IsExecutable    bool                `json:"isExecutable"`
	AvailableFields []FieldAvailability `json:"availableFields"`
	MissingFields   []MissingField      `json:"missingFields"`
	Summary         Summary             `json:"summary"`
	Recommendations []string            `json:"recommendations"`
	Warnings        []string            `json:"warnings"`
}

// FieldAvailability describes a referenced field that resolved.
type FieldAvailability struct {
	Field    string `json:"field"`
	Source   string `json:"source"`
	DataType string `json:"dataType"`
	Exists   bool   `json:"exists"`
	HasData  bool   `json:"hasData"`
}

// MissingField describes a referenced field that did not resolve.
type MissingField struct {
	Field      string   `json:"field"`
	Reason     string   `json:"reason"`
	Suggestion string   `json:"suggestion"`
	Priority   Priority `json:"priority"`
}

// Summary aggregates the report.
type Summary struct {
	TotalConditions     int       `json:"totalConditions"`
	SatisfiedConditions int       `json:"satisfiedConditions"`
	MissingConditions   int       `json:"missingConditions"`
	ExecutionReadiness  Readiness `json:"executionReadiness"`
	ConfidenceScore     int       `json:"confidenceScore"`
}
