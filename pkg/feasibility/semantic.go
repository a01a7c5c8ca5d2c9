package feasibility

import "sort"

// SemanticField maps a human-meaningful field path to a physical schema location.
type SemanticField struct {
	Path        string `json:"path" yaml:"path"`
	Model       string `json:"model" yaml:"model"`
	Field       string `json:"field" yaml:"field"`
	Description string `json:"description" yaml:"description"`
}

// Source returns the physical "Model.field" path.
func (s SemanticField) Source() string {
	return s.Model + "." + s.Field
}

var defaultSemanticFields = []SemanticField{
	// employee
	{"employee.tenure.months", "User", "createdAt", "months of service since hire date"},
	{"employee.tenure.years", "User", "createdAt", "years of service since hire date"},
	{"employee.department", "User", "departmentId", "department"},
	{"employee.branch", "User", "branchId", "branch"},
	{"employee.jobTitle", "User", "jobTitle", "job title"},
	{"employee.nationality", "User", "nationality", "nationality"},
	{"employee.isSaudi", "User", "nationality", "whether the employee is Saudi"},

	// contract
	{"contract.isProbation", "Contract", "isProbation", "on probation"},
	{"contract.basicSalary", "Contract", "basicSalary", "basic salary"},
	{"contract.totalSalary", "Contract", "totalSalary", "total salary including allowances"},

	// attendance
	{"attendance.currentPeriod.presentDays", "Attendance", "status", "days present"},
	{"attendance.currentPeriod.absentDays", "Attendance", "status", "days absent"},
	{"attendance.currentPeriod.lateDays", "Attendance", "lateMinutes", "days late"},
	{"attendance.currentPeriod.lateMinutes", "Attendance", "lateMinutes", "total minutes late"},
	{"attendance.currentPeriod.overtimeHours", "Attendance", "overtimeMinutes", "overtime hours"},
	{"attendance.currentPeriod.attendancePercentage", "Attendance", "status", "attendance percentage"},

	// leaves
	{"leaves.currentMonth.sickDays", "LeaveRequest", "leaveType", "sick leave days"},
	{"leaves.currentMonth.annualDays", "LeaveRequest", "leaveType", "annual leave days"},
	{"leaves.balance.annual", "LeaveBalance", "balance", "annual leave balance"},

	// custody
	{"custody.active", "CustodyAssignment", "status", "active custody items"},
	{"custody.avgReturnDelay", "CustodyReturn", "returnDate", "average custody return delay in days"},
	{"custody.damagedCount", "CustodyReturn", "conditionOnReturn", "damaged custody items"},
	{"custody.totalDamagedValue", "CustodyReturn", "replacementValue", "total value of damaged custody items"},

	// disciplinary
	{"disciplinary.activeWarnings", "DisciplinaryCase", "status", "active warnings"},
	{"disciplinary.activeCases", "DisciplinaryCase", "status", "active disciplinary cases"},

	// department
	{"department.departmentAttendance", "Attendance", "status", "department attendance percentage"},

	// performance
	{"performance.targetAchievement", "PerformanceReview", "rating", "target achievement percentage"},
	{"performance.lastRating", "PerformanceReview", "rating", "last performance rating"},
}

// SemanticMap resolves semantic field paths. It is read-only after construction.
type SemanticMap struct {
	fields map[string]SemanticField
	order  []string
}

// NewSemanticMap builds a map from entries; later entries override earlier
// ones with the same path.
func NewSemanticMap(entries ...[]SemanticField) *SemanticMap {
	m := &SemanticMap{fields: make(map[string]SemanticField)}
	for _, list := range entries {
		for _, f := range list {
			if _, seen := m.fields[f.Path]; !seen {
				m.order = append(m.order, f.Path)
			}
			m.fields[f.Path] = f
		}
	}
	return m
}

// DefaultSemanticMap returns the built-in HR semantic map.
func DefaultSemanticMap() *SemanticMap {
	return NewSemanticMap(defaultSemanticFields)
}

// Lookup returns the entry for path.
func (m *SemanticMap) Lookup(path string) (SemanticField, bool) {
	f, ok := m.fields[path]
	return f, ok
}

// Paths returns every semantic path in declaration order.
func (m *SemanticMap) Paths() []string {
	return append([]string(nil), m.order...)
}

// Fields returns every entry in declaration order.
func (m *SemanticMap) Fields() []SemanticField {
	out := make([]SemanticField, 0, len(m.order))
	for _, p := range m.order {
		out = append(out, m.fields[p])
	}
	return out
}

// Models returns the distinct physical models referenced, sorted.
func (m *SemanticMap) Models() []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range m.fields {
		if !seen[f.Model] {
			seen[f.Model] = true
			out = append(out, f.Model)
		}
	}
	sort.Strings(out)
	return out
}
