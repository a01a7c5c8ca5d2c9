package schema

import "strings"

// categoryModels maps domain categories to the model names they cover.
var categoryModels = map[string][]string{
	"employee":     {"User", "Employee"},
	"attendance":   {"Attendance", "AttendanceRecord", "Shift"},
	"leave":        {"LeaveRequest", "LeaveBalance", "LeaveType"},
	"custody":      {"Custody", "CustodyAssignment", "CustodyReturn"},
	"payroll":      {"Contract", "Payroll", "PayrollRun", "SalaryComponent", "SalaryStructure"},
	"contract":     {"Contract"},
	"disciplinary": {"DisciplinaryCase", "Warning"},
	"performance":  {"PerformanceReview", "Goal"},
	"organization": {"Department", "Branch", "JobTitle", "Company"},
}

// Categories returns the known category names.
func Categories() []string {
	return []string{"attendance", "contract", "custody", "disciplinary", "employee", "leave", "organization", "payroll", "performance"}
}

// FieldsForCategory returns the available "Model.field" paths of every model
// in the category that exists in the catalog. Unknown categories return nil.
func (c *Catalog) FieldsForCategory(category string) []string {
	names, ok := categoryModels[strings.ToLower(strings.TrimSpace(category))]
	if !ok || c == nil {
		return nil
	}
	var out []string
	for _, name := range names {
		m, ok := c.Models[name]
		if !ok {
			continue
		}
		for _, f := range m.Fields {
			if !f.IsRelation {
				out = append(out, name+"."+f.Name)
			}
		}
	}
	return out
}
