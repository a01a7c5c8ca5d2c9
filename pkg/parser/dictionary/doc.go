// Package dictionary implements the offline policy parser.
//
// The parser uses fixed Arabic and English vocabularies and positional
// heuristics. It finds numeric tokens (ignoring dates, times and bare
// years), classifies each as a condition or action magnitude by the nearest
// keyword, then resolves the condition field, operator and action type from
// keyword tables. It never fails and is deterministic:
//
//	r := dictionary.New().Parse("if salary is greater than 5000 give a bonus of 200")
//	// r.Conditions[0] = {contract.basicSalary GREATER_THAN 5000}
//	// r.Actions[0]    = {ADD_TO_PAYROLL FIXED 200}
//
// A rule is understood only when an action type, an action amount, a
// condition field and a condition value were all resolved. Otherwise the
// Explanation names what was recognized and what was not.
package dictionary
