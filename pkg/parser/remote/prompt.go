package remote

import (
	"fmt"
	"strings"

	"mercator-hq/nlpolicy/pkg/feasibility"
	"mercator-hq/nlpolicy/pkg/rule"
)

const preamble = `You compile human-resources and payroll policies written in natural language
(mostly Saudi/Egyptian Arabic, sometimes English) into executable JSON rules.

Understand temporal context ("new employee" = employee.tenure.months < 6,
"after one year" = employee.tenure.years >= 1, "probation" = contract.isProbation = true),
counting ("more than 3 times" = GREATER_THAN 3), per-unit calculations
("for every hour above X" = FORMULA "MAX(field - X, 0) * amount") and compound
conditions (one entry in conditions per clause).`

const rules = `Rules:
1. Use FORMULA for per-unit or derived amounts and reference field paths inside the formula.
2. Put every clause of a compound condition in its own conditions entry.
3. Monthly policies use trigger.event PAYROLL.
4. Prefer the field paths listed above. When the policy needs data none of them
   covers (a specific date, a clock time, a per-day hour range), add a dynamicQuery
   against a schema table and leave conditions empty.
5. conditionLogic is ALL when every condition must hold and ANY when one suffices.
6. lookbackMonths is set when the policy says "in the last N months".
7. Set clarificationNeeded when a criterion is vague instead of guessing.
8. Reply with a single JSON object and nothing else.`

const userTemplate = `Compile the following policy to JSON:

"%s"

Reply with JSON only, shaped like:
{
  "understood": true,
  "trigger": { "event": "...", "subEvent": "..." },
  "conditions": [{ "field": "...", "operator": "GREATER_THAN", "value": 0 }],
  "conditionLogic": "ALL",
  "lookbackMonths": null,
  "actions": [{ "type": "ADD_TO_PAYROLL", "valueType": "FIXED", "value": 0, "description": "..." }],
  "scope": { "type": "ALL_EMPLOYEES", "targetName": null },
  "explanation": "...",
  "clarificationNeeded": null,
  "dateRange": { "type": "SPECIFIC_DATE", "startDate": "2026-01-01", "endDate": null },
  "dynamicQuery": {
    "type": "DATE_SPECIFIC",
    "table": "Attendance",
    "where": [{ "field": "date", "operator": "EQUALS", "value": "2026-01-07" }],
    "operation": "EXISTS",
    "description": "..."
  }
}`

type example struct {
	title string
	text  string
	json  string
}

var examples = []example{
	{
		title: "compound condition with a formula",
		text:  "الموظف الجديد (أقل من 6 شهور) لو تأخر أكتر من 3 مرات يتخصم 50 ريال لكل مرة",
		json: `{"understood":true,"trigger":{"event":"PAYROLL"},
 "conditions":[{"field":"employee.tenure.months","operator":"LESS_THAN","value":6},
  {"field":"attendance.currentPeriod.lateDays","operator":"GREATER_THAN","value":3}],
 "actions":[{"type":"DEDUCT_FROM_PAYROLL","valueType":"FORMULA","value":"MAX(attendance.currentPeriod.lateDays - 3, 0) * 50"}],
 "scope":{"type":"ALL_EMPLOYEES"},"explanation":"new employees late more than 3 times lose 50 per extra late day"}`,
	},
	{
		title: "simple condition, department scope",
		text:  "القسم اللي حضوره فوق 90% كل الموظفين فيه ياخدو بونص 300 ريال",
		json: `{"understood":true,"trigger":{"event":"PAYROLL"},
 "conditions":[{"field":"department.departmentAttendance","operator":"GREATER_THAN","value":90}],
 "actions":[{"type":"ADD_TO_PAYROLL","valueType":"FIXED","value":300,"description":"department attendance bonus"}],
 "scope":{"type":"DEPARTMENT"},"explanation":"departments above 90% attendance earn 300 per employee"}`,
	},
	{
		title: "percentage of basic salary",
		text:  "الموظف السعودي ياخد بدل دعم بنسبة 5% من راتبه الأساسي",
		json: `{"understood":true,"trigger":{"event":"PAYROLL"},
 "conditions":[{"field":"employee.isSaudi","operator":"EQUALS","value":true}],
 "actions":[{"type":"ADD_TO_PAYROLL","valueType":"PERCENTAGE","value":5,"base":"BASIC","componentCode":"SAUDI_SUPPORT"}],
 "scope":{"type":"ALL_EMPLOYEES"},"explanation":"5% of basic salary for Saudi employees"}`,
	},
	{
		title: "custody event",
		text:  "لو الموظف رجع العهدة متأخر أكتر من 3 أيام يتخصم 100 ريال",
		json: `{"understood":true,"trigger":{"event":"CUSTODY","subEvent":"RETURN_LATE"},
 "conditions":[{"field":"custody.avgReturnDelay","operator":"GREATER_THAN","value":3}],
 "actions":[{"type":"DEDUCT_FROM_PAYROLL","valueType":"FIXED","value":100,"componentCode":"CUSTODY_PENALTY"}],
 "scope":{"type":"ALL_EMPLOYEES"},"explanation":"100 deducted when custody is returned more than 3 days late"}`,
	},
	{
		title: "tenure formula",
		text:  "كل سنة خدمة الموظف ياخد علاوة 200 ريال شهرياً",
		json: `{"understood":true,"trigger":{"event":"PAYROLL"},
 "conditions":[{"field":"employee.tenure.years","operator":"GREATER_THAN","value":0}],
 "actions":[{"type":"ADD_TO_PAYROLL","valueType":"FORMULA","value":"employee.tenure.years * 200","componentCode":"TENURE_BONUS"}],
 "scope":{"type":"ALL_EMPLOYEES"},"explanation":"200 per month for every year of service"}`,
	},
	{
		title: "vague criterion needs clarification",
		text:  "قسم المبيعات لو حققوا التارجت كل واحد ياخد 1000 ريال",
		json: `{"understood":true,"trigger":{"event":"PAYROLL"},"conditions":[],
 "actions":[{"type":"ADD_TO_PAYROLL","valueType":"FIXED","value":1000,"componentCode":"SALES_TARGET_BONUS"}],
 "scope":{"type":"DEPARTMENT","targetName":"المبيعات"},"explanation":"1000 per sales employee when the target is met",
 "clarificationNeeded":"which achievement percentage counts as meeting the target?"}`,
	},
	{
		title: "specific date and time need a dynamic query",
		text:  "أي موظف يحضر يوم 7-1-2026 الساعة 9 صباحاً يأخذ 100 ريال",
		json: `{"understood":true,"trigger":{"event":"PAYROLL"},"conditions":[],
 "actions":[{"type":"ADD_TO_PAYROLL","valueType":"FIXED","value":100}],
 "scope":{"type":"ALL_EMPLOYEES"},"explanation":"100 for checking in on 2026-01-07 by 09:00",
 "dynamicQuery":{"type":"DATE_SPECIFIC","table":"Attendance",
  "where":[{"field":"date","operator":"EQUALS","value":"2026-01-07"},{"field":"checkIn","operator":"LESS_THAN_OR_EQUAL","value":"09:00:00"}],
  "operation":"EXISTS","description":"attendance on the given date and time"}}`,
	},
	{
		title: "hour range counts matching days",
		text:  "الموظف اللي اشتغل من 3 ل 4 ساعات في أي يوم يتخصم 300 ريال",
		json: `{"understood":true,"trigger":{"event":"PAYROLL"},"conditions":[],
 "actions":[{"type":"DEDUCT_FROM_PAYROLL","valueType":"FIXED","value":300}],
 "scope":{"type":"ALL_EMPLOYEES"},"explanation":"300 deducted for a day with 3-4 working hours",
 "dynamicQuery":{"type":"COUNT_CONDITION","table":"Attendance",
  "where":[{"field":"workingHours","operator":"GREATER_THAN_OR_EQUAL","value":3},{"field":"workingHours","operator":"LESS_THAN_OR_EQUAL","value":4}],
  "operation":"COUNT","targetField":"id","description":"days with 3-4 working hours"}}`,
	},
}

// SystemInstruction renders the instruction sent with every request: the
// semantic field catalog, the enum vocabularies and the worked examples.
func SystemInstruction(fields []feasibility.SemanticField) string {
	var sb strings.Builder
	sb.WriteString(preamble)

	sb.WriteString("\n\nAvailable fields:\n")
	for _, f := range fields {
		fmt.Fprintf(&sb, "- %s: %s\n", f.Path, f.Description)
	}

	sb.WriteString("\n")
	writeVocabulary(&sb, "trigger.event", rule.TriggerEvents)
	writeVocabulary(&sb, "conditions[].operator", rule.Operators)
	fmt.Fprintf(&sb, "conditionLogic: %s | %s\n", rule.LogicAll, rule.LogicAny)
	writeVocabulary(&sb, "actions[].type", rule.ActionTypes)
	writeVocabulary(&sb, "actions[].valueType", rule.ValueTypes)
	sb.WriteString("actions[].base: BASIC | TOTAL\n")
	writeVocabulary(&sb, "scope.type", rule.ScopeTypes)
	writeVocabulary(&sb, "dynamicQuery.type", rule.QueryTypes)
	writeVocabulary(&sb, "dynamicQuery.operation", rule.Operations)

	sb.WriteString("\n")
	sb.WriteString(rules)

	sb.WriteString("\n\nExamples:\n")
	for i, ex := range examples {
		fmt.Fprintf(&sb, "\nExample %d (%s): %q\n%s\n", i+1, ex.title, ex.text, ex.json)
	}
	return sb.String()
}

func writeVocabulary[T ~string](sb *strings.Builder, name string, values []T) {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	fmt.Fprintf(sb, "%s: %s\n", name, strings.Join(parts, " | "))
}

// UserPrompt embeds the policy text in the reply-shape template.
func UserPrompt(text string) string {
	return fmt.Sprintf(userTemplate, strings.ReplaceAll(text, `"`, `\"`))
}
