// Package rule defines the typed representation of a compiled HR policy.
//
// A PolicyRule is produced by either the remote or the dictionary parser,
// augmented by the post-processor and read by the feasibility analyzer. It
// marshals to the camelCase JSON shape consumed by rule storage and
// execution components:
//
//	{
//	  "understood": true,
//	  "trigger": {"event": "ATTENDANCE"},
//	  "conditions": [{"field": "attendance.currentPeriod.lateDays", "operator": "GREATER_THAN", "value": 3}],
//	  "conditionLogic": "ALL",
//	  "actions": [{"type": "DEDUCT_FROM_PAYROLL", "valueType": "FIXED", "value": 50}],
//	  "scope": {"type": "ALL_EMPLOYEES"}
//	}
//
// Every enum has a Valid method. Validate reports structural problems, most
// importantly that an understood rule always carries at least one action.
package rule
