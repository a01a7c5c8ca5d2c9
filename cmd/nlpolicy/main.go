// nlpolicy compiles natural-language HR policies into structured rules and
// checks them against the live data model.
//
// Usage:
//
//	# Compile a policy with the configured language model
//	nlpolicy compile "إذا تأخر الموظف أكثر من 3 أيام يتم خصم 100 ريال"
//
//	# Compile offline with the dictionary parser and show its reasoning
//	nlpolicy compile --offline --explain -f policies/lateness.txt
//
//	# Check an existing rule against the schema
//	nlpolicy analyze --rule rule.json --scope company-42
//
//	# List the fields policies can reference
//	nlpolicy fields --format yaml
//
//	# Recompile policy files as they are edited
//	nlpolicy watch policies/
//
//	# Expose metrics and health endpoints
//	nlpolicy serve-metrics
package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// API keys usually live in .env; a missing file is not an error
	_ = godotenv.Load()
	Execute()
}
