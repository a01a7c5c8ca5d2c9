// Package errors provides the validation error types used when checking
// compiled policy rules.
//
// Validation collects every problem it finds into an ErrorList rather than
// stopping at the first one, so a caller can show the administrator all
// issues with a rule at once:
//
//	errs := rule.Validate(r)
//	if errs.HasErrors() {
//	    for _, e := range errs.Errors {
//	        fmt.Println(e.Location, e.Message)
//	    }
//	}
package errors
