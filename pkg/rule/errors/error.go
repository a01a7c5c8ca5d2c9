package errors

import (
	"fmt"
	"strings"
)

// ErrorType categorizes a problem found while validating a compiled rule.
type ErrorType string

const (
	ErrorTypeStructural ErrorType = "structural" // Missing or malformed rule parts
	ErrorTypeSemantic   ErrorType = "semantic"   // Unknown enum value, bad field path
	ErrorTypeLimit      ErrorType = "limit"      // Size limits exceeded
	ErrorTypeCoercion   ErrorType = "coercion"   // Remote output could not be coerced
)

// Error is a single validation problem with the rule path where it occurred.
type Error struct {
	Type       ErrorType // Category of error
	Message    string    // Error message
	Location   string    // Rule path, e.g. "actions[0].type"
	Suggestion string    // Suggested fix (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s", e.Type, e.Message))
	if e.Location != "" {
		sb.WriteString(fmt.Sprintf(" (at %s)", e.Location))
	}
	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("; suggestion: %s", e.Suggestion))
	}

	return sb.String()
}

// ErrorList accumulates problems instead of failing on the first one.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*Error, 0),
	}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and adds a new error.
func (el *ErrorList) AddError(errType ErrorType, message, location string) {
	el.Add(&Error{
		Type:     errType,
		Message:  message,
		Location: location,
	})
}

// AddErrorWithSuggestion creates and adds a new error with a suggestion.
func (el *ErrorList) AddErrorWithSuggestion(errType ErrorType, message, location, suggestion string) {
	el.Add(&Error{
		Type:       errType,
		Message:    message,
		Location:   location,
		Suggestion: suggestion,
	})
}

// HasErrors returns true if the list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error implements the error interface.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("found %d problem(s):\n", el.Count()))
	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}

	return sb.String()
}

// ToError returns nil if the list is empty, otherwise the list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// Messages returns the plain error strings, in insertion order.
func (el *ErrorList) Messages() []string {
	out := make([]string, 0, len(el.Errors))
	for _, err := range el.Errors {
		out = append(out, err.Error())
	}
	return out
}

// HasErrorType returns true if the list contains at least one error of the given type.
func (el *ErrorList) HasErrorType(errType ErrorType) bool {
	for _, err := range el.Errors {
		if err.Type == errType {
			return true
		}
	}
	return false
}
