package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("```[A-Za-z]*")

var (
	errNoJSON      = errors.New("no JSON object or array in response")
	errEmptyArray  = errors.New("response array is empty")
	errNotAnObject = errors.New("response is not a JSON object")
)

// extractJSON returns the first well-formed {...} or [...] span of s after
// removing markdown code fences. Brackets inside JSON strings are ignored.
// When no balanced span is valid JSON, the first balanced span is returned
// so decoding reports why it is malformed.
func extractJSON(s string) (string, error) {
	s = stripFences(s)

	var (
		firstBalanced string
		lastErr       error = errNoJSON
	)
	for from := 0; from < len(s); {
		rel := strings.IndexAny(s[from:], "{[")
		if rel < 0 {
			break
		}
		start := from + rel
		span, err := balancedSpan(s, start)
		switch {
		case err != nil:
			lastErr = err
		case json.Valid([]byte(span)):
			return span, nil
		case firstBalanced == "":
			firstBalanced = span
		}
		from = start + 1
	}
	if firstBalanced != "" {
		return firstBalanced, nil
	}
	return "", lastErr
}

// balancedSpan returns the bracket span of s opening at start.
func balancedSpan(s string, start int) (string, error) {
	var (
		stack    []byte
		inString bool
		escaped  bool
	)
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return "", fmt.Errorf("unbalanced %q at offset %d", c, i)
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", errNoJSON
}

// stripFences removes ``` and ```json markers wherever they appear.
func stripFences(s string) string {
	return fenceRe.ReplaceAllString(s, "")
}

// decodeObject decodes span into an untyped tree. A top-level array yields
// its first element, which must be an object.
func decodeObject(span string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(span), &v); err != nil {
		return nil, err
	}
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return nil, errEmptyArray
		}
		v = arr[0]
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotAnObject
	}
	return obj, nil
}
