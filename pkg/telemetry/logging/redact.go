package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

var secretPatterns = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`sk-[A-Za-z0-9_-]{8,}`), "sk-***"},
	{regexp.MustCompile(`AIza[0-9A-Za-z_-]{20,}`), "AIza***"},
	{regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/-]+=*`), "Bearer ***"},
}

// sensitiveKeys are attribute names whose values are always masked.
var sensitiveKeys = map[string]bool{
	"api_key":       true,
	"apikey":        true,
	"authorization": true,
	"x-api-key":     true,
	"password":      true,
}

// Redact masks secrets inside s.
func Redact(s string) string {
	for _, p := range secretPatterns {
		s = p.re.ReplaceAllString(s, p.replacement)
	}
	return s
}

func redactAttr(_ []string, a slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, "***")
	}
	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, Redact(a.Value.String()))
	}
	return a
}
