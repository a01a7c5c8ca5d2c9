// Package postprocess augments parsed rules with dynamic queries detected
// from explicit dates, times and hour ranges in the policy text.
package postprocess

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"mercator-hq/nlpolicy/internal/textutil"
	"mercator-hq/nlpolicy/pkg/rule"
)

// QueryTable is the model dynamic queries are synthesized against.
const QueryTable = "Attendance"

var (
	dateRe = regexp.MustCompile(`(\d{1,2})[-/](\d{1,2})[-/](\d{4})`)

	timeArRe = regexp.MustCompile(`(?:الساعة|الساعه|ساعة|ساعه)\s*(\d{1,2})(?::(\d{2}))?`)
	timeEnRe = regexp.MustCompile(`(?i)\bat\s+(?:hour\s+(\d{1,2})(?::(\d{2}))?|(\d{1,2})(?::(\d{2}))?\s*(am|pm|o'?clock)|(\d{1,2}):(\d{2})\b)`)

	rangeArRe = regexp.MustCompile(`(?:من\s*)?(\d+)\s*(?:ل|إلى|الى|-)\s*(\d+)\s*ساع`)
	rangeEnRe = regexp.MustCompile(`(?i)\bfrom\s+(\d+)\s*(?:to|-)\s*(\d+)\s*hours?\b`)
)

// Processor applies pattern detection after parsing.
type Processor struct {
	logger *slog.Logger
}

// New creates a processor. A nil logger uses the default logger.
func New(logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default().With("component", "postprocess")
	}
	return &Processor{logger: logger}
}

// Process returns a copy of r augmented from text. A dynamic query is only
// synthesized when r has none with where entries. Whenever the result has
// a dynamic query and no conditions, the where entries are mirrored into
// the conditions as dynamicQuery.<field>.
func (p *Processor) Process(text string, r *rule.PolicyRule) *rule.PolicyRule {
	out := r.Clone()
	if out == nil {
		out = rule.New()
	}

	if !out.HasDynamicQuery() {
		if dq := Detect(text); dq != nil {
			out.DynamicQuery = dq
			p.logger.Debug("synthesized dynamic query", "type", dq.Type, "description", dq.Description)
		}
	}

	if out.HasDynamicQuery() && len(out.Conditions) == 0 {
		for _, w := range out.DynamicQuery.Where {
			out.Conditions = append(out.Conditions, rule.Condition{
				Field:    rule.DynamicQueryPrefix + w.Field,
				Operator: w.Operator,
				Value:    w.Value,
			})
		}
		p.logger.Debug("mirrored dynamic query into conditions", "conditions", len(out.Conditions))
	}
	return out
}

// Detect scans text for an hour range, then dates and times. An hour range
// alone produces a COUNT_CONDITION query and suppresses date and time
// detection. It returns nil when nothing is found.
func Detect(text string) *rule.DynamicQuery {
	s := textutil.NormalizeDigits(text)
	dateSpans := dateRe.FindAllStringIndex(s, -1)

	if lo, hi, ok := findRange(s, dateSpans); ok {
		return &rule.DynamicQuery{
			Type:  rule.QueryCountCondition,
			Table: QueryTable,
			Where: []rule.Where{
				{Field: "workingHours", Operator: rule.OpGreaterThanOrEqual, Value: lo},
				{Field: "workingHours", Operator: rule.OpLessThanOrEqual, Value: hi},
			},
			Operation:   rule.OperationCount,
			TargetField: "id",
			Description: fmt.Sprintf("count days with %d-%d working hours", lo, hi),
		}
	}

	var where []rule.Where
	if date, ok := findDate(s); ok {
		where = append(where, rule.Where{Field: "date", Operator: rule.OpEquals, Value: date})
	}
	if tm, ok := findTime(s, dateSpans); ok {
		where = append(where, rule.Where{Field: "checkIn", Operator: rule.OpLessThanOrEqual, Value: tm})
	}
	if len(where) == 0 {
		return nil
	}

	parts := make([]string, len(where))
	for i, w := range where {
		parts[i] = fmt.Sprintf("%s %s %v", w.Field, w.Operator, w.Value)
	}
	return &rule.DynamicQuery{
		Type:        rule.QueryDateSpecific,
		Table:       QueryTable,
		Where:       where,
		Operation:   rule.OperationExists,
		Description: "attendance check: " + strings.Join(parts, " and "),
	}
}

// findDate normalizes the first D-M-YYYY or D/M/YYYY date to YYYY-MM-DD.
func findDate(s string) (string, bool) {
	m := dateRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return "", false
	}
	return fmt.Sprintf("%s-%02d-%02d", m[3], month, day), true
}

// findTime normalizes the first "at hour" time to HH:MM:SS.
func findTime(s string, dateSpans [][]int) (string, bool) {
	if m := timeArRe.FindStringSubmatchIndex(s); m != nil && !overlaps(m[0], m[1], dateSpans) {
		return formatTime(s[m[2]:m[3]], group(s, m, 2), "")
	}
	if m := timeEnRe.FindStringSubmatchIndex(s); m != nil && !overlaps(m[0], m[1], dateSpans) {
		if m[2] >= 0 {
			return formatTime(s[m[2]:m[3]], group(s, m, 2), "")
		}
		if m[6] >= 0 {
			return formatTime(s[m[6]:m[7]], group(s, m, 4), strings.ToLower(group(s, m, 5)))
		}
		return formatTime(group(s, m, 6), group(s, m, 7), "")
	}
	return "", false
}

// group returns submatch n, or "" when it did not participate.
func group(s string, m []int, n int) string {
	if 2*n+1 >= len(m) || m[2*n] < 0 {
		return ""
	}
	return s[m[2*n]:m[2*n+1]]
}

func formatTime(hourStr, minStr, meridiem string) (string, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return "", false
	}
	if meridiem == "pm" && hour < 12 {
		hour += 12
	}
	if meridiem == "am" && hour == 12 {
		hour = 0
	}
	minutes := 0
	if minStr != "" {
		minutes, _ = strconv.Atoi(minStr)
	}
	if hour > 23 || minutes > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d:00", hour, minutes), true
}

func findRange(s string, dateSpans [][]int) (int, int, bool) {
	for _, re := range []*regexp.Regexp{rangeEnRe, rangeArRe} {
		for _, m := range re.FindAllStringSubmatchIndex(s, -1) {
			if overlaps(m[2], m[5], dateSpans) {
				continue
			}
			lo, err1 := strconv.Atoi(s[m[2]:m[3]])
			hi, err2 := strconv.Atoi(s[m[4]:m[5]])
			if err1 != nil || err2 != nil {
				continue
			}
			return lo, hi, true
		}
	}
	return 0, 0, false
}

func overlaps(lo, hi int, spans [][]int) bool {
	for _, sp := range spans {
		if lo < sp[1] && sp[0] < hi {
			return true
		}
	}
	return false
}
