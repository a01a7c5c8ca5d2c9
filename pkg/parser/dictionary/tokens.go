package dictionary

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"mercator-hq/nlpolicy/internal/textutil"
)

// Role is the classification of a numeric token.
type Role string

const (
	RoleNone      Role = "none"
	RoleCondition Role = "condition"
	RoleAction    Role = "action"
)

// Token is a numeric magnitude found in the policy text.
type Token struct {
	Raw     string  `json:"raw"`
	Value   float64 `json:"value"`
	Index   int     `json:"index"`
	Percent bool    `json:"percent,omitempty"`
	Role    Role    `json:"role"`

	// Reason says how the role was assigned.
	Reason string `json:"reason"`
}

const (
	windowBefore = 4
	windowAfter  = 5

	datePlaceholder = "<date>"
)

var (
	dateLikeRe = regexp.MustCompile(`\d{1,2}[-/]\d{1,2}(?:[-/]\d{2,4})?`)
	timeLikeRe = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
	numberRe   = regexp.MustCompile(`\d+(?:\.\d+)?`)

	// 5,000 and 5٬000 are one number.
	thousandsRe = regexp.MustCompile(`(\d{1,3})[,٬](\d{3})\b`)
)

const punctuation = ",;!?()[]{}\"'،؛؟«»"

func foldThousands(s string) string {
	for {
		folded := thousandsRe.ReplaceAllString(s, "$1$2")
		if folded == s {
			return s
		}
		s = folded
	}
}

// normalize lowercases, trims and converts digits. It reports whether a
// date-like pattern was present; such spans are replaced with a placeholder
// word so they are never read as magnitudes.
func normalize(text string) (words []string, hasDate bool) {
	s := strings.ToLower(strings.TrimSpace(textutil.NormalizeDigits(text)))
	s = foldThousands(s)

	if dateLikeRe.MatchString(s) {
		hasDate = true
		s = dateLikeRe.ReplaceAllString(s, " "+datePlaceholder+" ")
	}

	words = strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(punctuation, r)
	})
	for i, w := range words {
		trimmed := strings.TrimSuffix(w, ".")
		if d, ok := numberWords[trimmed]; ok {
			words[i] = d
		} else if trimmed != "" {
			words[i] = trimmed
		}
	}
	return words, hasDate
}

// extractTokens finds numeric tokens, skipping times and bare years.
func extractTokens(words []string) []Token {
	var tokens []Token
	for i, w := range words {
		if timeLikeRe.MatchString(w) {
			continue
		}
		raw := numberRe.FindString(w)
		if raw == "" {
			continue
		}
		if isYear(raw) {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		percent := strings.ContainsAny(w, "%٪")
		if !percent && i+1 < len(words) {
			percent = anyPhraseAt(words, i+1, percentMarkers)
		}
		tokens = append(tokens, Token{Raw: raw, Value: v, Index: i, Percent: percent, Role: RoleNone})
	}
	return tokens
}

func isYear(raw string) bool {
	if len(raw) != 4 {
		return false
	}
	n, err := strconv.Atoi(raw)
	return err == nil && n >= 1900 && n <= 2100
}

// nearestCue returns the weighted distance to the closest cue in the window
// around index i, or -1 when there is none.
func nearestCue(words []string, i int, cues []string) float64 {
	lo, hi := clampRange(i-windowBefore, i+windowAfter+1, len(words))
	best := -1.0
	for j := lo; j < hi; j++ {
		if j == i {
			continue
		}
		for _, cue := range cues {
			if wordMatches(words[j], cue) {
				if d := distance(i, j); best < 0 || d < best {
					best = d
				}
				break
			}
		}
	}
	return best
}

// classify assigns a role to every token. It reports whether a distance
// tie-break or the positional fallback was needed.
func classify(words []string, tokens []Token) (tieBreak, positional bool) {
	for k := range tokens {
		t := &tokens[k]
		a := nearestCue(words, t.Index, actionCues)
		c := nearestCue(words, t.Index, conditionCues)
		switch {
		case a >= 0 && c >= 0:
			tieBreak = true
			if a < c {
				t.Role, t.Reason = RoleAction, "nearest keyword is an action cue"
			} else {
				t.Role, t.Reason = RoleCondition, "nearest keyword is a condition cue"
			}
		case a >= 0:
			t.Role, t.Reason = RoleAction, "action cue nearby"
		case c >= 0:
			t.Role, t.Reason = RoleCondition, "condition cue nearby"
		}
	}

	var none []int
	for k := range tokens {
		if tokens[k].Role == RoleNone {
			none = append(none, k)
		}
	}
	if len(none) == 2 {
		positional = true
		tokens[none[0]].Role, tokens[none[0]].Reason = RoleCondition, "positional fallback (first)"
		tokens[none[1]].Role, tokens[none[1]].Reason = RoleAction, "positional fallback (second)"
	}
	return tieBreak, positional
}
