package dictionary

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// isLatin reports whether the term starts with a Latin letter. Latin terms
// match at word starts; Arabic terms match anywhere inside a word so that
// attached prefixes (ال, ب, و) do not hide them.
func isLatin(term string) bool {
	r, _ := utf8.DecodeRuneInString(term)
	return r < unicode.MaxASCII
}

// wordMatches reports whether a single word matches a single-word term.
func wordMatches(word, term string) bool {
	if isLatin(term) {
		return strings.HasPrefix(word, term)
	}
	return strings.Contains(word, term)
}

// phraseAt reports whether term (one or more words) matches words starting at j.
func phraseAt(words []string, j int, term string) bool {
	parts := strings.Fields(term)
	if j+len(parts) > len(words) {
		return false
	}
	for k, p := range parts {
		if k == len(parts)-1 {
			if !wordMatches(words[j+k], p) {
				return false
			}
			continue
		}
		// inner words must match exactly, except Arabic which may carry prefixes
		if isLatin(p) && words[j+k] != p {
			return false
		}
		if !isLatin(p) && !strings.Contains(words[j+k], p) {
			return false
		}
	}
	return true
}

// anyPhraseAt returns the first of terms matching at j.
func anyPhraseAt(words []string, j int, terms []string) bool {
	for _, t := range terms {
		if phraseAt(words, j, t) {
			return true
		}
	}
	return false
}

// containsAny reports whether any term matches anywhere in words[lo:hi].
func containsAny(words []string, lo, hi int, terms []string) bool {
	lo, hi = clampRange(lo, hi, len(words))
	for j := lo; j < hi; j++ {
		if anyPhraseAt(words, j, terms) {
			return true
		}
	}
	return false
}

func clampRange(lo, hi, n int) (int, int) {
	return max(lo, 0), min(hi, n)
}

// distance weights positions after the anchor slightly higher so that a cue
// preceding a number wins a tie against one following it.
func distance(anchor, j int) float64 {
	if j < anchor {
		return float64(anchor - j)
	}
	return float64(j-anchor) + 0.5
}
