package schema

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

const (
	// SimilarityThreshold is the minimum normalized edit-distance ratio for a
	// field to be suggested.
	SimilarityThreshold = 0.6

	maxSuggestions = 5
	containScore   = 2.0
)

type scoredField struct {
	path  string
	score float64
}

// SuggestSimilarFields ranks available fields by similarity to path.
// Substring containment ranks first, then fields whose edit-distance ratio
// exceeds SimilarityThreshold. At most five suggestions are returned.
func (c *Catalog) SuggestSimilarFields(path string) []string {
	if c == nil || path == "" {
		return nil
	}
	query := strings.ToLower(path)
	queryField := lastSegment(query)

	var matches []scoredField
	for _, candidate := range c.AvailableFields {
		cand := strings.ToLower(candidate)
		candField := lastSegment(cand)

		if containsEither(cand, query) || (len(queryField) >= 3 && containsEither(candField, queryField)) {
			matches = append(matches, scoredField{path: candidate, score: containScore - lengthPenalty(candField, queryField)})
			continue
		}

		score := max(ratio(query, cand), ratio(queryField, candField))
		if score > SimilarityThreshold {
			matches = append(matches, scoredField{path: candidate, score: score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].path < matches[j].path
	})

	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.path
	}
	return out
}

// ratio returns 1 - distance/maxLen, in [0,1].
func ratio(a, b string) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1
	}
	score := 1.0 - float64(levenshtein.Distance(a, b, nil))/float64(maxLen)
	if score < 0 {
		return 0
	}
	return score
}

func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// lengthPenalty keeps containment matches ordered by closeness in length.
func lengthPenalty(a, b string) float64 {
	la, lb := len(a), len(b)
	if la == 0 && lb == 0 {
		return 0
	}
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	return float64(diff) / float64(max(la, lb)+1)
}

func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}
