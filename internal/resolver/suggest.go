package resolver

import (
	"sort"
	"strings"
)

// MaxSuggestions caps how many candidates Suggest returns.
const MaxSuggestions = 3

// maxDistance is the largest edit distance still considered a typo.
const maxDistance = 2

// Suggest returns up to MaxSuggestions candidates that look like input.
// A candidate matches when it shares a case-insensitive prefix with input or
// is within a small edit distance of it. Closer matches come first; ties keep
// the candidates' original order.
func Suggest(input string, candidates []string) []string {
	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return nil
	}

	type scored struct {
		value string
		score int
		index int
	}

	var matches []scored
	seen := make(map[string]bool)
	for i, candidate := range candidates {
		if candidate == "" || seen[candidate] || candidate == input {
			continue
		}
		lower := strings.ToLower(candidate)

		score := -1
		switch {
		case lower == needle:
			score = 0
		case strings.HasPrefix(lower, needle) || strings.HasPrefix(needle, lower):
			score = 1
		default:
			if d := distance(needle, lower); d <= maxDistance {
				score = 1 + d
			}
		}
		if score < 0 {
			continue
		}
		seen[candidate] = true
		matches = append(matches, scored{value: candidate, score: score, index: i})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score < matches[j].score
		}
		return matches[i].index < matches[j].index
	})

	if len(matches) > MaxSuggestions {
		matches = matches[:MaxSuggestions]
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.value)
	}
	return out
}

// distance is the Levenshtein distance between a and b, counted in runes.
func distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
