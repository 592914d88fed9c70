// Package filter implements the heuristic pre-filter: a pure, deterministic
// predicate that rejects titles which are obviously not human articles by
// surface form alone, before any network call is spent on them.
package filter

import (
	"strings"

	"wikihumanpath/internal/rules"
)

// Filter rejects candidates by surface form and returns the survivors in
// their original order. It is pure: no network, no mutation of candidates
// or of the rule tables.
func Filter(candidates []string, tables *rules.Tables) []string {
	out := make([]string, 0, len(candidates))
	for _, title := range candidates {
		if admissible(title, tables) {
			out = append(out, title)
		}
	}
	return out
}

func admissible(title string, tables *rules.Tables) bool {
	if title == "" {
		return false
	}
	if isASCIIDigit(title[0]) {
		return false
	}
	if strings.HasPrefix(title, "List of") {
		return false
	}

	lower := strings.ToLower(title)
	for _, pattern := range tables.MetaPatterns {
		if strings.Contains(lower, pattern) {
			return false
		}
	}
	return true
}

func isASCIIDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
