// matcher.go
package main

import "strings"

// matchesQuery reports whether any whitespace-separated term of query is a
// case-insensitive substring of text. A single matching term is sufficient,
// even for multi-word queries. Callers must guard against an empty query:
// strings.Fields of an empty string yields no terms and the result is false,
// which differs from a single empty term matching everything.
func matchesQuery(text, query string) bool {
	lowerText := strings.ToLower(text)
	for _, term := range strings.Fields(strings.ToLower(query)) {
		if strings.Contains(lowerText, term) {
			return true
		}
	}
	return false
}
