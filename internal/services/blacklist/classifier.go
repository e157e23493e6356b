// Package blacklist flags confession text against a community's term list.
//
// Matching is case-insensitive substring containment with no word-boundary
// awareness, so a term matches even inside a larger word. High recall, low
// precision: false positives land in the review queue where a human decides.
package blacklist

import "strings"

// Scan returns the configured terms found in text, in policy order, each at
// most once. Empty text or an empty term list never flags.
func Scan(text string, terms []string) []string {
	if text == "" || len(terms) == 0 {
		return nil
	}

	lower := strings.ToLower(text)
	matched := make([]string, 0)
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(term)) {
			matched = append(matched, term)
		}
	}
	if len(matched) == 0 {
		return nil
	}
	return matched
}
