// Package fingerprint derives near-duplicate detection keys from article text.
package fingerprint

import "strings"

const prefixLen = 200

// Fingerprint returns a stable duplicate-detection key for article content:
// whitespace runs collapsed to single spaces, trimmed, lowercased, first 200
// characters. Two articles sharing a lead are treated as the same story even
// when trailing boilerplate differs.
func Fingerprint(content string) string {
	normalized := strings.Join(strings.Fields(content), " ")
	normalized = strings.ToLower(normalized)
	if len(normalized) > prefixLen {
		normalized = normalized[:prefixLen]
	}
	return normalized
}
