// Package strings provides string-slice normalization helpers.
package strings

import "strings"

// NormalizeList trims whitespace from each element and drops empties and
// duplicates, preserving first-occurrence order. Used for comma-separated
// configuration lists such as broker addresses.
func NormalizeList(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
