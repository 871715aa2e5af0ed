package config

import "strings"

// ParseTags splits a comma- or semicolon-separated tag string into a
// deduplicated list, preserving first-seen order.
func ParseTags(s string) []string {
	if s == "" {
		return nil
	}

	seen := make(map[string]bool)
	var tags []string
	for _, raw := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		tag := strings.TrimSpace(raw)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}
