package utils

import "strings"

// NormalizeOption maps an optional size/color selection to its canonical
// form: absent, null-ish and empty values all collapse to "". A line added
// without a size and a line added with an empty size are the same line.
func NormalizeOption(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	// Legacy frontends serialized missing selections literally
	if lower == "null" || lower == "undefined" {
		return ""
	}
	return trimmed
}
