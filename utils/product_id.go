package utils

import "strings"

// CanonicalProductID normalizes a product identifier to its canonical form.
// Historical data contains the same numeric id in two encodings
// (zero-padded "0042" and unpadded "42"); the canonical form is the
// unpadded one. Non-numeric ids are trimmed and returned as-is.
func CanonicalProductID(id string) string {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return ""
	}
	if !isDigits(trimmed) {
		return trimmed
	}
	unpadded := strings.TrimLeft(trimmed, "0")
	if unpadded == "" {
		// "000" is the zero id
		return "0"
	}
	return unpadded
}

// LegacyProductID returns the zero-padded encoding still present in old
// cart rows, or "" when the id has no legacy form (non-numeric, or
// already at legacy width).
func LegacyProductID(id string) string {
	canonical := CanonicalProductID(id)
	if canonical == "" || !isDigits(canonical) {
		return ""
	}
	if len(canonical) >= legacyIDWidth {
		return ""
	}
	return strings.Repeat("0", legacyIDWidth-len(canonical)) + canonical
}

// legacyIDWidth is the fixed width the old frontend used when it
// zero-padded numeric product ids
const legacyIDWidth = 4

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
