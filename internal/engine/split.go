package engine

import "strings"

// splitTopLevel splits s on sep, ignoring separators nested inside brackets.
func splitTopLevel(s string, sep rune) []string {
	var parts []string
	var cur strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '[':
			depth++
			cur.WriteRune(r)
		case r == ']':
			depth--
			cur.WriteRune(r)
		case r == sep && depth <= 0:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(parts, cur.String())
}

// isSingleRef reports whether text is exactly one balanced bracketed tag.
func isSingleRef(text string) bool {
	t := strings.TrimSpace(text)
	if len(t) < 3 || t[0] != '[' || t[len(t)-1] != ']' {
		return false
	}
	depth := 0
	for i := 0; i < len(t); i++ {
		switch t[i] {
		case '[':
			depth++
		case ']':
			depth--
		}
		if depth == 0 && i < len(t)-1 {
			return false
		}
	}
	return depth == 0
}
