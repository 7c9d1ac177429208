// Package textcase detects and reapplies simple casing patterns.
package textcase

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Pattern is the casing shape of a word or phrase.
type Pattern int

const (
	// Lower means "no forced casing"; Apply leaves text unchanged.
	Lower Pattern = iota
	// Capitalized means the first letter is upper case.
	Capitalized
	// Upper means every letter is upper case.
	Upper
)

func (p Pattern) String() string {
	switch p {
	case Capitalized:
		return "capitalized"
	case Upper:
		return "upper"
	default:
		return "lower"
	}
}

// minorWords stay lower case in title case unless they lead the phrase.
var minorWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "of": {}, "in": {}, "on": {}, "and": {},
	"with": {}, "to": {}, "for": {}, "but": {}, "or": {}, "nor": {}, "at": {},
	"by": {}, "so": {}, "yet": {},
}

// Detect returns the casing pattern of s.
func Detect(s string) Pattern {
	if s == "" {
		return Lower
	}
	if strings.ToUpper(s) == s && strings.ToLower(s) != s {
		return Upper
	}
	r, _ := utf8.DecodeRuneInString(s)
	if unicode.IsUpper(r) {
		return Capitalized
	}
	return Lower
}

// Apply forces s into pattern p.
func Apply(s string, p Pattern) string {
	switch p {
	case Upper:
		return strings.ToUpper(s)
	case Capitalized:
		return Capitalize(s)
	default:
		return s
	}
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Title capitalizes every space-separated word except minor words after the
// first position.
func Title(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if _, minor := minorWords[strings.ToLower(w)]; i > 0 && minor {
			continue
		}
		words[i] = Capitalize(w)
	}
	return strings.Join(words, " ")
}
