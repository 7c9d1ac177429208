package engine

import (
	"strings"
	"unicode"

	"github.com/vk/stringalong/internal/plural"
	"github.com/vk/stringalong/internal/textcase"
)

// Repair resolves the markers that need to see finished text:
//
//	[a], [an]  the indefinite article matching the next letter
//	[s]        the plural of the word just before the marker
//	[ ]        a literal space
//
// Any other bracketed text is kept as is.
func Repair(text string) string {
	var out, tag strings.Builder
	inTag := false
	for i, r := range text {
		switch {
		case r == '[':
			if inTag {
				out.WriteByte('[')
				out.WriteString(tag.String())
			}
			inTag = true
			tag.Reset()
		case r == ']' && inTag:
			inTag = false
			body := tag.String()
			switch strings.ToLower(body) {
			case "a", "an":
				out.WriteString(article(body, text[i+1:]))
			case "s":
				s := out.String()
				out.Reset()
				out.WriteString(pluralizeLastWord(s))
			case " ":
				out.WriteByte(' ')
			default:
				out.WriteString("[" + body + "]")
			}
		case inTag:
			tag.WriteRune(r)
		default:
			out.WriteRune(r)
		}
	}
	if inTag {
		out.WriteByte('[')
		out.WriteString(tag.String())
	}
	return out.String()
}

// article picks "a" or "an" for the text following the marker, cased like
// the marker. Spaces and <markup> spans are skipped.
func article(marker, rest string) string {
	word := "a"
	if strings.ContainsRune("aeiou", nextLetter(rest)) {
		word = "an"
	}
	return textcase.Apply(word, textcase.Detect(marker))
}

func nextLetter(s string) rune {
	inMarkup := false
	for _, r := range s {
		switch {
		case inMarkup:
			inMarkup = r != '>'
		case r == '<':
			inMarkup = true
		case r != ' ':
			return unicode.ToLower(r)
		}
	}
	return 0
}

func pluralizeLastWord(s string) string {
	start := strings.LastIndexByte(s, ' ') + 1
	if start == len(s) {
		return s
	}
	return s[:start] + plural.Pluralize(s[start:])
}
