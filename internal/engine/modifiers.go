package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vk/stringalong/internal/rng"
	"github.com/vk/stringalong/internal/textcase"
)

// Repeat bounds for the `xN` / `xLO-HI` modifier.
const (
	minRepeat = 1
	maxRepeat = 50
)

var repeatRegex = regexp.MustCompile(`^x(\d+)(?:-(\d+))?$`)

type partSlice int

const (
	wholeText partSlice = iota
	firstPart
	middlePart
	lastPart
)

// modifiers is the parsed form of the comma-separated qualifiers of a tag.
type modifiers struct {
	times       int
	id          string
	templates   []string
	as          string
	fallback    string
	hasFallback bool
	hidden      bool
	unique      bool
	lower       bool
	title       bool
	caseMode    textcase.Pattern
	hasCaseMode bool
	compress    bool
	eachList    string
	written     bool
	part        partSlice
}

// parseModifiers interprets raw modifier tokens. Unrecognized tokens set an
// implicit casing taken from their own shape, which also recases ref.
func parseModifiers(ref string, tokens []string, ctx *genContext) (string, modifiers) {
	m := modifiers{times: 1, unique: ctx.unique}

	for _, raw := range tokens {
		tok := strings.TrimSpace(raw)
		if tok == "" {
			continue
		}
		if times, ok := parseRepeat(tok, ctx.rnd); ok {
			m.times = times
			continue
		}
		switch {
		case tok[0] == '#':
			m.id = tok[1:]
		case tok[0] == '%':
			m.templates = append(m.templates, tok[1:])
		case strings.HasPrefix(tok, "as "):
			m.as = strings.TrimSpace(tok[len("as "):])
		case strings.HasPrefix(tok, "or "):
			m.fallback = tok[len("or "):]
			m.hasFallback = true
		case strings.HasPrefix(tok, "each "):
			m.eachList = strings.TrimSpace(tok[len("each "):])
		case tok == "hidden":
			m.hidden = true
		case tok == "unique":
			m.unique = true
		case tok == "mundane":
			m.unique = false
		case tok == "title":
			m.title = true
		case tok == "upper":
			m.caseMode, m.hasCaseMode = textcase.Upper, true
		case tok == "lower":
			m.lower = true
		case tok == "compress":
			m.compress = true
		case tok == "written":
			m.written = true
		case tok == "first part":
			m.part = firstPart
		case tok == "middle part":
			m.part = middlePart
		case tok == "last part":
			m.part = lastPart
		default:
			m.caseMode, m.hasCaseMode = textcase.Detect(tok), true
			ref = textcase.Apply(ref, m.caseMode)
		}
	}
	return ref, m
}

// parseRepeat reads `xN` or `xLO-HI` and draws the repeat count.
func parseRepeat(tok string, src rng.Source) (int, bool) {
	match := repeatRegex.FindStringSubmatch(tok)
	if match == nil {
		return 0, false
	}
	lo, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	hi := lo
	if match[2] != "" {
		if n, err := strconv.Atoi(match[2]); err == nil && n != 0 {
			hi = n
		}
	}
	return clamp(rng.Intn(src, lo, hi), minRepeat, maxRepeat), true
}

// applyCasing applies explicit casing modifiers, falling back to the casing
// implied by the tag itself.
func (m *modifiers) applyCasing(s string, tagCase textcase.Pattern) string {
	switch {
	case m.lower:
		return strings.ToLower(s)
	case m.title:
		return textcase.Title(s)
	case m.hasCaseMode:
		return textcase.Apply(s, m.caseMode)
	default:
		return textcase.Apply(s, tagCase)
	}
}

// slice cuts s down to the requested third, counted in runes.
func (p partSlice) slice(s string) string {
	r := []rune(s)
	n := len(r)
	switch p {
	case firstPart:
		return string(r[:min(n, max(1, n/3))])
	case middlePart:
		start := n / 3
		return string(r[start:min(n, max(start+1, n*2/3))])
	case lastPart:
		return string(r[n*2/3:])
	default:
		return s
	}
}

func clamp(n, lo, hi int) int {
	return max(lo, min(hi, n))
}
