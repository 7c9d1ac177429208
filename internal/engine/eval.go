package engine

import (
	"strconv"
	"strings"

	"github.com/vk/stringalong/internal/grammar"
	"github.com/vk/stringalong/internal/rng"
	"github.com/vk/stringalong/internal/textcase"
)

// eval copies text to the output, replacing every top-level bracketed tag
// with its evaluation. Nested brackets belong to the enclosing tag.
func (e *Engine) eval(text string, ctx *genContext) string {
	if text == "" {
		return ""
	}
	var out, tag strings.Builder
	inTag, depth := false, 0
	for _, r := range text {
		switch {
		case r == '[' && !inTag:
			inTag = true
			tag.Reset()
		case r == '[':
			depth++
			tag.WriteRune(r)
		case r == ']' && inTag && depth > 0:
			depth--
			tag.WriteRune(r)
		case r == ']' && inTag:
			s, _ := e.evalTag(tag.String(), ctx)
			out.WriteString(s)
			inTag = false
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

// evalTag evaluates one tag body under the nesting guard.
func (e *Engine) evalTag(raw string, ctx *genContext) (string, *grammar.Item) {
	ctx.depth++
	defer func() { ctx.depth-- }()
	if ctx.depth > e.maxNesting {
		e.warnf("max nesting exceeded, likely recursion in: %s", raw)
		return "", nil
	}
	return e.evalTagBody(raw, ctx)
}

func (e *Engine) evalTagBody(raw string, ctx *genContext) (string, *grammar.Item) {
	if !strings.Contains(raw, ",%") {
		if options := splitTopLevel(raw, '|'); len(options) > 1 {
			return e.evalAlternation(options, ctx), nil
		}
	}

	tokens := splitTopLevel(raw, ',')
	tag := tokens[0]
	tagCase := impliedCase(tag)
	tag, m := parseModifiers(tag, tokens[1:], ctx)

	out, obj := e.resolve(e.classify(tag), &m, ctx)

	for i := len(m.templates) - 1; i >= 0; i-- {
		out = strings.ReplaceAll(out, "%"+strconv.Itoa(i+1), e.eval(m.templates[i], ctx))
	}

	cased := false
	if m.id != "" {
		switch {
		case m.written:
			out = m.applyCasing(out, tagCase)
			cased = true
			ctx.bindText(m.id, out)
		case obj != nil:
			ctx.bindItem(m.id, obj)
		default:
			ctx.bindText(m.id, out)
		}
	}

	out = m.part.slice(out)
	if !cased {
		out = m.applyCasing(out, tagCase)
	}
	if m.eachList != "" {
		out = e.mapEach(Repair(out), m.eachList, ctx)
	}
	if m.compress {
		out = strings.ReplaceAll(out, " ", "")
	}
	if m.hidden {
		out = ""
	}
	return out, obj
}

// evalAlternation picks one inline alternative and evaluates it.
func (e *Engine) evalAlternation(options []string, ctx *genContext) string {
	result := e.eval(pickText(options, ctx), ctx)
	if ctx.unique && result != "" {
		ctx.markUsed(result)
	}
	return result
}

// impliedCase is the casing a tag asks for through its own spelling, read
// from its last word: [Animal] capitalizes, [ANIMAL] shouts.
func impliedCase(tag string) textcase.Pattern {
	last := tag
	if i := strings.LastIndexByte(tag, ' '); i >= 0 && i < len(tag)-1 {
		last = tag[i+1:]
	}
	return textcase.Detect(last)
}

func intBetween(ctx *genContext, lo, hi int) int {
	return rng.Intn(ctx.rnd, lo, hi)
}
