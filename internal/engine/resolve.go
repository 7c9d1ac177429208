package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vk/stringalong/internal/grammar"
)

const lineBreak = "<br>"

var rangeRegex = regexp.MustCompile(`^(-?\d+)\s*-\s*(-?\d+)$`)

// refKind is what a tag's primary reference resolves to. Kinds are tried in
// declaration order.
type refKind int

const (
	refIdentifier refKind = iota
	refList
	refRange
	refLineBreak
	refAuthor
	refTitle
	refClear
	refSeed
	refDebug
	refLiteral
)

// reference is a classified primary reference.
type reference struct {
	kind   refKind
	name   string
	list   *grammar.List
	lo, hi int
}

func (e *Engine) classify(tag string) reference {
	lower := strings.ToLower(tag)

	if strings.HasPrefix(tag, "#") {
		return reference{kind: refIdentifier, name: tag[1:]}
	}
	if l, ok := e.rules.Lookup(lower); ok {
		return reference{kind: refList, name: lower, list: l}
	}
	if m := rangeRegex.FindStringSubmatch(tag); m != nil {
		lo, errLo := strconv.Atoi(m[1])
		hi, errHi := strconv.Atoi(m[2])
		if errLo == nil && errHi == nil {
			return reference{kind: refRange, lo: min(lo, hi), hi: max(lo, hi)}
		}
	}

	switch {
	case tag == "/":
		return reference{kind: refLineBreak}
	case lower == "author's name":
		return reference{kind: refAuthor}
	case lower == "game's name":
		return reference{kind: refTitle}
	case tag == "*CLEAR*":
		return reference{kind: refClear}
	case lower == "seed":
		return reference{kind: refSeed}
	case tag == "*DEBUG ON*", tag == "*DEBUG OFF*":
		return reference{kind: refDebug}
	}
	return reference{kind: refLiteral, name: tag}
}

// attributeName resolves the `as` modifier. `as #id` reads the attribute name
// from an identifier bound to text.
func attributeName(as string, ctx *genContext) string {
	if strings.HasPrefix(as, "#") {
		if b, ok := ctx.lookup(as[1:]); ok && b.kind == textBinding {
			return strings.ToLower(b.text)
		}
	}
	return strings.ToLower(as)
}

// itemText evaluates the text an item contributes, honoring `as`/`or`.
func (e *Engine) itemText(item *grammar.Item, attr string, m *modifiers, ctx *genContext) string {
	if attr != "" {
		if alt, ok := item.Attr(attr); ok {
			return e.eval(alt, ctx)
		}
		if m.hasFallback {
			return e.eval(m.fallback, ctx)
		}
	}
	return e.eval(item.Text, ctx)
}

// resolve produces the raw text of a primary reference, repeated per the
// `x` modifier, and the item it came from, if any.
func (e *Engine) resolve(ref reference, m *modifiers, ctx *genContext) (string, *grammar.Item) {
	var out strings.Builder
	var obj *grammar.Item
	attr := ""
	if m.as != "" {
		attr = attributeName(m.as, ctx)
	}

	switch ref.kind {
	case refIdentifier:
		b, ok := ctx.lookup(ref.name)
		if !ok {
			e.warnf("unknown identifier: #%s", ref.name)
			return "", nil
		}
		for i := 0; i < m.times; i++ {
			if b.kind == textBinding {
				out.WriteString(b.text)
				continue
			}
			obj = b.item
			out.WriteString(e.itemText(b.item, attr, m, ctx))
		}

	case refList:
		for i := 0; i < m.times; i++ {
			item := pickFromList(ref.list, ctx, m.unique)
			if item == nil {
				continue
			}
			if m.id != "" && isSingleRef(item.Text) {
				if inner := e.resolveRef(item.Text, ctx); inner != nil {
					item = inner
				}
			}
			out.WriteString(e.itemText(item, attr, m, ctx))
			if m.unique && item.Text != "" {
				ctx.markUsed(item.Text)
			}
			obj = item
		}

	case refRange:
		out.WriteString(strconv.Itoa(intBetween(ctx, ref.lo, ref.hi)))
	case refLineBreak:
		out.WriteString(lineBreak)
	case refAuthor:
		out.WriteString(e.rules.Meta.Author)
	case refTitle:
		out.WriteString(e.rules.Meta.Name)
	case refClear:
		ctx.clearIDs()
	case refSeed:
		out.WriteString(ctx.seed.String())
	case refDebug:
	default:
		out.WriteString("[" + ref.name + "]")
	}
	return out.String(), obj
}

// resolveRef evaluates a single bracketed reference and returns the deepest
// concrete item it picked.
func (e *Engine) resolveRef(text string, ctx *genContext) *grammar.Item {
	t := strings.TrimSpace(text)
	_, item := e.evalTag(t[1:len(t)-1], ctx)
	return item
}
