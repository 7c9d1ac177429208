package engine

import (
	"strings"

	"github.com/vk/stringalong/internal/grammar"
)

// charList is the list name each character is bound to while mapping.
const charList = "_"

// mapEach feeds every character of text through the tag tmpl, with the
// character available as [_]. The previous binding of _ is restored on
// return.
func (e *Engine) mapEach(text, tmpl string, ctx *genContext) string {
	item := grammar.NewItem("")
	restore := e.rules.Rebind(charList, &grammar.List{Name: charList, Items: []*grammar.Item{item}})
	defer restore()

	var out strings.Builder
	for _, r := range text {
		item.Text = string(r)
		s, _ := e.evalTag(tmpl, ctx)
		out.WriteString(s)
	}
	return out.String()
}
