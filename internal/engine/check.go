package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vk/stringalong/internal/dag"
)

// Severity ranks a Diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diagnostic is a problem found by inspecting a grammar without generating.
type Diagnostic struct {
	Severity Severity
	List     string
	Message  string
}

func (d Diagnostic) String() string {
	if d.List == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: $%s: %s", d.Severity, d.List, d.Message)
}

// Check inspects the loaded lists and reports empty lists, lists no root can
// reach, and reference cycles. Recursion is legal, so cycles are reported as
// information only.
func (e *Engine) Check() ([]Diagnostic, error) {
	var out []Diagnostic
	names := e.rules.Names()
	if len(names) == 0 {
		return []Diagnostic{{Severity: SeverityWarning, Message: ErrNoRootList.Error()}}, nil
	}

	g := dag.New()
	for _, name := range names {
		g.AddNode(name)
	}
	for _, name := range names {
		l, _ := e.rules.Lookup(name)
		if len(l.Items) == 0 {
			out = append(out, Diagnostic{Severity: SeverityWarning, List: name, Message: "list has no items"})
		}
		refs := make(map[string]bool)
		for _, item := range l.Items {
			e.collectRefs(item.Text, refs)
			for _, attr := range item.Tags.Attrs {
				e.collectRefs(attr, refs)
			}
		}
		for _, ref := range sortedKeys(refs) {
			if ref == name {
				out = append(out, Diagnostic{Severity: SeverityInfo, List: name, Message: "list references itself"})
				continue
			}
			if err := g.AddDependency(name, ref); err != nil {
				return nil, errors.Wrapf(err, "failed to link list '%s'", name)
			}
		}
	}

	reachable := g.Reachable(e.Roots()...)
	for _, name := range names {
		if !slices.Contains(reachable, name) {
			out = append(out, Diagnostic{Severity: SeverityWarning, List: name, Message: "list is not reachable from any root"})
		}
	}

	if err := g.DetectCycles(); err != nil {
		out = append(out, Diagnostic{Severity: SeverityInfo, Message: "recursive lists: " + strings.TrimSuffix(err.Error(), ": "+dag.ErrCycle.Error())})
	}
	return out, nil
}

// collectRefs adds the names of every declared list referenced by a tag in
// text, including tags nested in modifiers and alternatives.
func (e *Engine) collectRefs(text string, refs map[string]bool) {
	for _, body := range topLevelTags(text) {
		var options []string
		if !strings.Contains(body, ",%") {
			options = splitTopLevel(body, '|')
		} else {
			options = []string{body}
		}
		if len(options) > 1 {
			for _, opt := range options {
				e.collectRefs(opt, refs)
			}
			continue
		}

		tokens := splitTopLevel(body, ',')
		e.addRef(tokens[0], refs)
		for _, tok := range tokens {
			tok = strings.TrimSpace(tok)
			if name, ok := strings.CutPrefix(tok, "each "); ok {
				e.addRef(name, refs)
			}
			e.collectRefs(tok, refs)
		}
	}
}

func (e *Engine) addRef(name string, refs map[string]bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == charList {
		return
	}
	if l, ok := e.rules.Lookup(name); ok {
		refs[l.Name] = true
	}
}

// topLevelTags returns the bodies of the outermost bracketed tags in text.
func topLevelTags(text string) []string {
	var tags []string
	var cur strings.Builder
	depth := 0
	for _, r := range text {
		switch {
		case r == '[':
			if depth > 0 {
				cur.WriteRune(r)
			}
			depth++
		case r == ']' && depth > 0:
			depth--
			if depth == 0 {
				tags = append(tags, cur.String())
				cur.Reset()
			} else {
				cur.WriteRune(r)
			}
		case depth > 0:
			cur.WriteRune(r)
		}
	}
	return tags
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
