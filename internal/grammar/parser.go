package grammar

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	directivePrefix   = "$"
	rootMarker        = ">"
	appendMarker      = "+"
	includesFinalized = "$includes finalized"
	notePrefix        = "$[note]"
)

var (
	lineBreakRegex   = regexp.MustCompile(`\r?\n`)
	settingRegex     = regexp.MustCompile(`^(\w[\w\s]*?)\s*:\s*(.+)$`)
	includesRegex    = regexp.MustCompile(`(?i)\$includes finalized`)
	tagGroupSepRegex = regexp.MustCompile(`}\s*{`)
	leadingIntRegex  = regexp.MustCompile(`^\s*[+-]?\d+`)
	leadingNumRegex  = regexp.MustCompile(`^\s*[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// Parse builds a new RuleSet from a grammar document.
func Parse(doc string) *RuleSet {
	rs := NewRuleSet()
	rs.Parse(doc)
	return rs
}

// parseState is the line-to-line state of a single Parse call.
type parseState struct {
	current    *List
	commenting bool
	inIncludes bool
}

// Parse merges doc into the rule set. Lists declared again without the append
// marker are cleared first; `$+name` appends to an existing list. Settings
// found before a `$includes finalized` marker are treated as belonging to an
// included document and are not applied.
func (rs *RuleSet) Parse(doc string) {
	st := &parseState{inIncludes: includesRegex.MatchString(doc)}

	for _, raw := range lineBreakRegex.Split(doc, -1) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/*") {
			st.commenting = !strings.Contains(line, "*/")
			continue
		}
		if st.commenting {
			if strings.Contains(line, "*/") {
				st.commenting = false
			}
			continue
		}
		if strings.HasPrefix(line, "//") {
			continue
		}

		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, notePrefix) {
			continue
		}
		if lower == includesFinalized {
			st.inIncludes = false
			continue
		}

		if strings.HasPrefix(line, directivePrefix) {
			rs.parseDirective(st, line[len(directivePrefix):])
			continue
		}

		if st.current != nil {
			st.current.Items = append(st.current.Items, ParseItem(line))
		}
	}
}

func (rs *RuleSet) parseDirective(st *parseState, dir string) {
	if m := settingRegex.FindStringSubmatch(dir); m != nil {
		if !st.inIncludes {
			rs.applySetting(strings.ToLower(strings.TrimSpace(m[1])), m[2])
		}
		return
	}

	lower := strings.ToLower(dir)
	switch {
	case lower == "force unique":
		if !st.inIncludes {
			rs.Meta.ForceUnique = true
		}
		return
	case lower == "allow duplicates":
		if !st.inIncludes {
			rs.Meta.ForceUnique = false
		}
		return
	case lower == "all roots":
		if !st.inIncludes {
			rs.Meta.AllRoots = true
		}
		return
	case strings.HasPrefix(lower, "include "):
		rs.Meta.Includes = append(rs.Meta.Includes, strings.TrimSpace(dir[len("include "):]))
		return
	}

	name, isRoot, appending := parseDeclaration(dir)
	list, existed := rs.declare(name)
	if existed && !appending {
		list.Items = nil
	}
	if isRoot {
		list.Root = true
	}
	st.current = list
}

// parseDeclaration splits a list declaration into its lowercase name and the
// root/append markers.
func parseDeclaration(dir string) (name string, isRoot, appending bool) {
	name = dir
	if strings.Contains(name, rootMarker) {
		isRoot = true
		name = strings.ReplaceAll(name, rootMarker, "")
	}
	if strings.HasPrefix(name, appendMarker) {
		appending = true
		name = name[len(appendMarker):]
	}
	return strings.ToLower(strings.TrimSpace(name)), isRoot, appending
}

func (rs *RuleSet) applySetting(key, val string) {
	switch key {
	case "name":
		rs.Meta.Name = val
	case "author":
		rs.Meta.Author = val
	case "description":
		rs.Meta.Description = val
	case "picture":
		rs.Meta.Picture = val
	case "button":
		rs.Meta.Button = val
	case "seed text":
		rs.Meta.SeedText = val
	case "amount":
		n, ok := leadingInt(val)
		if !ok || n == 0 {
			n = 1
		}
		rs.Meta.Amount = clamp(n, MinAmount, MaxAmount)
	}
}

// ParseItem parses one item line, stripping and interpreting a trailing
// ` {...}{...}` tag suffix.
func ParseItem(line string) *Item {
	item := NewItem(line)
	if !strings.HasSuffix(line, "}") {
		return item
	}
	bi := strings.Index(line, " {")
	if bi < 0 {
		return item
	}

	body := tagGroupSepRegex.ReplaceAllString(line[bi+2:len(line)-1], "}{")
	for _, part := range strings.Split(body, "}{") {
		switch {
		case strings.HasSuffix(part, "%"):
			if pct, ok := leadingFloat(part); ok && pct > 0 {
				item.Tags.Chance = pct / 100
			}
		case strings.Contains(part, ":"):
			ci := strings.Index(part, ":")
			item.Tags.Attrs[strings.ToLower(part[:ci])] = part[ci+1:]
		}
	}
	item.Text = line[:bi]
	return item
}

// leadingInt reads an integer prefix the way lenient number parsing does:
// "12 items" yields 12.
func leadingInt(s string) (int, bool) {
	m := leadingIntRegex.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(m))
	if err != nil {
		return 0, false
	}
	return n, true
}

func leadingFloat(s string) (float64, bool) {
	m := leadingNumRegex.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func clamp(n, lo, hi int) int {
	return max(lo, min(hi, n))
}
