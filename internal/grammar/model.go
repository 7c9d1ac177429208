package grammar

import "strings"

// DefaultChance is the selection weight of an item without a `{N%}` tag.
const DefaultChance = 1.0

// Amount bounds for the `$amount` directive.
const (
	MinAmount = 1
	MaxAmount = 50
)

// Tags holds the per-item annotations parsed from a trailing `{...}` suffix.
type Tags struct {
	// Chance is the relative selection weight. Always positive.
	Chance float64
	// Attrs maps a lowercase attribute name to an alternate text template.
	Attrs map[string]string
}

// Item is one candidate text template within a List.
type Item struct {
	Text string
	Tags Tags
}

// NewItem returns an item with default tags.
func NewItem(text string) *Item {
	return &Item{Text: text, Tags: Tags{Chance: DefaultChance, Attrs: map[string]string{}}}
}

// Weight returns the item's selection weight, falling back to DefaultChance
// for zero-value items.
func (it *Item) Weight() float64 {
	if it.Tags.Chance <= 0 {
		return DefaultChance
	}
	return it.Tags.Chance
}

// Attr returns the attribute template stored under name, if any.
func (it *Item) Attr(name string) (string, bool) {
	if it.Tags.Attrs == nil {
		return "", false
	}
	v, ok := it.Tags.Attrs[strings.ToLower(name)]
	return v, ok
}

// List is a named, ordered collection of items.
type List struct {
	Name  string // lowercase
	Root  bool
	Items []*Item
}

// Metadata holds the document-level settings declared with `$key: value`
// directives and boolean toggles.
type Metadata struct {
	Name        string
	Author      string
	Description string
	Picture     string
	Button      string
	SeedText    string
	Amount      int
	ForceUnique bool
	AllRoots    bool
	// Includes records `$include` references. They are never resolved here.
	Includes []string
}

// DefaultMetadata returns the settings in effect before any directive is read.
func DefaultMetadata() Metadata {
	return Metadata{
		Name:        "Untitled",
		Author:      "anonymous",
		Button:      "Generate",
		Amount:      1,
		ForceUnique: true,
	}
}

// RuleSet is a parsed grammar: lists keyed by lowercase name, their
// declaration order, and the document metadata.
type RuleSet struct {
	Meta  Metadata
	order []string
	lists map[string]*List
}

// NewRuleSet returns an empty rule set with default metadata.
func NewRuleSet() *RuleSet {
	return &RuleSet{
		Meta:  DefaultMetadata(),
		lists: make(map[string]*List),
	}
}

// Lookup finds a list by case-insensitive name.
func (rs *RuleSet) Lookup(name string) (*List, bool) {
	l, ok := rs.lists[strings.ToLower(name)]
	return l, ok
}

// Names returns list names in declaration order.
func (rs *RuleSet) Names() []string {
	out := make([]string, len(rs.order))
	copy(out, rs.order)
	return out
}

// Len returns the number of declared lists.
func (rs *RuleSet) Len() int {
	return len(rs.order)
}

// Last returns the most recently declared list, or nil if there is none.
func (rs *RuleSet) Last() *List {
	if len(rs.order) == 0 {
		return nil
	}
	return rs.lists[rs.order[len(rs.order)-1]]
}

// declare returns the list registered under name, creating it if needed.
func (rs *RuleSet) declare(name string) (*List, bool) {
	if l, ok := rs.lists[name]; ok {
		return l, true
	}
	l := &List{Name: name}
	rs.lists[name] = l
	rs.order = append(rs.order, name)
	return l, false
}

// Rebind installs l under name without touching the declaration order and
// returns a function that puts back whatever was bound before. The restore
// function must be called exactly once.
func (rs *RuleSet) Rebind(name string, l *List) (restore func()) {
	key := strings.ToLower(name)
	prev, had := rs.lists[key]
	rs.lists[key] = l
	return func() {
		if had {
			rs.lists[key] = prev
		} else {
			delete(rs.lists, key)
		}
	}
}
