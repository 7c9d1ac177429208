package engine

import (
	"github.com/vk/stringalong/internal/grammar"
	"github.com/vk/stringalong/internal/rng"
)

type bindingKind int

const (
	textBinding bindingKind = iota
	itemBinding
)

// binding is a value stored under an identifier: either resolved text or
// the item it was picked from.
type binding struct {
	kind bindingKind
	text string
	item *grammar.Item
}

// genContext is the mutable state of a single output.
type genContext struct {
	rnd    rng.Source
	seed   rng.Seed
	ids    map[string]binding
	used   map[string]struct{}
	depth  int
	unique bool
}

func newContext(src rng.Source, seed rng.Seed, unique bool) *genContext {
	return &genContext{
		rnd:    src,
		seed:   seed,
		ids:    make(map[string]binding),
		used:   make(map[string]struct{}),
		unique: unique,
	}
}

func (c *genContext) bindText(name, text string) {
	c.ids[name] = binding{kind: textBinding, text: text}
}

func (c *genContext) bindItem(name string, item *grammar.Item) {
	c.ids[name] = binding{kind: itemBinding, item: item}
}

func (c *genContext) lookup(name string) (binding, bool) {
	b, ok := c.ids[name]
	return b, ok
}

func (c *genContext) clearIDs() {
	clear(c.ids)
}

func (c *genContext) markUsed(text string) {
	c.used[text] = struct{}{}
}

func (c *genContext) isUsed(text string) bool {
	_, ok := c.used[text]
	return ok
}
