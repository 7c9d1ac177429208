package engine

import (
	"github.com/vk/stringalong/internal/grammar"
	"github.com/vk/stringalong/internal/rng"
)

// pickWeighted draws one item with probability proportional to its weight.
// items must not be empty.
func pickWeighted(items []*grammar.Item, src rng.Source) *grammar.Item {
	var total float64
	for _, it := range items {
		total += it.Weight()
	}
	roll := src.Float64() * total
	for _, it := range items {
		roll -= it.Weight()
		if roll <= 0 {
			return it
		}
	}
	return items[len(items)-1]
}

// unusedItems filters out items whose text was already produced in this
// context. An exhausted pool falls back to every item.
func unusedItems(items []*grammar.Item, ctx *genContext) []*grammar.Item {
	pool := make([]*grammar.Item, 0, len(items))
	for _, it := range items {
		if !ctx.isUsed(it.Text) {
			pool = append(pool, it)
		}
	}
	if len(pool) == 0 {
		return items
	}
	return pool
}

// pickFromList selects an item of l, or nil when l has no items.
func pickFromList(l *grammar.List, ctx *genContext, unique bool) *grammar.Item {
	if len(l.Items) == 0 {
		return nil
	}
	pool := l.Items
	if unique {
		pool = unusedItems(pool, ctx)
	}
	return pickWeighted(pool, ctx.rnd)
}

// pickText chooses uniformly among inline alternatives.
func pickText(options []string, ctx *genContext) string {
	pool := options
	if ctx.unique {
		pool = make([]string, 0, len(options))
		for _, o := range options {
			if !ctx.isUsed(o) {
				pool = append(pool, o)
			}
		}
		if len(pool) == 0 {
			pool = options
		}
	}
	return pool[int(ctx.rnd.Float64()*float64(len(pool)))]
}
