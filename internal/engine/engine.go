package engine

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vk/stringalong/internal/grammar"
	"github.com/vk/stringalong/internal/rng"
)

// Batch size bounds for a single Generate call.
const (
	MinCount = 1
	MaxCount = 999
)

// DefaultMaxNesting bounds how deep tag evaluation may recurse.
const DefaultMaxNesting = 50

// ErrNoRootList is returned when there is no list to start generation from.
var ErrNoRootList = errors.New("no root list found")

// Options configures an Engine.
type Options struct {
	// MaxNesting is the recursion limit. Non-positive means DefaultMaxNesting.
	MaxNesting int
	// OnWarn receives non-fatal diagnostics. May be nil.
	OnWarn func(msg string)
}

// Engine holds a parsed rule set and generates text from it.
type Engine struct {
	rules      *grammar.RuleSet
	maxNesting int
	onWarn     func(string)
}

// New creates an engine and parses doc into it. doc may be empty.
func New(doc string, opts Options) *Engine {
	e := &Engine{
		rules:      grammar.NewRuleSet(),
		maxNesting: opts.MaxNesting,
		onWarn:     opts.OnWarn,
	}
	if e.maxNesting <= 0 {
		e.maxNesting = DefaultMaxNesting
	}
	if doc != "" {
		e.rules.Parse(doc)
	}
	return e
}

// Parse merges another grammar document into the engine's rule set.
func (e *Engine) Parse(doc string) {
	e.rules.Parse(doc)
}

// RuleSet exposes the parsed rules.
func (e *Engine) RuleSet() *grammar.RuleSet { return e.rules }

// Metadata returns the grammar's settings.
func (e *Engine) Metadata() grammar.Metadata { return e.rules.Meta }

// Request describes one batch of outputs.
type Request struct {
	// Count is the number of outputs. Non-positive means the grammar's
	// $amount setting.
	Count int
	// Seed makes the batch reproducible when set.
	Seed rng.Seed
	// Root names the starting list. Empty means the last declared list.
	Root string
	// Unique overrides the grammar's uniqueness policy when non-nil.
	Unique *bool
}

// Generate produces req.Count outputs. Each output is evaluated with a fresh
// context, repaired and trimmed.
func (e *Engine) Generate(req Request) ([]string, error) {
	root, err := e.root(req.Root)
	if err != nil {
		return nil, err
	}

	count := req.Count
	if count <= 0 {
		count = e.rules.Meta.Amount
	}
	count = clamp(count, MinCount, MaxCount)

	unique := e.rules.Meta.ForceUnique
	if req.Unique != nil {
		unique = *req.Unique
	}

	results := make([]string, 0, count)
	for i := 0; i < count; i++ {
		ctx := newContext(req.Seed.ForOutput(i), req.Seed, unique)
		var text string
		if item := pickFromList(root, ctx, unique); item != nil {
			text = e.eval(item.Text, ctx)
		}
		results = append(results, strings.TrimSpace(Repair(text)))
	}
	return results, nil
}

func (e *Engine) root(name string) (*grammar.List, error) {
	if name == "" {
		if l := e.rules.Last(); l != nil {
			return l, nil
		}
		return nil, errors.WithHint(ErrNoRootList, "declare at least one list with a $name line")
	}
	if l, ok := e.rules.Lookup(name); ok {
		return l, nil
	}
	return nil, errors.WithHintf(errors.Wrapf(ErrNoRootList, "list %q", name),
		"known roots: %s", strings.Join(e.Roots(), ", "))
}

// Roots lists the names that make sensible starting points: lists marked as
// roots (or every list under $all roots) plus the last declared list.
func (e *Engine) Roots() []string {
	var roots []string
	seen := make(map[string]bool)
	for _, name := range e.rules.Names() {
		l, _ := e.rules.Lookup(name)
		if l.Root || e.rules.Meta.AllRoots {
			roots = append(roots, name)
			seen[name] = true
		}
	}
	if last := e.rules.Last(); last != nil && !seen[last.Name] {
		roots = append(roots, last.Name)
	}
	return roots
}

func (e *Engine) warnf(format string, args ...any) {
	if e.onWarn != nil {
		e.onWarn(fmt.Sprintf(format, args...))
	}
}
