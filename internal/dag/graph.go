package dag

import (
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrCycle is returned by DetectCycles when the graph is not acyclic.
var ErrCycle = errors.New("cycle detected")

// Graph is a set of vertices joined by "depends on" edges. It is safe for
// concurrent use.
type Graph struct {
	mu       sync.RWMutex
	vertices map[string]*vertex
}

type vertex struct {
	id       string
	needs    map[string]*vertex // outgoing: what this vertex depends on
	neededBy map[string]*vertex // incoming: what depends on this vertex
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{vertices: make(map[string]*vertex)}
}

// AddNode adds a vertex. Adding an existing ID is a no-op.
func (g *Graph) AddNode(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.vertices[id]; !ok {
		g.vertices[id] = &vertex{
			id:       id,
			needs:    make(map[string]*vertex),
			neededBy: make(map[string]*vertex),
		}
	}
}

// AddDependency records that id depends on dep. Both vertices must exist and
// must differ.
func (g *Graph) AddDependency(id, dep string) error {
	if id == dep {
		return errors.Newf("self-referential edge not allowed: %s -> %s", id, id)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	v, ok := g.vertices[id]
	if !ok {
		return errors.Newf("node not found: %s", id)
	}
	d, ok := g.vertices[dep]
	if !ok {
		return errors.Newf("dependency not found: %s", dep)
	}
	v.needs[dep] = d
	d.neededBy[id] = v
	return nil
}

// Dependencies returns the sorted IDs that id depends on directly.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.vertices[id]
	if !ok {
		return nil, errors.Newf("node not found: %s", id)
	}
	return sortedIDs(v.needs), nil
}

// Dependents returns the sorted IDs that depend on id directly.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.vertices[id]
	if !ok {
		return nil, errors.Newf("node not found: %s", id)
	}
	return sortedIDs(v.neededBy), nil
}

// Reachable returns the start IDs plus everything they depend on,
// transitively, sorted. Unknown start IDs are ignored.
func (g *Graph) Reachable(start ...string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := make(map[string]*vertex)
	stack := make([]*vertex, 0, len(start))
	for _, id := range start {
		if v, ok := g.vertices[id]; ok {
			stack = append(stack, v)
		}
	}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[v.id]; ok {
			continue
		}
		seen[v.id] = v
		for _, d := range v.needs {
			stack = append(stack, d)
		}
	}
	return sortedIDs(seen)
}

// DetectCycles returns an error wrapping ErrCycle naming the first cycle
// found, or nil. Vertices are visited in sorted order so the report is
// stable.
func (g *Graph) DetectCycles() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	done := make(map[string]bool)
	onPath := make(map[string]bool)
	var path []string

	var visit func(v *vertex) error
	visit = func(v *vertex) error {
		if done[v.id] {
			return nil
		}
		if onPath[v.id] {
			cycle := append(slices.Clone(path[slices.Index(path, v.id):]), v.id)
			return errors.Wrapf(ErrCycle, "%s", strings.Join(cycle, " -> "))
		}
		onPath[v.id] = true
		path = append(path, v.id)
		for _, id := range sortedIDs(v.needs) {
			if err := visit(v.needs[id]); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		onPath[v.id] = false
		done[v.id] = true
		return nil
	}

	for _, id := range sortedIDs(g.vertices) {
		if err := visit(g.vertices[id]); err != nil {
			return err
		}
	}
	return nil
}

func sortedIDs(m map[string]*vertex) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
