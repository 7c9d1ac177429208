package dag

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNode(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("a")
	g.AddNode("b")

	assert.Len(t, g.vertices, 2)
	deps, err := g.Dependencies("a")
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestAddDependency(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode("main")
		g.AddNode("noun")
		require.NoError(t, g.AddDependency("main", "noun"))

		deps, err := g.Dependencies("main")
		require.NoError(t, err)
		assert.Equal(t, []string{"noun"}, deps)

		dependents, err := g.Dependents("noun")
		require.NoError(t, err)
		assert.Equal(t, []string{"main"}, dependents)
	})

	t.Run("self reference", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		assert.ErrorContains(t, g.AddDependency("a", "a"), "self-referential edge")
	})

	t.Run("missing vertices", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		assert.ErrorContains(t, g.AddDependency("x", "a"), "node not found: x")
		assert.ErrorContains(t, g.AddDependency("a", "y"), "dependency not found: y")
	})
}

func TestDependencies_UnknownNode(t *testing.T) {
	g := New()
	_, err := g.Dependencies("ghost")
	assert.ErrorContains(t, err, "node not found")
	_, err = g.Dependents("ghost")
	assert.ErrorContains(t, err, "node not found")
}

func TestReachable(t *testing.T) {
	g := New()
	for _, id := range []string{"main", "name", "place", "first", "orphan"} {
		g.AddNode(id)
	}
	require.NoError(t, g.AddDependency("main", "name"))
	require.NoError(t, g.AddDependency("main", "place"))
	require.NoError(t, g.AddDependency("name", "first"))
	require.NoError(t, g.AddDependency("orphan", "first"))

	assert.Equal(t, []string{"first", "main", "name", "place"}, g.Reachable("main"))
	assert.Equal(t, []string{"first", "orphan"}, g.Reachable("orphan", "missing"))
	assert.Empty(t, g.Reachable())
}

func TestDetectCycles(t *testing.T) {
	t.Run("acyclic", func(t *testing.T) {
		g := New()
		for _, id := range []string{"a", "b", "c"} {
			g.AddNode(id)
		}
		require.NoError(t, g.AddDependency("a", "b"))
		require.NoError(t, g.AddDependency("b", "c"))
		require.NoError(t, g.AddDependency("a", "c"))
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("cycle", func(t *testing.T) {
		g := New()
		for _, id := range []string{"a", "b", "c"} {
			g.AddNode(id)
		}
		require.NoError(t, g.AddDependency("a", "b"))
		require.NoError(t, g.AddDependency("b", "c"))
		require.NoError(t, g.AddDependency("c", "a"))

		err := g.DetectCycles()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCycle))
		assert.Contains(t, err.Error(), "a -> b -> c -> a")
	})
}
