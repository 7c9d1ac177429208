package print

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/stringalong/internal/registry"
	"gopkg.in/yaml.v3"
)

func testBatch() *registry.Batch {
	return &registry.Batch{
		RunID:   "run-1",
		Grammar: "Critters",
		Seed:    "abc",
		Results: []string{"a cat", "an owl<br>twice"},
	}
}

func emit(t *testing.T, opts *Options) string {
	t.Helper()
	var buf bytes.Buffer
	s, err := New(context.Background(), &buf, opts)
	require.NoError(t, err)
	require.NoError(t, s.Emit(context.Background(), testBatch()))
	return buf.String()
}

func TestEmit_Text(t *testing.T) {
	assert.Equal(t, "a cat\nan owl<br>twice\n", emit(t, nil))
}

func TestEmit_Pretty(t *testing.T) {
	out := pterm.RemoveColorFromString(emit(t, &Options{Pretty: true}))
	assert.Equal(t, "Critters seed=abc\n  1. a cat\n  2. an owl\n     twice\n", out)
}

func TestEmit_JSON(t *testing.T) {
	out := emit(t, &Options{Format: "JSON"})

	var got registry.Batch
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, *testBatch(), got)
	assert.Contains(t, out, `"run_id":"run-1"`)
}

func TestEmit_YAML(t *testing.T) {
	out := emit(t, &Options{Format: FormatYAML})

	var got registry.Batch
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, *testBatch(), got)
	assert.Contains(t, out, "grammar: Critters")
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	_, err := New(context.Background(), &bytes.Buffer{}, &Options{Format: "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"xml"`)
}

func TestRegister(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)
	require.NoError(t, r.ValidateRegistry(context.Background()))
	_, ok := r.Sink("print")
	assert.True(t, ok)
}
