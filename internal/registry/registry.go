package registry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"slices"
)

// Module is the interface that all sink modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Batch is one round of generated text handed to the sinks.
type Batch struct {
	RunID   string   `json:"run_id" yaml:"run_id"`
	Grammar string   `json:"grammar" yaml:"grammar"`
	Seed    string   `json:"seed,omitempty" yaml:"seed,omitempty"`
	Root    string   `json:"root,omitempty" yaml:"root,omitempty"`
	Results []string `json:"results" yaml:"results"`
}

// Sink delivers batches somewhere.
type Sink interface {
	Emit(ctx context.Context, b *Batch) error
}

// RegisteredSink holds the compiled Go parts of a sink.
type RegisteredSink struct {
	// NewOptions returns a pointer to a zero options struct with hcl tags.
	NewOptions func() any
	// OptionsType is the struct type NewOptions points to.
	OptionsType reflect.Type
	// New builds the sink from decoded options. out is the process's
	// standard output.
	New func(ctx context.Context, out io.Writer, opts any) (Sink, error)
}

// Registry holds all the registered sinks for a single application instance.
type Registry struct {
	sinks map[string]*RegisteredSink
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{sinks: make(map[string]*RegisteredSink)}
}

// RegisterSink registers a sink under the name used in `sink "<name>"` blocks.
func (r *Registry) RegisterSink(name string, s *RegisteredSink) {
	if _, exists := r.sinks[name]; exists {
		panic(fmt.Sprintf("sink with name '%s' already registered", name))
	}
	slog.Debug("Registering sink.", "name", name)
	r.sinks[name] = s
}

// Sink returns the sink registered under name.
func (r *Registry) Sink(name string) (*RegisteredSink, bool) {
	s, ok := r.sinks[name]
	return s, ok
}

// SinkNames returns the registered sink names in sorted order.
func (r *Registry) SinkNames() []string {
	names := make([]string, 0, len(r.sinks))
	for name := range r.sinks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
