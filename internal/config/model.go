package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/stringalong/internal/rng"
)

// Job is the format-agnostic description of one generation run.
type Job struct {
	// Grammar lists grammar files or directories, parsed in order into one
	// engine.
	Grammar  []string
	Generate Generate
	Plurals  []PluralOverride
	Sinks    []*Sink
}

// Generate mirrors the engine request plus engine options.
type Generate struct {
	Count      int
	Seed       rng.Seed
	Root       string
	MaxNesting int
	Unique     *bool
}

// PluralOverride registers an irregular plural before generation.
type PluralOverride struct {
	Singular string
	Plural   string
}

// Sink is one output destination. Body holds the sink's own options.
type Sink struct {
	Type string
	Body hcl.Body
}

// Decode fills target, a pointer to an hcl-tagged struct, from the sink body.
// A sink without a body leaves target untouched.
func (s *Sink) Decode(target any) error {
	if s.Body == nil {
		return nil
	}
	if diags := gohcl.DecodeBody(s.Body, nil, target); diags.HasErrors() {
		return diags
	}
	return nil
}

// SinkTypes returns the configured sink types in order.
func (j *Job) SinkTypes() []string {
	out := make([]string, 0, len(j.Sinks))
	for _, s := range j.Sinks {
		out = append(out, s.Type)
	}
	return out
}

// Sink returns the first configured sink of the given type.
func (j *Job) Sink(sinkType string) (*Sink, bool) {
	for _, s := range j.Sinks {
		if s.Type == sinkType {
			return s, true
		}
	}
	return nil, false
}
