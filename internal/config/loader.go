package config

import (
	"context"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/stringalong/internal/ctxlog"
	"github.com/vk/stringalong/internal/rng"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Loader reads a job description from a path.
type Loader interface {
	Load(ctx context.Context, path string) (*Job, error)
}

// HCLLoader loads job files written in HCL.
type HCLLoader struct{}

// NewLoader creates a new HCL job loader.
func NewLoader() *HCLLoader {
	return &HCLLoader{}
}

// fileRoot is the top-level schema of a job file.
type fileRoot struct {
	Grammar  []string       `hcl:"grammar,optional"`
	Generate *generateBlock `hcl:"generate,block"`
	Plurals  []*pluralBlock `hcl:"plural,block"`
	Sinks    []*sinkBlock   `hcl:"sink,block"`
}

type generateBlock struct {
	Count      *int      `hcl:"count,optional"`
	Seed       cty.Value `hcl:"seed,optional"`
	Root       *string   `hcl:"root,optional"`
	MaxNesting *int      `hcl:"max_nesting,optional"`
	Unique     *bool     `hcl:"unique,optional"`
}

type pluralBlock struct {
	Singular string `hcl:"singular,label"`
	Plural   string `hcl:"plural"`
}

type sinkBlock struct {
	Type string   `hcl:"type,label"`
	Body hcl.Body `hcl:",remain"`
}

// Load parses the job file at path. Relative grammar paths are resolved
// against the job file's directory.
func (l *HCLLoader) Load(ctx context.Context, path string) (*Job, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL job loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, errors.Wrapf(diags, "failed to parse job file %s", path)
	}
	job, err := decodeJob(file.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode job file %s", path)
	}

	base := filepath.Dir(path)
	for i, g := range job.Grammar {
		if !filepath.IsAbs(g) {
			job.Grammar[i] = filepath.Join(base, g)
		}
	}

	logger.Debug("Job file loaded.", "grammar_paths", len(job.Grammar), "plurals", len(job.Plurals), "sinks", job.SinkTypes())
	return job, nil
}

// LoadBytes parses a job from in-memory HCL source. filename is used in
// diagnostics only.
func LoadBytes(src []byte, filename string) (*Job, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Wrapf(diags, "failed to parse %s", filename)
	}
	return decodeJob(file.Body)
}

func decodeJob(body hcl.Body) (*Job, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, diags
	}

	job := &Job{Grammar: root.Grammar}
	if g := root.Generate; g != nil {
		if g.Count != nil {
			job.Generate.Count = *g.Count
		}
		if g.Root != nil {
			job.Generate.Root = *g.Root
		}
		if g.MaxNesting != nil {
			job.Generate.MaxNesting = *g.MaxNesting
		}
		job.Generate.Unique = g.Unique

		seed, err := SeedFromValue(g.Seed)
		if err != nil {
			return nil, err
		}
		job.Generate.Seed = seed
	}
	for _, p := range root.Plurals {
		job.Plurals = append(job.Plurals, PluralOverride{Singular: p.Singular, Plural: p.Plural})
	}
	for _, s := range root.Sinks {
		job.Sinks = append(job.Sinks, &Sink{Type: s.Type, Body: s.Body})
	}
	return job, nil
}

// SeedFromValue converts an HCL seed value. Whole numbers become integer
// seeds; strings and every other primitive become text seeds. Null means no
// seed.
func SeedFromValue(v cty.Value) (rng.Seed, error) {
	if v.IsNull() {
		return rng.None, nil
	}
	if !v.IsWhollyKnown() {
		return rng.None, errors.New("seed must be a literal value")
	}

	if v.Type().Equals(cty.Number) {
		var n int64
		if err := gocty.FromCtyValue(v, &n); err == nil {
			return rng.Int(n), nil
		}
		return rng.Text(v.AsBigFloat().Text('g', -1)), nil
	}

	s, err := convert.Convert(v, cty.String)
	if err != nil {
		return rng.None, errors.Wrap(err, "seed must be a string or a number")
	}
	return rng.Text(s.AsString()), nil
}
