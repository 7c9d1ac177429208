package app

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/vk/stringalong/internal/config"
	"github.com/vk/stringalong/internal/rng"
)

// Config holds the command-line side of a run. Zero values mean "not given"
// and leave the job file's setting in place.
type Config struct {
	GrammarPaths []string // files or directories; replaces the job's list
	JobPath      string   // optional HCL job file

	Count      int
	Seed       rng.Seed
	Root       string
	MaxNesting int
	Unique     *bool

	Format string // print sink format override
	Pretty bool   // print sink decoration override

	Watch           bool
	HealthcheckPort int

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.GrammarPaths) == 0 && cfg.JobPath == "" {
		return nil, errors.WithHint(errors.New("no grammar given"), "pass grammar files or directories, or a job file with --config")
	}
	if cfg.Count < 0 {
		return nil, errors.Newf("count must not be negative, got %d", cfg.Count)
	}
	if cfg.MaxNesting < 0 {
		return nil, errors.Newf("max-nesting must not be negative, got %d", cfg.MaxNesting)
	}
	if cfg.HealthcheckPort != 0 && !cfg.Watch {
		return nil, errors.New("healthcheck-port requires watch mode")
	}
	return &cfg, nil
}

// apply layers the command-line overrides onto a job loaded from file.
func (c *Config) apply(job *config.Job) *config.Job {
	out := *job
	out.Grammar = slices.Clone(job.Grammar)
	out.Sinks = slices.Clone(job.Sinks)

	if len(c.GrammarPaths) > 0 {
		out.Grammar = slices.Clone(c.GrammarPaths)
	}
	if c.Count > 0 {
		out.Generate.Count = c.Count
	}
	if c.Seed.IsSet() {
		out.Generate.Seed = c.Seed
	}
	if c.Root != "" {
		out.Generate.Root = c.Root
	}
	if c.MaxNesting > 0 {
		out.Generate.MaxNesting = c.MaxNesting
	}
	if c.Unique != nil {
		out.Generate.Unique = c.Unique
	}
	if len(out.Sinks) == 0 {
		out.Sinks = []*config.Sink{{Type: "print"}}
	}
	return &out
}
