package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vk/stringalong/internal/config"
	"github.com/vk/stringalong/internal/ctxlog"
	"github.com/vk/stringalong/internal/engine"
	"github.com/vk/stringalong/internal/fsutil"
	"github.com/vk/stringalong/internal/plural"
	"github.com/vk/stringalong/internal/registry"
)

const defaultDebounce = 300 * time.Millisecond

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	cfg      *Config
	job      *config.Job
	loader   config.Loader
	debounce time.Duration
}

// NewApp is the constructor for the main application. Results go to outW and
// logs to logW. The job file, if any, is loaded through loader and the
// command-line overrides in cfg are layered on top.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All sink modules registered.", "count", len(modules), "sinks", reg.SinkNames())

	if err := reg.ValidateRegistry(ctx); err != nil {
		// A mismatch between compiled sinks and their options is a programmer error.
		panic(err)
	}

	a := &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		cfg:      cfg,
		loader:   loader,
		debounce: defaultDebounce,
	}
	job, err := a.resolveJob(ctx)
	if err != nil {
		return nil, err
	}
	a.job = job
	return a, nil
}

// resolveJob loads the job file, if any, and layers the command-line
// overrides on top.
func (a *App) resolveJob(ctx context.Context) (*config.Job, error) {
	job := &config.Job{}
	if a.cfg.JobPath != "" {
		loaded, err := a.loader.Load(ctx, a.cfg.JobPath)
		if err != nil {
			return nil, err
		}
		job = loaded
	}
	job = a.cfg.apply(job)

	if len(job.Grammar) == 0 {
		return nil, errors.WithHint(errors.New("no grammar paths configured"), "add grammar = [...] to the job file or pass paths as arguments")
	}
	if err := a.registry.ValidateSinks(job.SinkTypes()); err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Job resolved.", "grammar", job.Grammar, "sinks", job.SinkTypes())
	return job, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Job returns the effective job after layering. This is primarily for testing.
func (a *App) Job() *config.Job {
	return a.job
}

// grammarFiles expands the job's grammar paths into files.
func (a *App) grammarFiles() ([]string, error) {
	return fsutil.ResolvePaths(a.job.Grammar, fsutil.GrammarExtensions...)
}

// loadEngine parses every grammar file, in order, into one engine. Engine
// diagnostics are logged as warnings.
func (a *App) loadEngine(ctx context.Context) (*engine.Engine, error) {
	logger := ctxlog.FromContext(ctx)

	for _, p := range a.job.Plurals {
		plural.Define(p.Singular, p.Plural)
	}

	files, err := a.grammarFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.WithHintf(errors.New("no grammar files found"), "looked in %v for %v", a.job.Grammar, fsutil.GrammarExtensions)
	}

	e := engine.New("", engine.Options{
		MaxNesting: a.job.Generate.MaxNesting,
		OnWarn: func(msg string) {
			logger.Warn("Grammar diagnostic.", "message", msg)
		},
	})
	for _, f := range files {
		doc, err := os.ReadFile(f)
		if err != nil {
			return nil, errors.Wrapf(err, "reading grammar %s", f)
		}
		e.Parse(string(doc))
		logger.Debug("Grammar parsed.", "file", f)
	}
	logger.Debug("Engine ready.", "lists", e.RuleSet().Len(), "name", e.Metadata().Name)
	return e, nil
}

// Roots loads the grammar and returns its entry points.
func (a *App) Roots(ctx context.Context) ([]string, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	e, err := a.loadEngine(ctx)
	if err != nil {
		return nil, err
	}
	return e.Roots(), nil
}

// Check loads the grammar and returns the problems found without generating.
func (a *App) Check(ctx context.Context) ([]engine.Diagnostic, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	e, err := a.loadEngine(ctx)
	if err != nil {
		return nil, err
	}
	diags, err := e.Check()
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Grammar checked.", "diagnostics", len(diags))
	return diags, nil
}
