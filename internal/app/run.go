package app

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/vk/stringalong/internal/config"
	"github.com/vk/stringalong/internal/ctxlog"
	"github.com/vk/stringalong/internal/engine"
	"github.com/vk/stringalong/internal/registry"
	"github.com/vk/stringalong/modules/print"
)

// Run executes the main application logic: build the sinks, generate one
// batch and, in watch mode, keep regenerating until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	sinks, err := a.buildSinks(ctx, a.job)
	if err != nil {
		return err
	}

	if a.cfg.Watch {
		if a.cfg.HealthcheckPort > 0 {
			a.startHealthcheckServer(ctx, a.cfg.HealthcheckPort)
		}
		return a.watch(ctx, sinks)
	}

	if err := a.generate(ctx, sinks); err != nil {
		return err
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

// buildSinks decodes every sink block of job and constructs its sink.
func (a *App) buildSinks(ctx context.Context, job *config.Job) ([]registry.Sink, error) {
	sinks := make([]registry.Sink, 0, len(job.Sinks))
	for _, sc := range job.Sinks {
		reg, ok := a.registry.Sink(sc.Type)
		if !ok {
			return nil, errors.Newf("sink %q is not registered", sc.Type)
		}

		var opts any
		if reg.NewOptions != nil {
			opts = reg.NewOptions()
			if err := sc.Decode(opts); err != nil {
				return nil, errors.Wrapf(err, "sink %q", sc.Type)
			}
		}
		if po, ok := opts.(*print.Options); ok {
			if a.cfg.Format != "" {
				po.Format = a.cfg.Format
			}
			po.Pretty = po.Pretty || a.cfg.Pretty
		}

		s, err := reg.New(ctx, a.outW, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "sink %q", sc.Type)
		}
		sinks = append(sinks, s)
	}
	a.logger.Debug("Sinks built.", "count", len(sinks))
	return sinks, nil
}

// generate runs one batch end to end.
func (a *App) generate(ctx context.Context, sinks []registry.Sink) error {
	runID := uuid.NewString()
	ctx = ctxlog.With(ctx, "run_id", runID)
	logger := ctxlog.FromContext(ctx)

	e, err := a.loadEngine(ctx)
	if err != nil {
		return err
	}

	gen := a.job.Generate
	results, err := e.Generate(engine.Request{
		Count:  gen.Count,
		Seed:   gen.Seed,
		Root:   gen.Root,
		Unique: gen.Unique,
	})
	if err != nil {
		return err
	}
	logger.Info("Batch generated.", "count", len(results), "seed", gen.Seed.String(), "root", gen.Root)

	batch := &registry.Batch{
		RunID:   runID,
		Grammar: e.Metadata().Name,
		Seed:    gen.Seed.String(),
		Root:    strings.ToLower(gen.Root),
		Results: results,
	}
	for i, s := range sinks {
		if err := s.Emit(ctx, batch); err != nil {
			return errors.Wrapf(err, "sink %q", a.job.Sinks[i].Type)
		}
	}
	return nil
}
