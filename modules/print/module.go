// Package print is the default sink. It writes each batch to standard output
// as plain lines, a decorated listing, JSON or YAML.
package print

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/vk/stringalong/internal/ctxlog"
	"github.com/vk/stringalong/internal/registry"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Options are the arguments of a `sink "print"` block.
type Options struct {
	Format string `hcl:"format,optional"`
	Pretty bool   `hcl:"pretty,optional"`
}

// Sink writes batches to a writer.
type Sink struct {
	out  io.Writer
	opts Options
}

// New validates opts and returns a print sink writing to out.
func New(ctx context.Context, out io.Writer, opts any) (registry.Sink, error) {
	o := Options{}
	if p, ok := opts.(*Options); ok && p != nil {
		o = *p
	}
	o.Format = strings.ToLower(o.Format)
	switch o.Format {
	case "":
		o.Format = FormatText
	case FormatText, FormatJSON, FormatYAML:
	default:
		return nil, errors.WithHint(errors.Newf("unsupported print format %q", o.Format), "use text, json or yaml")
	}
	ctxlog.FromContext(ctx).Debug("Print sink configured.", "format", o.Format, "pretty", o.Pretty)
	return &Sink{out: out, opts: o}, nil
}

// Emit writes one batch.
func (s *Sink) Emit(ctx context.Context, b *registry.Batch) error {
	ctxlog.FromContext(ctx).Debug("Printing batch.", "results", len(b.Results))
	switch s.opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(s.out)
		if s.opts.Pretty {
			enc.SetIndent("", "  ")
		}
		return errors.Wrap(enc.Encode(b), "encoding json")
	case FormatYAML:
		enc := yaml.NewEncoder(s.out)
		enc.SetIndent(2)
		if err := enc.Encode(b); err != nil {
			return errors.Wrap(err, "encoding yaml")
		}
		return errors.Wrap(enc.Close(), "encoding yaml")
	default:
		if s.opts.Pretty {
			return s.emitPretty(b)
		}
		for _, r := range b.Results {
			if _, err := fmt.Fprintln(s.out, r); err != nil {
				return err
			}
		}
		return nil
	}
}

func (s *Sink) emitPretty(b *registry.Batch) error {
	header := pterm.LightCyan(b.Grammar)
	if b.Seed != "" {
		header += pterm.Gray(" seed=" + b.Seed)
	}
	if _, err := fmt.Fprintln(s.out, header); err != nil {
		return err
	}
	width := len(fmt.Sprint(len(b.Results)))
	for i, r := range b.Results {
		num := pterm.Yellow(fmt.Sprintf("%*d.", width, i+1))
		if _, err := fmt.Fprintf(s.out, "  %s %s\n", num, strings.ReplaceAll(r, "<br>", "\n"+strings.Repeat(" ", width+4))); err != nil {
			return err
		}
	}
	return nil
}

// Register registers the sink with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSink("print", &registry.RegisteredSink{
		NewOptions:  func() any { return new(Options) },
		OptionsType: reflect.TypeOf(Options{}),
		New:         New,
	})
}
