package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/vk/stringalong/internal/app"
	"github.com/vk/stringalong/internal/config"
	"github.com/vk/stringalong/internal/engine"
	"github.com/vk/stringalong/internal/plural"
	"github.com/vk/stringalong/internal/rng"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// flags holds the raw values bound to the command line.
type flags struct {
	count           int
	seed            string
	root            string
	maxNesting      int
	jobPath         string
	format          string
	pretty          bool
	unique          bool
	watch           bool
	healthcheckPort int
	logFormat       string
	logLevel        string
}

// NewRootCommand builds the stringalong command tree. Results are written to
// outW, logs and errors to errW.
func NewRootCommand(ctx context.Context, outW, errW io.Writer, loader config.Loader) *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "stringalong [flags] [GRAMMAR_PATH...]",
		Short: "Generate random text from bracket grammars",
		Long: `stringalong expands grammar documents into random text.

A grammar declares lists with $name lines followed by one item per line.
Items reference other lists with [name] tags, optionally qualified by
modifiers such as [name,x2-4], [name,#id] or [name,title].

GRAMMAR_PATH may be a grammar file or a directory scanned for *.txt and *.sg
files. A job file (--config) can name the grammar, generation settings,
plural overrides and output sinks; flags override the job file.`,
		Example: `  stringalong names.txt -n 10
  stringalong grammars/ --seed hello --root tavern
  stringalong -c job.hcl --format json --pretty
  stringalong grammars/ --watch`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.appConfig(cmd, args)
			if err != nil {
				return err
			}
			a, err := app.NewApp(outW, errW, cfg, loader)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
	root.SetContext(ctx)
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%s", err.Error())
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&f.jobPath, "config", "c", "", "Path to an HCL job file.")
	pf.StringVar(&f.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&f.logLevel, "log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	f.bindGenerate(root.Flags())

	root.AddCommand(newRootsCommand(f, outW, errW, loader))
	root.AddCommand(newCheckCommand(f, outW, errW, loader))
	root.AddCommand(newPluralCommand(outW))
	return root
}

// bindGenerate registers the flags that control a generation run.
func (f *flags) bindGenerate(fl *pflag.FlagSet) {
	fl.IntVarP(&f.count, "count", "n", 0, "Number of results. Defaults to the grammar's $amount.")
	fl.StringVarP(&f.seed, "seed", "s", "", "Seed text for reproducible output.")
	fl.StringVarP(&f.root, "root", "r", "", "List to start from. Defaults to the last declared list.")
	fl.IntVar(&f.maxNesting, "max-nesting", 0, "Maximum tag nesting depth. Defaults to 50.")
	fl.StringVar(&f.format, "format", "", "Print format. Options: 'text', 'json', 'yaml'.")
	fl.BoolVar(&f.pretty, "pretty", false, "Decorate text output and indent JSON.")
	fl.BoolVar(&f.unique, "unique", true, "Avoid repeating list items within one result. Overrides the grammar.")
	fl.BoolVarP(&f.watch, "watch", "w", false, "Regenerate whenever a grammar file changes.")
	fl.IntVar(&f.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check server in watch mode. 0 is disabled.")
}

func newRootsCommand(f *flags, outW, errW io.Writer, loader config.Loader) *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "roots [GRAMMAR_PATH...]",
		Short: "List the entry points of a grammar",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.appConfig(cmd, args)
			if err != nil {
				return err
			}
			a, err := app.NewApp(outW, errW, cfg, loader)
			if err != nil {
				return err
			}
			roots, err := a.Roots(cmd.Context())
			if err != nil {
				return err
			}
			for i, r := range roots {
				line := r
				if pretty {
					line = pterm.LightCyan(r)
					if i == len(roots)-1 {
						line += pterm.Gray(" (default)")
					}
				}
				fmt.Fprintln(outW, line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Highlight the default root.")
	return cmd
}

func newCheckCommand(f *flags, outW, errW io.Writer, loader config.Loader) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check [GRAMMAR_PATH...]",
		Short: "Report empty, unreachable and recursive lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.appConfig(cmd, args)
			if err != nil {
				return err
			}
			a, err := app.NewApp(outW, errW, cfg, loader)
			if err != nil {
				return err
			}
			diags, err := a.Check(cmd.Context())
			if err != nil {
				return err
			}

			warnings := 0
			for _, d := range diags {
				line := d.String()
				if d.Severity == engine.SeverityWarning {
					warnings++
					line = pterm.Yellow(line)
				} else {
					line = pterm.Gray(line)
				}
				fmt.Fprintln(outW, line)
			}
			if len(diags) == 0 {
				fmt.Fprintln(outW, pterm.Green("ok"))
			}
			if strict && warnings > 0 {
				return &ExitError{Code: 1, Message: fmt.Sprintf("%d warning(s) found", warnings)}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with status 1 when any warning is found.")
	return cmd
}

func newPluralCommand(outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "plural WORD...",
		Short: "Print the plural form of each word",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			for _, w := range args {
				fmt.Fprintln(outW, plural.Pluralize(w))
			}
		},
	}
}

// appConfig validates the flags and converts them into an app.Config.
func (f *flags) appConfig(cmd *cobra.Command, args []string) (*app.Config, error) {
	logFormat := strings.ToLower(f.logFormat)
	if logFormat != "text" && logFormat != "json" {
		return nil, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(f.logLevel)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	format := strings.ToLower(f.format)
	switch format {
	case "", "text", "json", "yaml":
	default:
		return nil, usageError("invalid format: must be 'text', 'json' or 'yaml'")
	}
	slog.Debug("CLI parameter validation complete.")

	cfg := app.Config{
		GrammarPaths: args,
		JobPath:      f.jobPath,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
	}
	// Flags that only exist on the root command are read only when set there.
	if cmd.Flags().Lookup("count") != nil {
		cfg.Count = f.count
		cfg.Root = f.root
		cfg.MaxNesting = f.maxNesting
		cfg.Format = format
		cfg.Pretty = f.pretty
		cfg.Watch = f.watch
		cfg.HealthcheckPort = f.healthcheckPort
		if cmd.Flags().Changed("seed") {
			cfg.Seed = rng.Text(f.seed)
		}
		if cmd.Flags().Changed("unique") {
			unique := f.unique
			cfg.Unique = &unique
		}
	}

	validated, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError("%s", err.Error())
	}
	return validated, nil
}

// Execute runs the command line and maps failures onto exit codes: usage
// errors are code 2, everything else code 1.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(ctx, outW, errW, config.NewLoader())
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return nil
	}
	if _, ok := err.(*ExitError); ok {
		return err
	}
	if strings.HasPrefix(err.Error(), "unknown command") || strings.Contains(err.Error(), "arg(s)") {
		return usageError("%s", err.Error())
	}
	return &ExitError{Code: 1, Message: err.Error()}
}
