// Package cmd implements the pflc command tree.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Limeth/pflc/pkg/config"
	"github.com/Limeth/pflc/pkg/diagnostics"
	"github.com/Limeth/pflc/pkg/render"
	"github.com/Limeth/pflc/pkg/runtime"
)

// Process exit codes.
const (
	ExitOK    = 0
	ExitUsage = 1 // usage, I/O and config errors
	ExitParse = 2 // the source did not parse
)

// ExitError ends a command with a specific exit code. Anything worth telling
// the user has already been written to stderr.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

type parseOpts struct {
	format string
	spans  bool
}

// app holds the state shared by every command of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfgFile string
	verbose bool
	pretty  bool
	parse   parseOpts

	cfg     *config.Config
	cfgFrom string
	logger  *slog.Logger
	rt      *runtime.Runtime
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "pflc [source]",
		Short: "Parser front-end for pflc function definitions",
		Long: `pflc parses source files of function declarations such as

  fn add(a: i32, b: i32) -> i32 = add(a: a, b: b);

and prints the syntax tree, a declaration summary or the canonical formatting.
A source of "-" reads standard input. Invoked with a single source and no
command, pflc behaves like "pflc parse".

Exit codes: 0 success, 1 usage, I/O or config error, 2 parse error.`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.SetOut(a.stderr)
				_ = cmd.Usage()
				return &ExitError{Code: ExitUsage}
			}
			return a.runParse(args[0])
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ./"+config.ProjectFile+", then the user config)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging on stderr")
	pf.BoolVar(&a.pretty, "pretty", false, "human-readable diagnostics (overrides output.pretty)")
	addParseFlags(root, &a.parse)

	root.AddCommand(
		newParseCmd(a),
		newCheckCmd(a),
		newFmtCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return root
}

func addParseFlags(cmd *cobra.Command, o *parseOpts) {
	names := make([]string, 0, len(render.Formats()))
	for _, f := range render.Formats() {
		names = append(names, string(f))
	}
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "output format: "+strings.Join(names, ", ")+" (default: output.format)")
	cmd.Flags().BoolVar(&o.spans, "spans", false, "include source spans (default: output.spans)")
}

// setup loads configuration and builds the logger and runtime. Flags the user
// set explicitly win over config values.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, from, err := a.loadConfig()
	if err != nil {
		d := diagnostics.MakeDiag(diagnostics.EConfig, err.Error(), nil, "")
		a.printDiags([]diagnostics.Diagnostic{d}, "")
		return &ExitError{Code: ExitUsage, Err: err}
	}
	flags := cmd.Flags()
	if flags.Changed("pretty") {
		cfg.Output.Pretty = a.pretty
	}
	if a.parse.format == "" {
		a.parse.format = cfg.Output.Format
	}
	if !flags.Changed("spans") {
		a.parse.spans = cfg.Output.Spans
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if a.verbose {
		level = slog.LevelDebug
	}
	a.cfg, a.cfgFrom = cfg, from
	a.logger = newLogger(a.stderr, cfg.Log.Format, level)
	a.rt = runtime.New(
		runtime.WithLogger(a.logger),
		runtime.WithStdin(a.stdin),
		runtime.WithRenderOptions(render.Options{Spans: a.parse.spans}),
	)
	a.logger.Debug("config loaded", "from", from, "command", cmd.Name())
	return nil
}

func (a *app) loadConfig() (*config.Config, string, error) {
	if a.cfgFile != "" {
		cfg, err := config.LoadFile(a.cfgFile)
		return cfg, a.cfgFile, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}
	return config.Load(cwd)
}

func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (a *app) isPretty() bool {
	if a.cfg != nil {
		return a.cfg.Output.Pretty
	}
	return a.pretty
}

// printDiags writes diagnostics to stderr: a JSON array, or the pretty form
// with a source excerpt.
func (a *app) printDiags(diags []diagnostics.Diagnostic, source string) {
	if !a.isPretty() {
		fmt.Fprintln(a.stderr, diagnostics.FormatDiagnostics(diags, false))
		return
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = diagnostics.FormatWithSource(d, source)
	}
	fmt.Fprintln(a.stderr, strings.Join(parts, "\n\n"))
}

// fail reports err and picks the exit code: 2 for parse diagnostics, 1 for
// everything else.
func (a *app) fail(err error, source string) error {
	a.printDiags(runtime.Diagnostics(err), source)
	code := ExitUsage
	var de *runtime.DiagnosticError
	if errors.As(err, &de) {
		code = ExitParse
	}
	return &ExitError{Code: code, Err: err}
}

// Run executes pflc with args and returns the process exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return ExitOK
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return ExitUsage
}

// Execute runs pflc against the process arguments and standard streams.
func Execute() int {
	return Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}
