// Package runtime provides the top-level pflc orchestrator: it reads source
// units, parses them and hands the tree to the formatter or renderer.
package runtime

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Limeth/pflc/pkg/ast"
	pc "github.com/Limeth/pflc/pkg/combinator"
	"github.com/Limeth/pflc/pkg/diagnostics"
	"github.com/Limeth/pflc/pkg/formatter"
	"github.com/Limeth/pflc/pkg/parser"
	"github.com/Limeth/pflc/pkg/render"
)

// StdinName is the source path that reads from standard input.
const StdinName = "-"

// Runtime wires together the parser, formatter and renderer.
type Runtime struct {
	logger *slog.Logger
	runID  string
	stdin  io.Reader
	render render.Options
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithLogger sets the structured logger. Records carry the run id.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = l
	}
}

// WithRunID sets the run ID attached to log records.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithStdin sets the reader used for the "-" source path.
func WithStdin(r io.Reader) Option {
	return func(rt *Runtime) {
		rt.stdin = r
	}
}

// WithRenderOptions sets the options used by Render.
func WithRenderOptions(o render.Options) Option {
	return func(rt *Runtime) {
		rt.render = o
	}
}

// New creates a new Runtime with the given options.
// By default logging is discarded and every runtime gets a fresh run id.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		runID:  uuid.NewString(),
		stdin:  os.Stdin,
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.logger = rt.logger.With("run", rt.runID)
	return rt
}

// RunID returns the id attached to this runtime's log records.
func (rt *Runtime) RunID() string { return rt.runID }

// ReadSource reads a source unit from path, or from stdin for "-". The
// returned name is used in spans and diagnostics.
func (rt *Runtime) ReadSource(path string) (source, name string, err error) {
	var data []byte
	if path == StdinName {
		name = "<stdin>"
		data, err = io.ReadAll(rt.stdin)
	} else {
		name = path
		data, err = os.ReadFile(path)
	}
	if err != nil {
		rt.logger.Debug("read failed", "file", name, "err", err)
		return "", name, fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), name, nil
}

// Parse parses source. A parse failure is returned as a *DiagnosticError
// wrapping the *combinator.Failure.
func (rt *Runtime) Parse(source, filename string) (*ast.Root, error) {
	start := time.Now()
	root, err := parser.Parse(source, filename)
	if err != nil {
		var f *pc.Failure
		if !errors.As(err, &f) {
			return nil, err
		}
		rt.logger.Debug("parse failed",
			"file", filename,
			"bytes", len(source),
			"code", f.Kind.Code(),
			"pos", f.Pos.String(),
			"elapsed", time.Since(start),
		)
		return nil, &DiagnosticError{Diagnostics: []diagnostics.Diagnostic{f.Diagnostic()}, Err: f}
	}
	rt.logger.Debug("parsed",
		"file", filename,
		"bytes", len(source),
		"items", len(root.Items),
		"elapsed", time.Since(start),
	)
	return root, nil
}

// Check parses source and returns a one-line summary per declaration, or the
// diagnostics that stopped the parse.
func (rt *Runtime) Check(source, filename string) ([]string, []diagnostics.Diagnostic) {
	root, err := rt.Parse(source, filename)
	if err != nil {
		return nil, Diagnostics(err)
	}
	return render.Summary(root), nil
}

// Format parses and formats source.
func (rt *Runtime) Format(source, filename string) (string, error) {
	root, err := rt.Parse(source, filename)
	if err != nil {
		return "", err
	}
	return formatter.Format(root), nil
}

// Render parses source and writes the tree to w in the given format.
func (rt *Runtime) Render(w io.Writer, source, filename string, format render.Format) error {
	root, err := rt.Parse(source, filename)
	if err != nil {
		return err
	}
	rt.logger.Debug("render", "file", filename, "format", string(format), "spans", rt.render.Spans)
	return render.Render(w, root, format, rt.render)
}

// Diagnostics extracts diagnostics from an error returned by the runtime.
// Errors that carry none become a single E_IO diagnostic.
func Diagnostics(err error) []diagnostics.Diagnostic {
	var de *DiagnosticError
	if errors.As(err, &de) {
		return de.Diagnostics
	}
	return []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.EIO, err.Error(), nil, "")}
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
	Err         error
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}

func (e *DiagnosticError) Unwrap() error { return e.Err }
